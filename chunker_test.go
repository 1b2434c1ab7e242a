package chunkbase

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/t7a/chunkbase/cdc"
	"github.com/t7a/chunkbase/checksum"
)

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

// small sizes so that tests cover every regime quickly
var testConfig = Config{
	MinSize:     1 * kiB,
	AvgSize:     4 * kiB,
	MaxSize:     16 * kiB,
	PortionSize: 64 * kiB,
	Workers:     4,
}

func randbuf(t *testing.T, size int, seed int64) []byte {
	buf := make([]byte, size)
	n, err := rand.New(rand.NewSource(seed)).Read(buf)
	tassert(t, err == nil, "rand.Read(): %v", err)
	tassert(t, size == n, "size: expected %d got %d", size, n)
	return buf
}

func mkfile(t *testing.T, buf []byte) (path string) {
	path = filepath.Join(t.TempDir(), "data")
	err := os.WriteFile(path, buf, 0644)
	tassert(t, err == nil, "%v", err)
	return
}

func newChunker(t *testing.T, cfg Config) *Chunker {
	c, err := Chunker{Config: cfg}.Init()
	tassert(t, err == nil, "%v", err)
	return c
}

// verify checks that chunks partition buf and that every checksum
// matches its content.
func verify(t *testing.T, cfg Config, buf []byte, chunks []*Chunk) {
	t.Helper()
	var pos int64
	for i, chunk := range chunks {
		tassert(t, chunk.Offset == pos, "chunk %d: offset %d, expected %d", i, chunk.Offset, pos)
		tassert(t, chunk.Length > 0, "chunk %d: empty", i)
		tassert(t, chunk.Length <= int64(cfg.MaxSize), "chunk %d: length %d over max", i, chunk.Length)
		if i < len(chunks)-1 {
			tassert(t, chunk.Length >= int64(cfg.MinSize), "chunk %d: length %d under min", i, chunk.Length)
		}
		tassert(t, !chunk.Pending(), "chunk %d: pending", i)
		sum := checksum.Sum(buf[chunk.Offset:chunk.End()])
		tassert(t, chunk.Checksum == sum, "chunk %d: checksum %s, expected %s", i, chunk.Checksum, sum)
		pos = chunk.End()
	}
	tassert(t, pos == int64(len(buf)), "size: expected %d got %d", len(buf), pos)
}

func TestInitDefaults(t *testing.T) {
	c := newChunker(t, Config{})
	tassert(t, c.Config == DefaultConfig(), "expected defaults, got %#v", c.Config)
	tassert(t, c.MinSize == cdc.DefaultMinSize, "min size %d", c.MinSize)
	tassert(t, c.PortionSize == DefaultPortionSize, "portion size %d", c.PortionSize)
	tassert(t, c.Workers > 0, "workers %d", c.Workers)
}

func TestInitInvalid(t *testing.T) {
	_, err := Chunker{Config: Config{MinSize: 10}}.Init()
	tassert(t, errors.Is(err, cdc.ErrInvalidParams), "expected ErrInvalidParams, got %v", err)

	cfg := testConfig
	cfg.PortionSize = cfg.MaxSize
	_, err = Chunker{Config: cfg}.Init()
	tassert(t, errors.Is(err, cdc.ErrInvalidParams), "expected ErrInvalidParams, got %v", err)
}

func TestChunkEmpty(t *testing.T) {
	c := newChunker(t, testConfig)
	chunks, err := c.ChunkFile(context.Background(), bytes.NewReader(nil))
	tassert(t, err == nil, "%v", err)
	tassert(t, len(chunks) == 0, "expected no chunks, got %d", len(chunks))
}

func TestChunkMinSize(t *testing.T) {
	c := newChunker(t, testConfig)
	buf := randbuf(t, testConfig.MinSize, 1)
	chunks, err := c.ChunkPath(context.Background(), mkfile(t, buf))
	tassert(t, err == nil, "%v", err)
	tassert(t, len(chunks) == 1, "expected 1 chunk, got %d", len(chunks))
	tassert(t, chunks[0].Offset == 0, "offset %d", chunks[0].Offset)
	tassert(t, chunks[0].Length == int64(testConfig.MinSize), "length %d", chunks[0].Length)
	verify(t, testConfig, buf, chunks)
}

func TestChunkTiny(t *testing.T) {
	c := newChunker(t, testConfig)
	buf := []byte("HASH")
	chunks, err := c.ChunkFile(context.Background(), bytes.NewReader(buf))
	tassert(t, err == nil, "%v", err)
	tassert(t, len(chunks) == 1, "expected 1 chunk, got %d", len(chunks))
	tassert(t, chunks[0].Checksum == "4341BCFB28F64BED93ACA9A378AE7D8C", "checksum %s", chunks[0].Checksum)
}

func TestChunkMedium(t *testing.T) {
	c := newChunker(t, testConfig)
	buf := randbuf(t, testConfig.PortionSize, 2)
	chunks, err := c.ChunkFile(context.Background(), bytes.NewReader(buf))
	tassert(t, err == nil, "%v", err)
	tassert(t, len(chunks) > 1, "expected several chunks, got %d", len(chunks))
	verify(t, testConfig, buf, chunks)
}

func TestChunkLarge(t *testing.T) {
	// two full portions plus ten max-size chunks
	size := 2*testConfig.PortionSize + 10*testConfig.MaxSize
	buf := randbuf(t, size, 3)
	c := newChunker(t, testConfig)
	chunks, err := c.ChunkPath(context.Background(), mkfile(t, buf))
	tassert(t, err == nil, "%v", err)
	verify(t, testConfig, buf, chunks)
}

func TestLargeMatchesMedium(t *testing.T) {
	size := 1 * miB
	buf := randbuf(t, size, 4)

	large := newChunker(t, testConfig)
	a, err := large.ChunkFile(context.Background(), bytes.NewReader(buf))
	tassert(t, err == nil, "%v", err)

	cfg := testConfig
	cfg.PortionSize = 2 * size
	medium := newChunker(t, cfg)
	b, err := medium.ChunkFile(context.Background(), bytes.NewReader(buf))
	tassert(t, err == nil, "%v", err)

	tassert(t, len(a) == len(b), "chunk count differs: %d vs %d", len(a), len(b))
	for i := range a {
		tassert(t, *a[i] == *b[i], "chunk %d differs: %v vs %v", i, a[i], b[i])
	}
}

func TestChunkZeros(t *testing.T) {
	buf := make([]byte, 3*testConfig.PortionSize+5)
	c := newChunker(t, testConfig)
	chunks, err := c.ChunkFile(context.Background(), bytes.NewReader(buf))
	tassert(t, err == nil, "%v", err)
	verify(t, testConfig, buf, chunks)
	for i := 1; i < len(chunks)-1; i++ {
		tassert(t, chunks[i].Equal(chunks[0]), "chunk %d differs from chunk 0", i)
	}
}

// failReader fails every read past limit.
type failReader struct {
	*bytes.Reader
	limit int64
}

func (r *failReader) Read(p []byte) (n int, err error) {
	pos, _ := r.Seek(0, io.SeekCurrent)
	if pos >= r.limit {
		return 0, errors.New("disk on fire")
	}
	if int64(len(p)) > r.limit-pos {
		p = p[:r.limit-pos]
	}
	return r.Reader.Read(p)
}

func TestChunkReadError(t *testing.T) {
	buf := randbuf(t, 3*testConfig.PortionSize, 5)
	rd := &failReader{Reader: bytes.NewReader(buf), limit: int64(testConfig.PortionSize + 100)}
	c := newChunker(t, testConfig)
	chunks, err := c.ChunkFile(context.Background(), rd)
	tassert(t, err != nil, "expected error")
	tassert(t, chunks == nil, "expected no chunks, got %d", len(chunks))
}

func TestChunkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buf := randbuf(t, testConfig.PortionSize, 6)
	c := newChunker(t, testConfig)
	chunks, err := c.ChunkFile(ctx, bytes.NewReader(buf))
	tassert(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
	tassert(t, chunks == nil, "expected no chunks, got %d", len(chunks))
}

func TestChunkMissingPath(t *testing.T) {
	c := newChunker(t, testConfig)
	_, err := c.ChunkPath(context.Background(), filepath.Join(t.TempDir(), "nope"))
	tassert(t, errors.Is(err, os.ErrNotExist), "expected not-exist error, got %v", err)
}
