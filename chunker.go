package chunkbase

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/chunkbase/cdc"
	"github.com/t7a/chunkbase/checksum"
)

// Chunker splits files into content-defined chunks and checksums
// them.  Files no larger than PortionSize are chunked in one buffer;
// larger files are read one portion at a time, so memory use does
// not grow with file size.
type Chunker struct {
	Config
}

// Init fills in defaults for any zero Config fields and validates
// the result.
func (c Chunker) Init() (res *Chunker, err error) {
	c.Config = c.Config.withDefaults()
	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ChunkPath chunks the file at path.
func (c *Chunker) ChunkPath(ctx context.Context, path string) (chunks []*Chunk, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer fh.Close()
	chunks, err = c.ChunkFile(ctx, fh)
	if err != nil {
		return nil, errors.Wrapf(err, "chunking %s", path)
	}
	return
}

// ChunkFile returns the chunks of rd's content in offset order, each
// with its checksum set.  Either the complete list or an error is
// returned, never a partial list.
func (c *Chunker) ChunkFile(ctx context.Context, rd io.ReadSeeker) (chunks []*Chunk, err error) {
	size, err := rd.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "finding file size")
	}
	_, err = rd.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "rewinding file")
	}

	tr := checksum.NewTracker(c.Workers)
	switch {
	case size == 0:
	case size <= int64(c.MinSize):
		chunks, err = c.chunkSmall(ctx, tr, rd, size)
	case size <= int64(c.PortionSize):
		chunks, err = c.chunkMedium(ctx, tr, rd, size)
	default:
		chunks, err = c.chunkLarge(ctx, tr, rd, size)
	}
	if err != nil {
		return nil, err
	}

	tr.SetExpected(int64(len(chunks)))
	err = tr.Wait(ctx)
	if err != nil {
		return nil, err
	}
	log.Debugf("chunked %d bytes into %d chunks", size, len(chunks))
	return chunks, nil
}

func (c *Chunker) chunkSmall(ctx context.Context, tr *checksum.Tracker, rd io.Reader, size int64) (chunks []*Chunk, err error) {
	buf, err := readBuf(rd, size)
	if err != nil {
		return
	}
	chunk, err := dispatch(ctx, tr, buf, 0, cdc.Chunk{Offset: 0, Length: len(buf)})
	if err != nil {
		return
	}
	return []*Chunk{chunk}, nil
}

func (c *Chunker) chunkMedium(ctx context.Context, tr *checksum.Tracker, rd io.Reader, size int64) (chunks []*Chunk, err error) {
	buf, err := readBuf(rd, size)
	if err != nil {
		return
	}
	cut := cdc.New(buf, c.Params())
	for cut.HasNext() {
		chunk, err := dispatch(ctx, tr, buf, 0, cut.Next())
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return
}

// portion is the state carried from one portion of a large file to
// the next.
type portion struct {
	carry  []byte // unconsumed tail of the previous portion
	offset int64  // file offset of carry[0]
	left   int64  // file bytes not read yet
}

// readPortion returns a new buffer of at most PortionSize bytes: the
// carry-over followed by freshly read file bytes.  A new buffer is
// allocated each time because checksums of earlier portions may
// still be reading the old one.
func (c *Chunker) readPortion(rd io.Reader, p portion) (buf []byte, next portion, err error) {
	n := int64(c.PortionSize - len(p.carry))
	if n > p.left {
		n = p.left
	}
	buf = make([]byte, int64(len(p.carry))+n)
	copy(buf, p.carry)
	_, err = io.ReadFull(rd, buf[len(p.carry):])
	if err != nil {
		return nil, p, errors.Wrapf(err, "reading %d bytes at %d", n, p.offset+int64(len(p.carry)))
	}
	next = portion{offset: p.offset, left: p.left - n}
	return
}

func (c *Chunker) chunkLarge(ctx context.Context, tr *checksum.Tracker, rd io.Reader, size int64) (chunks []*Chunk, err error) {
	p := portion{left: size}
	for final := false; !final; {
		var buf []byte
		buf, p, err = c.readPortion(rd, p)
		if err != nil {
			return nil, err
		}
		final = p.left == 0

		cut := cdc.New(buf, c.Params())
		for cut.HasNext() {
			// near the end of a portion, leave the tail for the next
			// one rather than cut it without enough look-ahead
			if !final && cut.Remaining() < c.MaxSize {
				break
			}
			chunk, err := dispatch(ctx, tr, buf, p.offset, cut.Next())
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, chunk)
		}
		p.carry = buf[cut.Pos():]
		log.Debugf("portion at %d: %d bytes, %d consumed, %d carried", p.offset, len(buf), cut.Pos(), len(p.carry))
		p.offset += int64(cut.Pos())
	}
	return
}

// dispatch creates the chunk for cc, whose offset is relative to
// buf, and starts its checksum on the same slice of buf.
func dispatch(ctx context.Context, tr *checksum.Tracker, buf []byte, base int64, cc cdc.Chunk) (chunk *Chunk, err error) {
	chunk = &Chunk{Offset: base + int64(cc.Offset), Length: int64(cc.Length)}
	data := buf[cc.Offset : cc.Offset+cc.Length]
	err = tr.Go(ctx, func() {
		chunk.SetChecksum(checksum.Sum(data))
	})
	if err != nil {
		return nil, err
	}
	return
}

func readBuf(rd io.Reader, size int64) (buf []byte, err error) {
	buf = make([]byte, size)
	_, err = io.ReadFull(rd, buf)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %d bytes", size)
	}
	return
}
