package backup

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stevegt/readercomp"
	"github.com/t7a/chunkbase"
	"github.com/t7a/chunkbase/catalog"
	"github.com/t7a/chunkbase/db"
)

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

func setup(t *testing.T) (store *db.Db, cat *catalog.Catalog) {
	dir := t.TempDir()
	cfg := chunkbase.Config{MinSize: 1024, AvgSize: 4096, MaxSize: 16384, PortionSize: 65536}
	store, err := db.Db{Dir: dir, Config: cfg}.Create()
	tassert(t, err == nil, "%v", err)
	cat, err = catalog.Open(filepath.Join(dir, "catalog"))
	tassert(t, err == nil, "%v", err)
	return
}

func mkfile(t *testing.T, buf []byte) string {
	path := filepath.Join(t.TempDir(), "src")
	err := os.WriteFile(path, buf, 0644)
	tassert(t, err == nil, "%v", err)
	return path
}

func randbuf(t *testing.T, size int, seed int64) []byte {
	buf := make([]byte, size)
	_, err := rand.New(rand.NewSource(seed)).Read(buf)
	tassert(t, err == nil, "%v", err)
	return buf
}

func restoreAndCompare(t *testing.T, store *db.Db, cat *catalog.Catalog, name string, expect []byte) {
	t.Helper()
	target := filepath.Join(t.TempDir(), name)
	err := Restore(store, cat, name, target)
	tassert(t, err == nil, "%v", err)
	fh, err := os.Open(target)
	tassert(t, err == nil, "%v", err)
	defer fh.Close()
	ok, err := readercomp.Equal(bytes.NewReader(expect), fh, 4096)
	tassert(t, err == nil, "readercomp.Equal: %v", err)
	tassert(t, ok, "%s: restored content differs", name)
}

func TestBackupRestore(t *testing.T) {
	store, cat := setup(t)
	buf := randbuf(t, 200000, 1)
	stats, err := Backup(context.Background(), store, cat, "one", mkfile(t, buf), false)
	tassert(t, err == nil, "%v", err)
	tassert(t, stats.Chunks > 1, "stats %+v", stats)
	tassert(t, stats.New == stats.Chunks, "stats %+v", stats)
	tassert(t, stats.Bytes == int64(len(buf)), "stats %+v", stats)
	tassert(t, stats.NewBytes == stats.Bytes, "stats %+v", stats)
	restoreAndCompare(t, store, cat, "one", buf)
}

func TestBackupDedup(t *testing.T) {
	store, cat := setup(t)
	buf := randbuf(t, 200000, 2)
	_, err := Backup(context.Background(), store, cat, "first", mkfile(t, buf), true)
	tassert(t, err == nil, "%v", err)

	// the same content again adds nothing, and keeps the compressed
	// form even though this backup is uncompressed
	stats, err := Backup(context.Background(), store, cat, "second", mkfile(t, buf), false)
	tassert(t, err == nil, "%v", err)
	tassert(t, stats.New == 0, "stats %+v", stats)
	tassert(t, stats.NewBytes == 0, "stats %+v", stats)
	m, err := cat.Get("second")
	tassert(t, err == nil, "%v", err)
	for i, rec := range m.Records {
		tassert(t, rec.Chunk.Compressed, "record %d not compressed", i)
	}
	restoreAndCompare(t, store, cat, "second", buf)

	// an edit near the start leaves most chunks shared
	edited := append([]byte("a small edit"), buf...)
	stats, err = Backup(context.Background(), store, cat, "third", mkfile(t, edited), false)
	tassert(t, err == nil, "%v", err)
	tassert(t, stats.New > 0, "stats %+v", stats)
	tassert(t, stats.New < stats.Chunks/2, "stats %+v", stats)
	restoreAndCompare(t, store, cat, "third", edited)
	restoreAndCompare(t, store, cat, "first", buf)
}

func TestBackupRepeats(t *testing.T) {
	store, cat := setup(t)
	buf := bytes.Repeat(randbuf(t, 16384, 3), 8)
	stats, err := Backup(context.Background(), store, cat, "rep", mkfile(t, buf), true)
	tassert(t, err == nil, "%v", err)
	tassert(t, stats.New < stats.Chunks, "stats %+v", stats)
	m, err := cat.Get("rep")
	tassert(t, err == nil, "%v", err)
	for i, rec := range m.Records {
		tassert(t, rec.Chunk.Compressed, "record %d not compressed", i)
	}
	restoreAndCompare(t, store, cat, "rep", buf)
}

func TestBackupEmpty(t *testing.T) {
	store, cat := setup(t)
	stats, err := Backup(context.Background(), store, cat, "empty", mkfile(t, nil), false)
	tassert(t, err == nil, "%v", err)
	tassert(t, stats == Stats{}, "stats %+v", stats)
	restoreAndCompare(t, store, cat, "empty", nil)
}

func TestRemove(t *testing.T) {
	store, cat := setup(t)
	a := randbuf(t, 100000, 4)
	b := append(append([]byte{}, a[:50000]...), randbuf(t, 50000, 5)...)
	_, err := Backup(context.Background(), store, cat, "a", mkfile(t, a), false)
	tassert(t, err == nil, "%v", err)
	_, err = Backup(context.Background(), store, cat, "b", mkfile(t, b), false)
	tassert(t, err == nil, "%v", err)

	removed, err := Remove(store, cat, "a")
	tassert(t, err == nil, "%v", err)
	tassert(t, len(removed) > 0, "nothing removed")
	for _, sum := range removed {
		tassert(t, !store.Exists(sum), "chunk %s still stored", sum)
	}
	restoreAndCompare(t, store, cat, "b", b)

	// nothing is left for gc
	gone, err := store.CollectGarbage(cat)
	tassert(t, err == nil, "%v", err)
	tassert(t, len(gone) == 0, "gc removed %v", gone)

	err = Restore(store, cat, "a", filepath.Join(t.TempDir(), "a"))
	var nf *catalog.NotFoundError
	tassert(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
}

func TestBackupCancelled(t *testing.T) {
	store, cat := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Backup(ctx, store, cat, "x", mkfile(t, randbuf(t, 50000, 6)), false)
	tassert(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
	names, err := cat.List()
	tassert(t, err == nil, "%v", err)
	tassert(t, len(names) == 0, "names %v", names)
}

func TestBackupReusesUnreferencedChunks(t *testing.T) {
	store, cat := setup(t)
	buf := randbuf(t, 100000, 7)
	first, err := Backup(context.Background(), store, cat, "a", mkfile(t, buf), false)
	tassert(t, err == nil, "%v", err)
	tassert(t, first.New > 0, "stats %+v", first)

	// drop the manifest but leave its chunks on disk for gc
	orphans, err := cat.Delete("a")
	tassert(t, err == nil, "%v", err)
	tassert(t, len(orphans) == first.New, "orphans %d, stats %+v", len(orphans), first)

	stats, err := Backup(context.Background(), store, cat, "b", mkfile(t, buf), false)
	tassert(t, err == nil, "%v", err)
	tassert(t, stats.Chunks == first.Chunks, "stats %+v", stats)
	tassert(t, stats.New == 0, "stats %+v", stats)
	tassert(t, stats.NewBytes == 0, "stats %+v", stats)
	restoreAndCompare(t, store, cat, "b", buf)
}
