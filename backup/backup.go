// Package backup ties the chunker, the store and the catalog together
// into whole-file backup and restore.
package backup

import (
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/chunkbase"
	"github.com/t7a/chunkbase/catalog"
	"github.com/t7a/chunkbase/db"
)

// Stats summarizes one backup.
type Stats struct {
	Chunks   int   // chunks in the file
	New      int   // chunks added to the store
	Bytes    int64 // file size
	NewBytes int64 // raw size of the chunks added to the store
}

// Backup chunks the file at path, stores the chunks the catalog does
// not know yet, and records the file under name.  Chunks the catalog
// already knows keep the form they were stored in.
func Backup(ctx context.Context, store *db.Db, cat *catalog.Catalog, name, path string, compress bool) (stats Stats, err error) {
	ch, err := store.Chunker()
	if err != nil {
		return
	}
	chunks, err := ch.ChunkPath(ctx, path)
	if err != nil {
		return
	}

	var missing []*chunkbase.Chunk
	pending := make(map[string]*chunkbase.Chunk)
	for _, chunk := range chunks {
		stats.Bytes += chunk.Length
		rec, ok, err := cat.Lookup(chunk.Checksum)
		if err != nil {
			return stats, err
		}
		if ok {
			chunk.Compressed = rec.Chunk.Compressed
			continue
		}
		if pending[chunk.Checksum] != nil {
			continue
		}
		pending[chunk.Checksum] = chunk
		missing = append(missing, chunk)
		// an unreferenced chunk left for gc is reused, not written
		if store.Exists(chunk.Checksum) {
			continue
		}
		stats.New++
		stats.NewBytes += chunk.Length
	}

	err = store.Store(path, missing, compress)
	if err != nil {
		return
	}
	// repeats within the file take the form of their first occurrence
	for _, chunk := range chunks {
		if first := pending[chunk.Checksum]; first != nil {
			chunk.Compressed = first.Compressed
		}
	}

	_, err = cat.Put(name, stats.Bytes, chunks)
	if err != nil {
		return
	}
	stats.Chunks = len(chunks)
	log.Debugf("backup %s: %+v", name, stats)
	return
}

// Restore writes the file recorded under name to target.
func Restore(store *db.Db, cat *catalog.Catalog, name, target string) (err error) {
	m, err := cat.Get(name)
	if err != nil {
		return
	}
	err = store.Restore(target, m.Chunks())
	if err != nil {
		return
	}
	info, err := os.Stat(target)
	if err != nil {
		return errors.Wrapf(err, "checking %s", target)
	}
	if info.Size() != m.Size {
		return errors.Errorf("restored %s has %d bytes, expected %d", target, info.Size(), m.Size)
	}
	return
}

// Remove deletes the backup name and removes the chunks no other
// backup refers to.  It returns the removed checksums.
func Remove(store *db.Db, cat *catalog.Catalog, name string) (removed []string, err error) {
	orphans, err := cat.Delete(name)
	if err != nil {
		return
	}
	err = store.RemoveChunks(orphans)
	if err != nil {
		return
	}
	return orphans, nil
}
