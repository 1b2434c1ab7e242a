package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/chunkbase/checksum"
)

// Oracle tells whether anything still references a chunk.
type Oracle interface {
	ExistsChunkByChecksum(sum string) (bool, error)
}

// InconsistentError is returned when a bulk removal fails after some
// chunks were already removed.  Removed lists those chunks, Failed is
// the one that could not be removed, and nothing after it was tried.
type InconsistentError struct {
	Removed []string
	Failed  string
	Err     error
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("removed %d chunks, then failed on %s: %v", len(e.Removed), e.Failed, e.Err)
}

func (e *InconsistentError) Unwrap() error {
	return e.Err
}

// RemoveChunks removes the named chunks in order and stops at the
// first failure.  A chunk missing from the store is a failure.
func (db *Db) RemoveChunks(sums []string) (err error) {
	for i, sum := range sums {
		err = db.removeChunk(sum)
		if err == nil {
			continue
		}
		if i == 0 {
			return
		}
		removed := make([]string, i)
		copy(removed, sums[:i])
		return &InconsistentError{Removed: removed, Failed: sum, Err: err}
	}
	return
}

func (db *Db) removeChunk(sum string) (err error) {
	path, err := db.Path(sum)
	if err != nil {
		return
	}
	err = os.Remove(path)
	if err != nil {
		return errors.Wrapf(err, "removing chunk %s", sum)
	}
	log.Debugf("removed chunk %s", sum)
	return
}

// CollectGarbage removes every chunk the oracle does not know about
// and returns the removed checksums.  Files in the chunk dir that are
// not named by a checksum are left alone.
func (db *Db) CollectGarbage(oracle Oracle) (removed []string, err error) {
	dir := db.ChunkDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !checksum.Valid(name) {
			log.Warnf("gc: skipping %s", filepath.Join(dir, name))
			continue
		}
		var ok bool
		ok, err = oracle.ExistsChunkByChecksum(name)
		if err != nil {
			return removed, errors.Wrapf(err, "looking up chunk %s", name)
		}
		if ok {
			continue
		}
		err = os.Remove(filepath.Join(dir, name))
		if err != nil {
			return removed, errors.Wrapf(err, "removing chunk %s", name)
		}
		log.Debugf("gc: removed orphan chunk %s", name)
		removed = append(removed, name)
	}
	return removed, nil
}
