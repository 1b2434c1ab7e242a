package db

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/chunkbase"
)

// CreateError is returned when a chunk file in the store, or the
// target file of a restore, cannot be created.  Checksum is empty for
// a restore target.
type CreateError struct {
	Path     string
	Checksum string
	Err      error
}

func (e *CreateError) Error() string {
	if e.Checksum == "" {
		return fmt.Sprintf("creating %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("creating chunk %s: %v", e.Checksum, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// Store copies the chunks of the file src into the store, compressing
// them if compress is set, and records the stored form in each
// chunk's Compressed field.  A chunk already in the store is left
// alone.
func (db *Db) Store(src string, chunks []*chunkbase.Chunk, compress bool) (err error) {
	fh, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer fh.Close()

	for _, chunk := range chunks {
		err = db.storeChunk(fh, chunk, compress)
		if err != nil {
			return errors.Wrapf(err, "storing %s", src)
		}
	}
	return
}

func (db *Db) storeChunk(src *os.File, chunk *chunkbase.Chunk, compress bool) (err error) {
	path, err := db.Path(chunk.Checksum)
	if err != nil {
		return
	}

	info, err := os.Stat(path)
	if err == nil {
		// Nothing records how an unreferenced chunk was stored, so
		// the size decides.  klauspost's deflate writer falls back to
		// stored blocks, each with a 5-byte header, when compression
		// does not pay, so a deflated chunk is either smaller or
		// larger than its raw length, never equal to it.
		chunk.Compressed = info.Size() != chunk.Length
		log.Debugf("chunk %s exists, skipping", chunk.Checksum)
		return nil
	}

	pf, err := renameio.TempFile(db.ChunkDir(), path)
	if err != nil {
		return &CreateError{Path: path, Checksum: chunk.Checksum, Err: err}
	}
	defer pf.Cleanup()

	if compress {
		buf := make([]byte, chunk.Length)
		_, err = src.ReadAt(buf, chunk.Offset)
		if err != nil {
			return errors.Wrapf(err, "reading chunk %v", chunk)
		}
		err = db.Codec.Compress(pf, buf)
		if err != nil {
			return errors.Wrapf(err, "chunk %s", chunk.Checksum)
		}
	} else {
		_, err = src.Seek(chunk.Offset, io.SeekStart)
		if err != nil {
			return errors.Wrapf(err, "seeking to chunk %v", chunk)
		}
		var n int64
		n, err = io.Copy(pf, io.LimitReader(src, chunk.Length))
		if err != nil {
			return errors.Wrapf(err, "copying chunk %v", chunk)
		}
		if n != chunk.Length {
			return errors.Errorf("chunk %v: source ends after %d bytes", chunk, n)
		}
	}

	err = pf.CloseAtomicallyReplace()
	if err != nil {
		return errors.Wrapf(err, "committing chunk %s", chunk.Checksum)
	}
	chunk.Compressed = compress
	log.Debugf("stored chunk %v compressed %v", chunk, compress)
	return
}

// Restore rebuilds target from chunks.  The file is assembled next to
// target and then renamed over it, so an existing target is replaced
// only once every chunk has been written.
func (db *Db) Restore(target string, chunks []*chunkbase.Chunk) (err error) {
	pf, err := renameio.TempFile(filepath.Dir(target), target)
	if err != nil {
		return &CreateError{Path: target, Err: err}
	}
	defer pf.Cleanup()

	for _, chunk := range chunks {
		err = db.restoreChunk(pf, chunk)
		if err != nil {
			return errors.Wrapf(err, "restoring %s", target)
		}
	}

	err = pf.Chmod(0644)
	if err != nil {
		return errors.Wrapf(err, "restoring %s", target)
	}
	err = pf.CloseAtomicallyReplace()
	if err != nil {
		return errors.Wrapf(err, "replacing %s", target)
	}
	return
}

func (db *Db) restoreChunk(pf *renameio.PendingFile, chunk *chunkbase.Chunk) (err error) {
	path, err := db.Path(chunk.Checksum)
	if err != nil {
		return
	}
	fh, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening chunk %s", chunk.Checksum)
	}
	defer fh.Close()

	if chunk.Compressed {
		buf, err := db.Codec.Decompress(fh, chunk.Length)
		if err != nil {
			return errors.Wrapf(err, "chunk %s", chunk.Checksum)
		}
		_, err = pf.WriteAt(buf, chunk.Offset)
		if err != nil {
			return errors.Wrapf(err, "writing chunk %v", chunk)
		}
		return nil
	}

	_, err = pf.Seek(chunk.Offset, io.SeekStart)
	if err != nil {
		return errors.Wrapf(err, "seeking to chunk %v", chunk)
	}
	n, err := io.Copy(pf, io.LimitReader(fh, chunk.Length))
	if err != nil {
		return errors.Wrapf(err, "copying chunk %v", chunk)
	}
	if n != chunk.Length {
		return errors.Errorf("chunk %s holds %d bytes, expected %d", chunk.Checksum, n, chunk.Length)
	}
	return
}
