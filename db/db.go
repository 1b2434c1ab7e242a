/*

Package db is the content-addressed chunk store.  A store is a
directory holding config.json, the chunking config every file in the
store is cut with, and a chunk/ subdirectory with one file per
distinct chunk, named by its checksum.  A chunk file holds the raw
chunk bytes, or a headerless deflate stream of them.

*/
package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	. "github.com/stevegt/goadapt"
	"github.com/t7a/chunkbase"
	"github.com/t7a/chunkbase/checksum"
	"github.com/t7a/chunkbase/codec"
)

// Db is a chunk store rooted at Dir.
type Db struct {
	Dir string `json:"-"` // base of store
	chunkbase.Config
	Codec codec.Codec `json:"-"` // compressor for compressed chunks
}

type ExistsError struct {
	Dir string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("directory not empty: %s", e.Dir)
}

type NotDbError struct {
	Dir string
}

func (e *NotDbError) Error() string {
	return fmt.Sprintf("not a database: %s", e.Dir)
}

// Create initializes a db directory and its contents.  Zero Config
// fields get their defaults.
func (db Db) Create() (out *Db, err error) {
	defer Return(&err)

	dir := db.Dir

	// if directory exists, make sure it's empty
	if canstat(dir) {
		files, err := os.ReadDir(dir)
		Ck(err)
		if len(files) > 0 {
			return nil, &ExistsError{Dir: dir}
		}
	}

	ch, err := chunkbase.Chunker{Config: db.Config}.Init()
	if err != nil {
		return nil, err
	}
	db.Config = ch.Config

	err = mkdir(dir, 0755)
	Ck(err)

	// the chunk dir is where we store chunks by checksum
	err = mkdir(filepath.Join(dir, "chunk"), 0755)
	Ck(err)

	buf, err := json.MarshalIndent(db, "", "  ")
	Ck(err)
	err = renameio.WriteFile(filepath.Join(dir, "config.json"), buf, 0644)
	Ck(err)

	if db.Codec == nil {
		db.Codec = codec.Deflate{}
	}
	return &db, nil
}

// Open loads an existing db from dir.
func Open(dir string) (db *Db, err error) {
	dir = filepath.Clean(dir)

	if !canstat(dir) {
		return nil, fmt.Errorf("cannot open: %s", dir)
	}

	// load config
	buf, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, &NotDbError{Dir: dir}
	}
	db = &Db{}
	err = json.Unmarshal(buf, db)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config of %s", dir)
	}
	err = db.Config.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "config of %s", dir)
	}
	db.Dir = dir
	db.Codec = codec.Deflate{}
	return
}

// Chunker returns a chunker using the db's config.
func (db *Db) Chunker() (*chunkbase.Chunker, error) {
	return chunkbase.Chunker{Config: db.Config}.Init()
}

// ChunkDir returns the directory holding the chunk files.
func (db *Db) ChunkDir() string {
	return filepath.Join(db.Dir, "chunk")
}

// Path returns the file path of the chunk named sum.
func (db *Db) Path(sum string) (path string, err error) {
	if !checksum.Valid(sum) {
		return "", errors.Errorf("invalid checksum %q", sum)
	}
	return filepath.Join(db.ChunkDir(), sum), nil
}

// Exists reports whether the chunk named sum is in the store.
func (db *Db) Exists(sum string) bool {
	path, err := db.Path(sum)
	if err != nil {
		return false
	}
	return canstat(path)
}

func canstat(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mkdir(dir string, mode os.FileMode) (err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, mode)
		if err != nil {
			return
		}
	}
	return
}
