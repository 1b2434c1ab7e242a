// Package catalog records which chunks make up each backed-up file.
// Every file has a manifest, stored msgpack-encoded under the catalog
// directory with the file's backup name as its file name.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/t7a/chunkbase"
	"github.com/vmihailenco/msgpack"
)

// Record is one chunk of a backed-up file: the chunk itself, the
// name of the file it belongs to, and its position in that file's
// chunk list.
type Record struct {
	Chunk   chunkbase.Chunk
	FileRef string
	Ordinal int
}

// Manifest lists the chunks of one file in offset order.
type Manifest struct {
	Name    string
	Size    int64
	Records []Record
}

// Chunks returns the chunks of the manifest in offset order.
func (m *Manifest) Chunks() (chunks []*chunkbase.Chunk) {
	for i := range m.Records {
		chunk := m.Records[i].Chunk
		chunks = append(chunks, &chunk)
	}
	return
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such backup: %s", e.Name)
}

// Catalog is a directory of manifests.  It keeps an in-memory index
// of chunk checksums, built on first lookup; a Catalog is not safe
// for concurrent use.
type Catalog struct {
	Dir   string
	index map[string]Record
}

// Open returns the catalog in dir, creating dir if needed.
func Open(dir string) (cat *Catalog, err error) {
	defer Return(&err)
	err = os.MkdirAll(dir, 0755)
	Ck(err)
	return &Catalog{Dir: filepath.Clean(dir)}, nil
}

func (cat *Catalog) path(name string) (path string, err error) {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", errors.Errorf("invalid backup name %q", name)
	}
	return filepath.Join(cat.Dir, name), nil
}

// Put records chunks as the content of the file name, replacing any
// earlier manifest of that name.
func (cat *Catalog) Put(name string, size int64, chunks []*chunkbase.Chunk) (m *Manifest, err error) {
	path, err := cat.path(name)
	if err != nil {
		return
	}
	m = &Manifest{Name: name, Size: size}
	for i, chunk := range chunks {
		Assert(!chunk.Pending(), "chunk %d of %s has no checksum", i, name)
		m.Records = append(m.Records, Record{Chunk: *chunk, FileRef: name, Ordinal: i})
	}
	buf, err := msgpack.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding manifest %s", name)
	}
	err = renameio.WriteFile(path, buf, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "writing manifest %s", name)
	}
	// a replaced manifest may have dropped references
	cat.index = nil
	log.Debugf("catalog: put %s with %d chunks", name, len(chunks))
	return
}

// Get loads the manifest of the file name.
func (cat *Catalog) Get(name string) (m *Manifest, err error) {
	path, err := cat.path(name)
	if err != nil {
		return
	}
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Name: name}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", name)
	}
	m = &Manifest{}
	err = msgpack.Unmarshal(buf, m)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding manifest %s", name)
	}
	return
}

// List returns the names of all manifests, sorted.
func (cat *Catalog) List() (names []string, err error) {
	defer Return(&err)
	entries, err := os.ReadDir(cat.Dir)
	Ck(err)
	for _, ent := range entries {
		name := ent.Name()
		// skip pending writes
		if ent.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// Delete removes the manifest of the file name and returns the
// checksums no other manifest refers to.
func (cat *Catalog) Delete(name string) (orphans []string, err error) {
	m, err := cat.Get(name)
	if err != nil {
		return
	}
	path, err := cat.path(name)
	if err != nil {
		return
	}
	err = os.Remove(path)
	if err != nil {
		return nil, errors.Wrapf(err, "removing manifest %s", name)
	}
	cat.index = nil

	seen := make(map[string]bool)
	for _, rec := range m.Records {
		sum := rec.Chunk.Checksum
		if seen[sum] {
			continue
		}
		seen[sum] = true
		var ok bool
		ok, err = cat.ExistsChunkByChecksum(sum)
		if err != nil {
			return nil, err
		}
		if !ok {
			orphans = append(orphans, sum)
		}
	}
	log.Debugf("catalog: deleted %s, %d orphans", name, len(orphans))
	return
}

func (cat *Catalog) load() (err error) {
	if cat.index != nil {
		return
	}
	names, err := cat.List()
	if err != nil {
		return
	}
	index := make(map[string]Record)
	for _, name := range names {
		m, err := cat.Get(name)
		if err != nil {
			return err
		}
		for _, rec := range m.Records {
			index[rec.Chunk.Checksum] = rec
		}
	}
	cat.index = index
	return
}

// ExistsChunkByChecksum reports whether any manifest refers to the
// chunk sum.
func (cat *Catalog) ExistsChunkByChecksum(sum string) (ok bool, err error) {
	_, ok, err = cat.Lookup(sum)
	return
}

// Lookup returns a record of some manifest referring to the chunk
// sum.  The record tells how the chunk was stored.
func (cat *Catalog) Lookup(sum string) (rec Record, ok bool, err error) {
	err = cat.load()
	if err != nil {
		return
	}
	rec, ok = cat.index[sum]
	return
}
