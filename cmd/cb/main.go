package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	cb "github.com/t7a/chunkbase"
	"github.com/t7a/chunkbase/backup"
	"github.com/t7a/chunkbase/catalog"
	"github.com/t7a/chunkbase/db"
)

func init() {
	var debug string
	debug = os.Getenv("DEBUG")
	if debug == "1" {
		log.SetLevel(log.DebugLevel)
	}
	logrus.SetReportCaller(true)
	formatter := &logrus.TextFormatter{
		CallerPrettyfier: caller(),
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyFile: "caller",
		},
	}
	formatter.TimestampFormat = "15:04:05.999999999"
	logrus.SetFormatter(formatter)
}

// caller returns string presentation of log caller which is formatted as
// `/path/to/file.go:line_number gid N`. e.g. `/db/store.go:25 gid 1`
func caller() func(*runtime.Frame) (function string, file string) {
	return func(f *runtime.Frame) (function string, file string) {
		p, _ := os.Getwd()
		return "", fmt.Sprintf("%s:%d gid %d", strings.TrimPrefix(f.File, p), f.Line, cb.GetGID())
	}
}

type Opts struct {
	Init     bool
	Chunk    bool
	Backup   bool
	Restore  bool
	Ls       bool
	Rm       bool
	Gc       bool
	Min      string `docopt:"--min"`
	Avg      string `docopt:"--avg"`
	Max      string `docopt:"--max"`
	Portion  string `docopt:"--portion"`
	Compress bool   `docopt:"-z"`
	Name     string
	Filename string
}

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {
	usage := `chunkbase

Usage:
  cb init [--min=<size>] [--avg=<size>] [--max=<size>] [--portion=<size>]
  cb chunk <filename>
  cb backup [-z] <name> <filename>
  cb restore <name> <filename>
  cb ls [<name>]
  cb rm <name>
  cb gc

Options:
  -h --help         Show this screen.
  --version         Show version.
  -z                Compress new chunks.
  --min=<size>      Minimum chunk size, e.g. 64k.
  --avg=<size>      Average chunk size.
  --max=<size>      Maximum chunk size.
  --portion=<size>  Read large files this much at a time.

The store lives in $DBDIR, default .chunkbase.
`
	parser := &docopt.Parser{OptionsFirst: false}
	o, _ := parser.ParseArgs(usage, os.Args[1:], "0.0")
	var opts Opts
	err := o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return 22
	}
	log.Debug(opts)

	var msg string
	switch true {
	case opts.Init:
		msg, err = create(opts)
	case opts.Chunk:
		msg, err = chunk(opts.Filename)
	case opts.Backup:
		msg, err = backupFile(opts.Name, opts.Filename, opts.Compress)
	case opts.Restore:
		msg, err = restoreFile(opts.Name, opts.Filename)
	case opts.Ls:
		msg, err = ls(opts.Name)
	case opts.Rm:
		msg, err = rm(opts.Name)
	case opts.Gc:
		msg, err = gc()
	}
	if err != nil {
		log.Error(err)
		return 42
	}
	fmt.Print(msg)
	return 0
}

func dbdir() (dir string) {
	dir = os.Getenv("DBDIR")
	if dir == "" {
		dir = ".chunkbase"
	}
	return
}

func create(opts Opts) (msg string, err error) {
	defer Return(&err)
	var cfg cb.Config
	sizes := []struct {
		arg string
		dst *int
	}{
		{opts.Min, &cfg.MinSize},
		{opts.Avg, &cfg.AvgSize},
		{opts.Max, &cfg.MaxSize},
		{opts.Portion, &cfg.PortionSize},
	}
	for _, s := range sizes {
		if s.arg == "" {
			continue
		}
		*s.dst, err = cb.ParseSize(s.arg)
		Ck(err)
	}
	store, err := db.Db{Dir: dbdir(), Config: cfg}.Create()
	Ck(err)
	return fmt.Sprintf("Initialized empty chunk store in %s\n", store.Dir), nil
}

func open() (store *db.Db, cat *catalog.Catalog, err error) {
	defer Return(&err)
	store, err = db.Open(dbdir())
	Ck(err)
	cat, err = catalog.Open(filepath.Join(store.Dir, "catalog"))
	Ck(err)
	return
}

func chunk(filename string) (msg string, err error) {
	defer Return(&err)
	store, _, err := open()
	Ck(err)
	ch, err := store.Chunker()
	Ck(err)
	chunks, err := ch.ChunkPath(context.Background(), filename)
	Ck(err)
	var out strings.Builder
	var size int64
	for _, c := range chunks {
		fmt.Fprintf(&out, "%d %d %s\n", c.Offset, c.Length, c.Checksum)
		size += c.Length
	}
	fmt.Fprintf(&out, "%d chunks, %s\n", len(chunks), humanize.Bytes(uint64(size)))
	return out.String(), nil
}

func backupFile(name, filename string, compress bool) (msg string, err error) {
	defer Return(&err)
	store, cat, err := open()
	Ck(err)
	stats, err := backup.Backup(context.Background(), store, cat, name, filename, compress || store.Compress)
	Ck(err)
	msg = fmt.Sprintf("%s: %d chunks, %d new, %s of %s stored\n",
		name, stats.Chunks, stats.New,
		humanize.Bytes(uint64(stats.NewBytes)), humanize.Bytes(uint64(stats.Bytes)))
	return
}

func restoreFile(name, filename string) (msg string, err error) {
	defer Return(&err)
	store, cat, err := open()
	Ck(err)
	err = backup.Restore(store, cat, name, filename)
	Ck(err)
	return fmt.Sprintf("restored %s to %s\n", name, filename), nil
}

func ls(name string) (msg string, err error) {
	defer Return(&err)
	_, cat, err := open()
	Ck(err)
	if name == "" {
		names, err := cat.List()
		Ck(err)
		for _, n := range names {
			msg += n + "\n"
		}
		return msg, nil
	}
	m, err := cat.Get(name)
	Ck(err)
	var out strings.Builder
	fmt.Fprintf(&out, "%s %s %d chunks\n", m.Name, humanize.Bytes(uint64(m.Size)), len(m.Records))
	for _, rec := range m.Records {
		form := "raw"
		if rec.Chunk.Compressed {
			form = "deflate"
		}
		fmt.Fprintf(&out, "%d %d %s %s\n", rec.Chunk.Offset, rec.Chunk.Length, rec.Chunk.Checksum, form)
	}
	return out.String(), nil
}

func rm(name string) (msg string, err error) {
	defer Return(&err)
	store, cat, err := open()
	Ck(err)
	removed, err := backup.Remove(store, cat, name)
	Ck(err)
	return fmt.Sprintf("removed %s, freed %d chunks\n", name, len(removed)), nil
}

func gc() (msg string, err error) {
	defer Return(&err)
	store, cat, err := open()
	Ck(err)
	removed, err := store.CollectGarbage(cat)
	Ck(err)
	return fmt.Sprintf("removed %d orphan chunks\n", len(removed)), nil
}
