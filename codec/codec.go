// Package codec compresses chunk content for storage.  A compressed
// chunk carries no header, so readers must know its uncompressed
// length.
package codec

import (
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

// Codec compresses and decompresses whole chunks.
type Codec interface {
	// Compress writes the compressed form of buf to w.
	Compress(w io.Writer, buf []byte) error
	// Decompress reads exactly n uncompressed bytes from r.
	Decompress(r io.Reader, n int64) ([]byte, error)
}

// NoCompression selects deflate stored blocks.  flate.NoCompression
// is 0, which Deflate reads as "default".
const NoCompression = -3

// Deflate is a raw deflate Codec.  Level is a flate level, except that
// the zero value uses flate.DefaultCompression and NoCompression
// stands for flate.NoCompression.
type Deflate struct {
	Level int
}

func (d Deflate) level() int {
	switch d.Level {
	case 0:
		return flate.DefaultCompression
	case NoCompression:
		return flate.NoCompression
	}
	return d.Level
}

func (d Deflate) Compress(w io.Writer, buf []byte) (err error) {
	fw, err := flate.NewWriter(w, d.level())
	if err != nil {
		return errors.Wrap(err, "while compressing")
	}
	_, err = fw.Write(buf)
	if err != nil {
		fw.Close()
		return errors.Wrap(err, "while compressing")
	}
	err = fw.Close()
	if err != nil {
		return errors.Wrap(err, "while compressing")
	}
	return
}

func (d Deflate) Decompress(r io.Reader, n int64) (buf []byte, err error) {
	fr := flate.NewReader(r)
	defer fr.Close()
	buf = make([]byte, n)
	_, err = io.ReadFull(fr, buf)
	if err != nil {
		return nil, errors.Wrapf(err, "while decompressing %d bytes", n)
	}
	return
}
