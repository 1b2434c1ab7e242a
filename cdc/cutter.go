/*

Package cdc finds content-defined chunk boundaries in an in-memory
buffer using a gear rolling hash with normalized chunking: a strict
mask is applied between the minimum and average size, and a loose one
from the average up to the maximum, which pulls the size distribution
toward the average.

*/
package cdc

import (
	"math/bits"

	"github.com/pkg/errors"
	. "github.com/stevegt/goadapt"
)

const (
	kiB = 1024
	miB = 1024 * kiB
	giB = 1024 * miB

	// DefaultMinSize is the default minimal size of a chunk.
	DefaultMinSize = 128 * kiB
	// DefaultAvgSize is the default target size of a chunk.
	DefaultAvgSize = 512 * kiB
	// DefaultMaxSize is the default maximal size of a chunk.
	DefaultMaxSize = 4 * miB
)

// ErrInvalidParams is wrapped by every Params.Validate failure.
var ErrInvalidParams = errors.New("invalid chunk size parameters")

// Params are the size bounds of a Cutter.
type Params struct {
	MinSize int
	AvgSize int
	MaxSize int
}

// DefaultParams returns the default size bounds.
func DefaultParams() Params {
	return Params{MinSize: DefaultMinSize, AvgSize: DefaultAvgSize, MaxSize: DefaultMaxSize}
}

// Validate checks each size against its allowed range and the
// ordering min < avg < max.
func (p Params) Validate() error {
	switch {
	case p.MinSize < 64 || p.MinSize > 64*miB:
		return errors.Wrapf(ErrInvalidParams, "min size %d not in [64, 64MiB]", p.MinSize)
	case p.AvgSize < 256 || p.AvgSize > 256*miB:
		return errors.Wrapf(ErrInvalidParams, "avg size %d not in [256, 256MiB]", p.AvgSize)
	case p.MaxSize < 1*kiB || p.MaxSize > 1*giB:
		return errors.Wrapf(ErrInvalidParams, "max size %d not in [1KiB, 1GiB]", p.MaxSize)
	case p.MinSize >= p.AvgSize || p.AvgSize >= p.MaxSize:
		return errors.Wrapf(ErrInvalidParams, "sizes must satisfy min %d < avg %d < max %d", p.MinSize, p.AvgSize, p.MaxSize)
	}
	return nil
}

// Masks returns the strict and loose boundary masks for p.
func (p Params) Masks() (maskS, maskL uint64) {
	b := bits.Len(uint(p.AvgSize)) - 1
	maskS = 1<<uint(b+2) - 1
	maskL = 1<<uint(b-2) - 1
	return
}

// Chunk is a boundary decision: Offset is relative to the start of
// the buffer given to New.
type Chunk struct {
	Offset int
	Length int
}

// Cutter is a cursor over one buffer.  It keeps no state across
// buffers; stitching portions of a larger file together is up to the
// caller.
type Cutter struct {
	buf   []byte
	pos   int
	p     Params
	maskS uint64
	maskL uint64
}

// New returns a Cutter positioned at the start of buf.  p must be
// valid; an invalid p is a programming error and panics.
func New(buf []byte, p Params) *Cutter {
	err := p.Validate()
	Assert(err == nil, err)
	c := &Cutter{buf: buf, p: p}
	c.maskS, c.maskL = p.Masks()
	return c
}

// HasNext reports whether any bytes of the buffer are left.
func (c *Cutter) HasNext() bool {
	return c.pos < len(c.buf)
}

// Next consumes and returns the next chunk.
func (c *Cutter) Next() (chunk Chunk) {
	n := c.cut(c.buf[c.pos:])
	chunk = Chunk{Offset: c.pos, Length: n}
	c.pos += n
	return
}

// Pos returns the number of bytes consumed so far.
func (c *Cutter) Pos() int {
	return c.pos
}

// Remaining returns the number of bytes not yet consumed.
func (c *Cutter) Remaining() int {
	return len(c.buf) - c.pos
}

// cut returns the length of the chunk starting at src[0].
func (c *Cutter) cut(src []byte) int {
	remaining := len(src)
	if remaining <= c.p.MinSize {
		return remaining
	}
	avgThreshold := c.p.AvgSize
	totalThreshold := remaining
	if remaining >= c.p.MaxSize {
		totalThreshold = c.p.MaxSize
	} else if remaining <= avgThreshold {
		avgThreshold = remaining
	}

	var fp uint64
	i := c.p.MinSize
	for ; i < avgThreshold; i++ {
		fp = (fp >> 1) + Gear[src[i]]
		if fp&c.maskS == 0 {
			return i
		}
	}
	for ; i < totalThreshold; i++ {
		fp = (fp >> 1) + Gear[src[i]]
		if fp&c.maskL == 0 {
			return i
		}
	}
	return totalThreshold
}
