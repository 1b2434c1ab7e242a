package chunkbase

import (
	"fmt"

	. "github.com/stevegt/goadapt"
)

// Chunk is the coordinate and fingerprint of one byte range of a
// file.  It owns no file data.
type Chunk struct {
	Offset     int64
	Length     int64
	Checksum   string
	Compressed bool
}

// End returns the offset just past the chunk.
func (c *Chunk) End() int64 {
	return c.Offset + c.Length
}

// Pending reports whether the checksum is still unset.
func (c *Chunk) Pending() bool {
	return c.Checksum == ""
}

// SetChecksum assigns the checksum.  A checksum is written once;
// overwriting it is a programming error and panics.
func (c *Chunk) SetChecksum(sum string) {
	Assert(c.Pending(), "checksum of chunk at %d already set", c.Offset)
	c.Checksum = sum
}

// Equal reports whether c and other have the same content.  Pending
// chunks are not comparable and are never equal to anything.
func (c *Chunk) Equal(other *Chunk) bool {
	if c.Pending() || other.Pending() {
		return false
	}
	return c.Checksum == other.Checksum && c.Length == other.Length
}

func (c *Chunk) String() string {
	sum := c.Checksum
	if c.Pending() {
		sum = "pending"
	}
	return fmt.Sprintf("%d+%d %s", c.Offset, c.Length, sum)
}
