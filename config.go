package chunkbase

import (
	"runtime"

	"github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/t7a/chunkbase/cdc"
)

const (
	kiB = 1024
	miB = 1024 * kiB

	// DefaultPortionSize is the default amount of a large file held in
	// memory at one time.
	DefaultPortionSize = 16 * miB
)

// Config holds the chunking parameters.  A store keeps its Config in
// config.json so that every file in it is chunked the same way.
type Config struct {
	MinSize     int  // minimum chunk size
	AvgSize     int  // target average chunk size
	MaxSize     int  // maximum chunk size
	PortionSize int  // large files are read in portions of this size
	Workers     int  // concurrent checksum computations
	Compress    bool // deflate chunks in the store
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.MinSize == 0 {
		c.MinSize = cdc.DefaultMinSize
	}
	if c.AvgSize == 0 {
		c.AvgSize = cdc.DefaultAvgSize
	}
	if c.MaxSize == 0 {
		c.MaxSize = cdc.DefaultMaxSize
	}
	if c.PortionSize == 0 {
		c.PortionSize = DefaultPortionSize
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}

// Params returns the cutter parameters of c.
func (c Config) Params() cdc.Params {
	return cdc.Params{MinSize: c.MinSize, AvgSize: c.AvgSize, MaxSize: c.MaxSize}
}

// Validate checks the chunk sizes and makes sure a portion can always
// hold a full chunk plus its carry-over.
func (c Config) Validate() error {
	err := c.Params().Validate()
	if err != nil {
		return err
	}
	if c.PortionSize < 2*c.MaxSize {
		return errors.Wrapf(cdc.ErrInvalidParams, "portion size %d less than twice max size %d", c.PortionSize, c.MaxSize)
	}
	if c.Workers < 0 {
		return errors.Errorf("negative worker count %d", c.Workers)
	}
	return nil
}

// ParseSize parses a human-readable size such as "64k" or "4MiB".
func ParseSize(s string) (n int, err error) {
	size, err := units.RAMInBytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "bad size %q", s)
	}
	if size <= 0 || int64(int(size)) != size {
		return 0, errors.Errorf("size out of range: %q", s)
	}
	return int(size), nil
}
