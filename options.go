package blit

import (
	"github.com/gogpu/blit/internal/parallel"
	"github.com/gogpu/blit/scratch"
)

// Option configures a Blitter during creation.
//
// Example:
//
//	// Default: 128x128 tiles, sequential, fast path enabled
//	b := blit.New()
//
//	// Four tile workers and 64x64 tiles
//	b := blit.New(blit.WithWorkers(4), blit.WithScratchCache(scratch.NewCache(64, 64)))
type Option func(*options)

// options holds optional configuration for Blitter creation.
type options struct {
	cache    *scratch.Cache
	workers  int
	fastPath bool
}

// defaultOptions returns the default blitter options.
func defaultOptions() options {
	return options{
		cache:    nil, // scratch.Default()
		workers:  1,
		fastPath: true,
	}
}

// WithScratchCache sets the cache providing tile buffers. Its maximum size
// is the tile size of the fast path.
func WithScratchCache(c *scratch.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithWorkers composites fast path tiles on n goroutines. The destination
// must accept concurrent calls on disjoint rectangles. n <= 1 keeps tiles on
// the calling goroutine; a Blitter with workers must be closed.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithFastPath enables or disables direct compositing into the native
// destination format. With the fast path disabled every alpha blit goes
// through a 24-bit staging buffer.
func WithFastPath(enabled bool) Option {
	return func(o *options) {
		o.fastPath = enabled
	}
}

// newPool returns a worker pool when more than one worker is requested.
func (o options) newPool() *parallel.WorkerPool {
	if o.workers <= 1 {
		return nil
	}
	return parallel.NewWorkerPool(o.workers)
}
