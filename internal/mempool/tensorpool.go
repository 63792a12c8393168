// Package mempool reuses tensor-sized float32 buffers between images.
package mempool

import (
	"sync"
	"sync/atomic"
)

// TensorPool hands out []float32 buffers of one fixed length. Buffers are
// not zeroed between uses; callers overwrite every element.
type TensorPool struct {
	length int
	pool   sync.Pool
	allocs atomic.Int64
	gets   atomic.Int64
}

// NewTensorPool returns a pool of buffers holding length values.
func NewTensorPool(length int) *TensorPool {
	p := &TensorPool{length: max(length, 0)}
	p.pool.New = func() any {
		p.allocs.Add(1)
		buf := make([]float32, p.length)
		return &buf
	}
	return p
}

// Length is the number of values in each buffer.
func (p *TensorPool) Length() int { return p.length }

// Get returns a buffer of exactly Length values.
func (p *TensorPool) Get() []float32 {
	p.gets.Add(1)
	bp, ok := p.pool.Get().(*[]float32)
	if !ok || cap(*bp) < p.length {
		p.allocs.Add(1)
		return make([]float32, p.length)
	}
	return (*bp)[:p.length]
}

// Put returns buf to the pool. Buffers too small for the pool are dropped;
// nil is ignored.
func (p *TensorPool) Put(buf []float32) {
	if buf == nil || cap(buf) < p.length {
		return
	}
	buf = buf[:p.length]
	p.pool.Put(&buf)
}

// Stats reports how many buffers were requested and how many had to be
// allocated. Allocations may exceed what is strictly needed because the
// runtime can drop pooled buffers at any GC.
type Stats struct {
	Gets   int64
	Allocs int64
}

// Stats returns a snapshot of the pool counters.
func (p *TensorPool) Stats() Stats {
	return Stats{Gets: p.gets.Load(), Allocs: p.allocs.Load()}
}
