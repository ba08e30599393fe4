package collision

import "sync"

// pairPool recycles per-chunk candidate buffers between substeps.
type pairPool struct {
	pool sync.Pool
}

func newPairPool(capacity int) *pairPool {
	return &pairPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]Pair, 0, capacity)
				return &buf
			},
		},
	}
}

func (p *pairPool) Get() *[]Pair {
	buf := p.pool.Get().(*[]Pair)
	*buf = (*buf)[:0]
	return buf
}

func (p *pairPool) Put(buf *[]Pair) {
	p.pool.Put(buf)
}
