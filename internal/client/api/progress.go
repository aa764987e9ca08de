package api

import (
	"io"
	"sync"
)

// progressReader wraps a request body and reports transmission progress as
// a percentage. Reported values never decrease, and finish pins the final
// value at 100 so callers observe completion even when the transport read
// the body in one gulp.
type progressReader struct {
	r     io.Reader
	total int64
	fn    func(percent int)

	mu   sync.Mutex
	sent int64
	last int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.report(int64(n))
	}
	return n, err
}

func (p *progressReader) report(n int64) {
	if p.fn == nil || p.total <= 0 {
		return
	}
	p.mu.Lock()
	p.sent += n
	percent := int(p.sent * 100 / p.total)
	if percent > 100 {
		percent = 100
	}
	fire := percent > p.last
	if fire {
		p.last = percent
	}
	p.mu.Unlock()

	if fire {
		p.fn(percent)
	}
}

func (p *progressReader) finish() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	fire := p.last < 100
	p.last = 100
	p.mu.Unlock()

	if fire {
		p.fn(100)
	}
}
