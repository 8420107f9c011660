// Package useragent provides a rotating pool of browser User-Agent strings
// used to vary the client identity across page requests.
package useragent

import (
	"crypto/rand"
	"math/big"
	"sync/atomic"
)

// Defaults is a set of current desktop browser User-Agents. Search engines
// serve the legacy result markup to these identities, which is what the
// parser expects.
var Defaults = []string{
	// Chrome Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	// Chrome Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	// Firefox Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	// Firefox Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:123.0) Gecko/20100101 Firefox/123.0",
	// Safari Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	// Edge Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0",
}

// Pool hands out User-Agents either round-robin or at random. It is safe for
// concurrent use.
type Pool struct {
	agents  []string
	counter atomic.Uint64
}

// NewPool creates a pool from the given User-Agents. An empty slice falls
// back to Defaults. The input is copied.
func NewPool(agents []string) *Pool {
	if len(agents) == 0 {
		agents = Defaults
	}
	copied := make([]string, len(agents))
	copy(copied, agents)
	return &Pool{agents: copied}
}

// Next returns the next User-Agent in round-robin order.
func (p *Pool) Next() string {
	if len(p.agents) == 0 {
		return ""
	}
	idx := p.counter.Add(1) - 1
	return p.agents[idx%uint64(len(p.agents))]
}

// Random returns a uniformly random User-Agent from the pool.
func (p *Pool) Random() string {
	if len(p.agents) == 0 {
		return ""
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(p.agents))))
	if err != nil {
		// crypto/rand failure is effectively impossible; degrade to round-robin
		return p.Next()
	}
	return p.agents[n.Int64()]
}

// All returns a copy of the pool's User-Agents.
func (p *Pool) All() []string {
	copied := make([]string, len(p.agents))
	copy(copied, p.agents)
	return copied
}
