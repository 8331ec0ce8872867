package xid

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
	"sync/atomic"
	"time"
)

const counterMask = 0xFFFFFF

// Generator produces IDs for one host identity. It is safe for concurrent
// use; the counter is advanced with a single atomic add.
type Generator struct {
	host    HostIdentity
	counter atomic.Uint32
	now     func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithCounterStart sets the counter so that the first ID carries start+1.
func WithCounterStart(start uint32) Option {
	return func(g *Generator) {
		g.counter.Store(start & counterMask)
	}
}

// NewGenerator creates a Generator with a random counter start.
func NewGenerator(host HostIdentity, opts ...Option) *Generator {
	g := &Generator{
		host: host,
		now:  time.Now,
	}
	g.counter.Store(randomCounterStart())

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Host returns the identity embedded in every ID.
func (g *Generator) Host() HostIdentity {
	return g.host
}

// New returns a fresh ID. It never blocks and never fails.
func (g *Generator) New() ID {
	// 2^32 is a multiple of 2^24, so masking the wrapped uint32 gives the
	// counter mod 2^24.
	ctr := g.counter.Add(1) & counterMask
	return g.build(uint32(g.now().Unix()), ctr)
}

func (g *Generator) build(ts uint32, ctr uint32) ID {
	var id ID
	binary.BigEndian.PutUint32(id[0:4], ts)
	id[4] = g.host.MachineID[0]
	id[5] = g.host.MachineID[1]
	id[6] = g.host.MachineID[2]
	binary.BigEndian.PutUint16(id[7:9], g.host.Pid)
	id[9] = byte(ctr >> 16)
	id[10] = byte(ctr >> 8)
	id[11] = byte(ctr)
	return id
}

func randomCounterStart() uint32 {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint32(mrand.Int31()) & counterMask
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

var (
	defaultOnce      sync.Once
	defaultGenerator *Generator
)

// Default returns the process-wide generator, created on first use from
// DetectHostIdentity.
func Default() *Generator {
	defaultOnce.Do(func() {
		defaultGenerator = NewGenerator(DetectHostIdentity())
	})
	return defaultGenerator
}

// New returns a fresh ID from the process-wide generator.
func New() ID {
	return Default().New()
}
