package action

import (
	"fmt"
	"math/rand"
	"sync/atomic"
)

// ID identifies a recorded action. The high 32 bits come from a monotonic
// counter so integer order is creation order; the low 32 bits are random so
// ids from different sessions do not collide.
type ID uint64

// None is the zero ID, held by no action.
const None ID = 0

func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// IDGenerator hands out chronologically ordered ids. The zero value is
// ready to use.
type IDGenerator struct {
	counter atomic.Uint32
}

func (g *IDGenerator) Next() ID {
	hi := uint64(g.counter.Add(1))
	lo := uint64(rand.Uint32())
	return ID(hi<<32 | lo)
}
