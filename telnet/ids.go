package telnet

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource allocates session identifiers.
type IDSource interface {
	NextID() string
}

// UUIDs allocates random UUIDs. It is the default IDSource.
type UUIDs struct{}

func (UUIDs) NextID() string { return uuid.NewString() }

// SequentialIDs allocates "<prefix>_<n>" identifiers from a counter.
type SequentialIDs struct {
	Prefix string
	n      atomic.Uint64
}

func (s *SequentialIDs) NextID() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "sess"
	}
	return fmt.Sprintf("%s_%d", prefix, s.n.Add(1))
}
