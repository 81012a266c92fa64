// Package idgen provides the unique identifier sources used for orders and
// trades. Identifiers are unique for the lifetime of the generator.
package idgen

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	SchemeUUID     = "uuid"
	SchemeSequence = "sequence"
)

// Generator hands out identifiers that are never repeated.
type Generator interface {
	NewID() string
}

// UUID generates random (v4) identifiers.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence generates prefix+counter identifiers, strictly increasing.
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() string {
	return s.prefix + strconv.FormatUint(s.next.Add(1), 10)
}

func New(scheme string) (Generator, error) {
	switch scheme {
	case SchemeUUID, "":
		return UUID{}, nil
	case SchemeSequence:
		return NewSequence(""), nil
	default:
		return nil, fmt.Errorf("idgen: unknown scheme %q", scheme)
	}
}
