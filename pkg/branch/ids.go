package branch

import (
	"fmt"

	"github.com/google/uuid"
)

// IDSource produces identifiers for newly allocated branch records. The
// engine takes one at construction so tests can substitute a deterministic
// source for the random default.
type IDSource interface {
	// NewID returns a fresh, unique branch identifier.
	NewID() ID
}

// RandomIDs generates UUID-based branch identifiers. This is the
// production source.
type RandomIDs struct{}

// NewID implements IDSource.
func (RandomIDs) NewID() ID {
	return ID(uuid.NewString())
}

// SequentialIDs generates predictable identifiers of the form
// "<prefix>0001", "<prefix>0002", ... for deterministic tests.
type SequentialIDs struct {
	Prefix string
	next   int
}

// NewID implements IDSource.
func (s *SequentialIDs) NewID() ID {
	s.next++

	return ID(fmt.Sprintf("%s%04d", s.Prefix, s.next))
}
