package workflow

import (
	"github.com/google/uuid"

	"github.com/matzehuels/depot/pkg/artifact"
)

// Miss is an item that every backend of a chain confirmed missing.
type Miss struct {
	Ref  artifact.Ref
	Item string
}

// MetaData reports whether the miss concerns the metadata descriptor.
func (m Miss) MetaData() bool { return m.Item == m.Ref.MetaDataItem() }

type missKey struct {
	key  artifact.Key
	item string
}

// Session collects the misses of one resolution pass so that negative
// markers can be published once the pass completes. A Session belongs to a
// single pass and is not safe for concurrent use.
type Session struct {
	// ID correlates log lines and metrics of one pass.
	ID string

	missing []Miss
	seen    map[missKey]bool
}

// NewSession creates an empty session with a random ID.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), seen: make(map[missKey]bool)}
}

// AddMissing records that item of ref is missing everywhere. Duplicate
// records are ignored.
func (s *Session) AddMissing(ref artifact.Ref, item string) {
	k := missKey{key: ref.Key(), item: item}
	if s.seen[k] {
		return
	}
	s.seen[k] = true
	s.missing = append(s.missing, Miss{Ref: ref, Item: item})
}

// Drain returns the recorded misses in insertion order and clears the
// session.
func (s *Session) Drain() []Miss {
	out := s.missing
	s.missing = nil
	s.seen = make(map[missKey]bool)
	return out
}

// Len returns the number of recorded misses.
func (s *Session) Len() int { return len(s.missing) }
