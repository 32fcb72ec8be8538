package watchlist

import (
	"context"
	"errors"
	"sort"
)

// ErrInvalidCode is returned when a code is not a plausible stock code
var ErrInvalidCode = errors.New("invalid stock code")

// Set is an immutable-by-convention set of tracked stock codes.
// A nil Set is empty.
type Set map[string]struct{}

// NewSet builds a Set from codes.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether code is tracked.
func (s Set) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Len returns the number of tracked codes.
func (s Set) Len() int {
	return len(s)
}

// Codes returns the codes sorted ascending.
func (s Set) Codes() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Store persists one ordered watchlist per owner
// ⭐ SSOT: 관심종목 영속화 인터페이스 (memory / sqlite / postgres)
//
// Load returns codes in insertion order. Add is idempotent; Remove of an
// absent code is not an error.
type Store interface {
	Load(ctx context.Context, owner string) ([]string, error)
	Add(ctx context.Context, owner, code string) error
	Remove(ctx context.Context, owner, code string) error
}
