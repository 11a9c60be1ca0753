// Package credential turns raw passwords into salted bcrypt hashes and checks
// raw passwords against stored hashes.
package credential

import (
	"golang.org/x/crypto/bcrypt"
)

// ErrTooLong is returned by Hash for passwords over 72 bytes.
var ErrTooLong = bcrypt.ErrPasswordTooLong

// Store hashes and verifies passwords. The zero value uses bcrypt.DefaultCost.
type Store struct {
	cost int
}

// New returns a Store using the given bcrypt cost. Out-of-range costs fall
// back to bcrypt.DefaultCost.
func New(cost int) *Store {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Store{cost: cost}
}

// Hash returns a salted hash of raw. Callers validate that raw is non-empty.
func (s *Store) Hash(raw string) (string, error) {
	cost := s.cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether raw matches hashed. A malformed hash is a mismatch.
func (s *Store) Verify(raw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}
