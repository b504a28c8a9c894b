package session

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PassphraseCost is the bcrypt cost used for the god mode passphrase.
const PassphraseCost = bcrypt.MinCost

// Passphrase guards god mode. Only the bcrypt hash is kept in memory.
type Passphrase struct {
	hash []byte
}

// NewPassphrase hashes plain with the given bcrypt cost. An empty plain
// returns nil, which disables god mode. Verification runs while the world is
// locked, so callers should keep the cost low.
func NewPassphrase(plain string, cost int) (*Passphrase, error) {
	if plain == "" {
		return nil, nil
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return nil, fmt.Errorf("hash god passphrase: %w", err)
	}
	return &Passphrase{hash: hash}, nil
}

// Verify reports whether attempt matches. A nil Passphrase matches nothing.
func (p *Passphrase) Verify(attempt []byte) bool {
	if p == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(p.hash, attempt) == nil
}
