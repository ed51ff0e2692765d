package islet

import (
	"github.com/pthm/islet/lib/seal"
)

// Sealer is an alias for seal.Sealer for convenience.
type Sealer = seal.Sealer

// NewSealer creates a sealer with the given key.
//
// Pass the sealer to both sides of the contract: the page producer seals
// props into tokens, and the renderer opens them:
//
//	sealer, err := islet.NewSealer(key)
//	r := islet.New(islet.WithSealer(sealer))
func NewSealer(key []byte) (*Sealer, error) {
	return seal.New(key)
}
