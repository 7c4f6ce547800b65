package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost keeps hashing slow enough to resist offline cracking
// while staying inside interactive login latency.
const DefaultBcryptCost = 10

// Hasher hashes and verifies passwords with bcrypt. The produced hash
// embeds the cost and salt, so verification needs nothing beside the
// hash itself.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher. Costs outside bcrypt's valid range fall
// back to DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a one-way hash of the plaintext password. CPU-bound: tens
// of milliseconds at the default cost, so callers must keep it off any
// latency-critical path.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. A malformed hash simply
// fails verification; this never panics or errors out.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
