package password

import (
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
)

const DefaultBcryptCost = 12

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// scheme is one concrete hashing algorithm recognisable by its hash prefix.
type scheme interface {
	hash(plaintext string) (string, error)
	verify(plaintext, hash string) bool
	owns(hash string) bool
}

type bcryptScheme struct{ cost int }

func (s bcryptScheme) hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (bcryptScheme) verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (bcryptScheme) owns(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

type argonScheme struct{ params *argon2id.Params }

func (s argonScheme) hash(plaintext string) (string, error) {
	return argon2id.CreateHash(plaintext, s.params)
}

func (argonScheme) verify(plaintext, hash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plaintext, hash)
	return err == nil && ok
}

func (argonScheme) owns(hash string) bool {
	return strings.HasPrefix(hash, "$argon2id$")
}

// Hasher writes new hashes with its primary scheme and verifies any hash produced by
// a known scheme, so switching algorithms does not lock existing users out.
type Hasher struct {
	primary scheme
	known   []scheme
}

// New returns a hasher for algorithm "bcrypt" or "argon2id". A non-positive
// bcryptCost falls back to DefaultBcryptCost.
func New(algorithm string, bcryptCost int) (*Hasher, error) {
	if bcryptCost <= 0 {
		bcryptCost = DefaultBcryptCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	b := bcryptScheme{cost: bcryptCost}
	a := argonScheme{params: argonParams}

	switch algorithm {
	case "", "bcrypt":
		return &Hasher{primary: b, known: []scheme{b, a}}, nil
	case "argon2id":
		return &Hasher{primary: a, known: []scheme{a, b}}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", algorithm)
	}
}

// NewBcrypt is the default hasher: bcrypt with DefaultBcryptCost.
func NewBcrypt() *Hasher {
	h, _ := New("bcrypt", DefaultBcryptCost)
	return h
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := h.primary.hash(plaintext)
	if err != nil {
		return "", fmt.Errorf("%w: %w", customErrors.ErrHashing, err)
	}
	return hash, nil
}

func (h *Hasher) Verify(plaintext, hash string) bool {
	for _, s := range h.known {
		if s.owns(hash) {
			return s.verify(plaintext, hash)
		}
	}
	return false
}
