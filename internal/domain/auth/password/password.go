package password

// Hasher hashes plaintext passwords and checks them against stored hashes.
// Verify reports a mismatch as false, never as an error.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
