package checklist

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint identifies an item list by its texts in order. Two lists with
// the same texts in the same order share a fingerprint.
func Fingerprint(texts []string) string {
	h := sha256.New()
	var n [8]byte
	for _, t := range texts {
		binary.BigEndian.PutUint64(n[:], uint64(len(t)))
		h.Write(n[:])
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the fingerprint of the loaded items.
func (s *State) Fingerprint() string {
	return Fingerprint(s.Texts())
}
