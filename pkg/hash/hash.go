package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// Hasher fingerprints uploaded submission files and AI prompts.
type Hasher interface {
	Algorithm() Algorithm
	Sum(data []byte) string
	SumString(s string) string
	SumReader(r io.Reader) (string, error)
	Verify(data []byte, expected string) bool
}

type contentHasher struct {
	algorithm Algorithm
	newHash   func() hash.Hash
}

func NewHasher(algorithm Algorithm) (Hasher, error) {
	h := &contentHasher{algorithm: algorithm}

	switch algorithm {
	case MD5:
		h.newHash = md5.New
	case SHA1:
		h.newHash = sha1.New
	case SHA256, "":
		h.algorithm = SHA256
		h.newHash = sha256.New
	case SHA512:
		h.newHash = sha512.New
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}

	return h, nil
}

func (h *contentHasher) Algorithm() Algorithm {
	return h.algorithm
}

func (h *contentHasher) Sum(data []byte) string {
	hasher := h.newHash()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

func (h *contentHasher) SumString(s string) string {
	return h.Sum([]byte(s))
}

func (h *contentHasher) SumReader(r io.Reader) (string, error) {
	hasher := h.newHash()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (h *contentHasher) Verify(data []byte, expected string) bool {
	return h.Sum(data) == expected
}
