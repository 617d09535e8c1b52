package fs

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"

	"lukechampine.com/blake3"
)

const (
	SHA256 = "sha256"
	BLAKE3 = "blake3"

	chunkSize  = 128 * 1024
	blake3Size = 32
)

// HashFunc returns a fresh hash accumulator.
type HashFunc func() hash.Hash

// NewHashFunc maps an algorithm name to its HashFunc.
func NewHashFunc(algorithm string) (HashFunc, error) {
	switch algorithm {
	case SHA256:
		return sha256.New, nil
	case BLAKE3:
		return func() hash.Hash { return blake3.New(blake3Size, nil) }, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

// Hash streams the file at path through a new accumulator in fixed-size chunks.
func Hash(newHash HashFunc, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := newHash()
	if _, err := io.CopyBuffer(h, f, make([]byte, chunkSize)); err != nil {
		return nil, fmt.Errorf("unable to hash %v: %w", path, err)
	}

	return h.Sum(nil), nil
}

// SameContent reports whether a and b have identical content. Sizes are
// compared first so that files of different length are never hashed.
func SameContent(newHash HashFunc, a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, err
	}

	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	hashA, err := Hash(newHash, a)
	if err != nil {
		return false, err
	}
	hashB, err := Hash(newHash, b)
	if err != nil {
		return false, err
	}

	return bytes.Equal(hashA, hashB), nil
}
