// Package hash implements the uniform incremental-digest facade C1 of the
// spec: algorithm dispatch over md5/sha1/sha256/sha512 and a one-shot
// check(expected) predicate. The hash algorithms themselves are the
// external "hashing primitives" spec.md §1 explicitly scopes out of the
// core - they are consumed here via the standard library's crypto/*
// packages, not picked as a third-party dependency (see DESIGN.md for why
// this is the one legitimate stdlib use in the tree).
package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/hok-pm/hok/cmn"
)

// Algo identifies a supported hash algorithm.
type Algo string

const (
	MD5    Algo = "md5"
	SHA1   Algo = "sha1"
	SHA256 Algo = "sha256"
	SHA512 Algo = "sha512"
)

func newDigest(a Algo) (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256, "":
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, &cmn.ErrUnsupportedHashAlgorithm{Algo: string(a)}
	}
}

// Hasher is an incremental digest with a one-shot expected-hash check.
type Hasher struct {
	algo     Algo
	digest   hash.Hash
	expected string // lowercased hex, algo prefix stripped
	final    string
	done     bool
}

// New creates a Hasher for algo (an empty algo means sha256). expected is
// not validated here: any "algo:" prefix is stripped and the rest is
// lowercased before Check compares it with the digest.
func New(algo Algo, expected string) (*Hasher, error) {
	d, err := newDigest(algo)
	if err != nil {
		return nil, err
	}
	if algo == "" {
		algo = SHA256
	}
	return &Hasher{
		algo:     algo,
		digest:   d,
		expected: strings.ToLower(stripAlgoPrefix(expected)),
	}, nil
}

func stripAlgoPrefix(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Consume feeds bytes into the digest. A no-op once Finalize has been
// called (finalize is one-shot, per spec.md §4.1's edge cases).
func (h *Hasher) Consume(p []byte) {
	if h.done {
		return
	}
	h.digest.Write(p)
}

// Finalize computes and caches the lowercase hex digest. Idempotent:
// calling it again returns the same cached value without touching the
// underlying hash.Hash.
func (h *Hasher) Finalize() string {
	if !h.done {
		h.final = hex.EncodeToString(h.digest.Sum(nil))
		h.done = true
	}
	return h.final
}

// Check finalizes (if not already) and compares against the expected hash
// given at construction time, case-insensitively.
func (h *Hasher) Check() bool {
	return h.Finalize() == h.expected
}

// Reset returns the hasher to its initial state and clears any finalized
// value, so it can be reused for another stream with the same algorithm.
func (h *Hasher) Reset() {
	h.digest.Reset()
	h.final = ""
	h.done = false
}

// Algorithm returns the algorithm this hasher was constructed with.
func (h *Hasher) Algorithm() Algo { return h.algo }
