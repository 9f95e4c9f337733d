// Copyright © 2020 AMIS Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package random provides the two RandomSource flavors the rest of the core
// is parameterized over: an OS-seeded source for off-chain/CLI use, and a
// chain-seeded deterministic source for code that must be replayable from an
// externally supplied 32-byte seed (the on-chain analogue in the source
// protocol). Both share the same sampling algorithms; only the underlying
// byte stream differs.
package random

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"golang.org/x/crypto/chacha20"
)

var (
	// ErrZeroUpperBound is returned by LessThan/BigUintsLessThan when n=0.
	ErrZeroUpperBound = errors.New("upper bound must be positive")
	// ErrRangeError is returned by Range when lo >= hi.
	ErrRangeError = errors.New("lower bound must be less than upper bound")
	// ErrZeroSize is returned by Permutation when n=0.
	ErrZeroSize = errors.New("permutation size must be positive")
	// ErrRandomnessFailure is returned when the underlying source yields fewer bytes than requested.
	ErrRandomnessFailure = errors.New("random source returned fewer bytes than requested")
)

// Source is the capability every proof/shuffle/keygen operation borrows for
// the duration of a single call: uniform sampling of integers and
// permutations. The only state an implementation keeps is its position in its
// own byte stream; every draw advances it, so draws from a shared Source
// depend on all earlier draws from that Source.
type Source interface {
	// LessThan returns a uniform value in [0, n).
	LessThan(n *big.Int) (*big.Int, error)
	// Range returns a uniform value in [lo, hi).
	Range(lo, hi *big.Int) (*big.Int, error)
	// Bytes returns k uniformly random bytes.
	Bytes(k int) ([]byte, error)
	// Permutation returns a uniformly random permutation of [0, n) via
	// inside-out Fisher-Yates.
	Permutation(n int) ([]int, error)
	// BigUintsLessThan draws k independent values, each uniform in [0, n).
	BigUintsLessThan(n *big.Int, k int) ([]*big.Int, error)
}

// streamSource implements Source over an arbitrary io.Reader byte stream;
// both the OS-seeded and chain-seeded sources are thin constructors around
// it, differing only in which reader backs them.
type streamSource struct {
	r io.Reader
}

// NewOSSeeded returns a Source drawing from the operating system's CSPRNG,
// used by off-chain callers (CLI, tests, tooling).
func NewOSSeeded() Source {
	return &streamSource{r: rand.Reader}
}

// NewChainSeeded returns a deterministic, replayable Source expanding a
// caller-supplied 32-byte seed via ChaCha20 as an unbounded keystream. Two
// calls with the same seed, given the same sequence of sampling calls,
// produce identical results -- this is the property the on-chain analogue in
// the source protocol relies on to let independent nodes reproduce the same
// "random" choices from a chain-provided seed.
func NewChainSeeded(seed [32]byte) (Source, error) {
	var nonce [chacha20.NonceSize]byte
	cipher, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &streamSource{r: &chachaReader{cipher: cipher}}, nil
}

// chachaReader turns a cipher.Stream into an io.Reader by encrypting zero
// bytes, exposing the raw ChaCha20 keystream.
type chachaReader struct {
	cipher *chacha20.Cipher
}

func (c *chachaReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	c.cipher.XORKeyStream(p, p)
	return len(p), nil
}

func (s *streamSource) LessThan(n *big.Int) (*big.Int, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, ErrZeroUpperBound
	}
	return rand.Int(s.r, n)
}

func (s *streamSource) Range(lo, hi *big.Int) (*big.Int, error) {
	if lo.Cmp(hi) >= 0 {
		return nil, ErrRangeError
	}
	span := new(big.Int).Sub(hi, lo)
	v, err := s.LessThan(span)
	if err != nil {
		return nil, err
	}
	return v.Add(v, lo), nil
}

func (s *streamSource) Bytes(k int) ([]byte, error) {
	buf := make([]byte, k)
	n, err := io.ReadFull(s.r, buf)
	if err != nil || n != k {
		return nil, ErrRandomnessFailure
	}
	return buf, nil
}

func (s *streamSource) Permutation(n int) ([]int, error) {
	if n <= 0 {
		return nil, ErrZeroSize
	}
	perm := make([]int, n)
	perm[0] = 0
	for i := 1; i < n; i++ {
		j, err := s.LessThan(big.NewInt(int64(i + 1)))
		if err != nil {
			return nil, err
		}
		jInt := int(j.Int64())
		perm[i] = perm[jInt]
		perm[jInt] = i
	}
	return perm, nil
}

func (s *streamSource) BigUintsLessThan(n *big.Int, k int) ([]*big.Int, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, ErrZeroUpperBound
	}
	out := make([]*big.Int, k)
	for i := 0; i < k; i++ {
		v, err := s.LessThan(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
