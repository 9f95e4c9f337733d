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

// Package elgamal implements exponential ElGamal over the prime-order
// subgroup G_q fixed by a group.Params: encryption in both its raw and
// g^m-encoded forms, decryption (with and without brute-force decoding),
// partial decryption and its combination across sealers, the homomorphic
// operations, re-encryption and the permutation+re-encryption shuffle.
package elgamal

import (
	"errors"
	"math/big"

	"github.com/provotum/provotum-mixnet-sub000/crypto/group"
	"github.com/provotum/provotum-mixnet-sub000/crypto/modarith"
	"github.com/provotum/provotum-mixnet-sub000/crypto/utils"
)

var (
	// ErrNotQuadraticResidue is returned when a raw-form plaintext is not in G_q.
	ErrNotQuadraticResidue = errors.New("plaintext is not a quadratic residue mod p")
	// ErrLengthMismatch is returned when parallel vectors (ciphers/randoms/permutation) differ in length.
	ErrLengthMismatch = errors.New("input vectors have mismatched lengths")
	// ErrEmptyInput is returned when an operation that requires n>0 receives an empty input.
	ErrEmptyInput = errors.New("input must be non-empty")
	// ErrNotPermutation is returned when a claimed permutation is not a bijection on [0,n).
	ErrNotPermutation = errors.New("not a permutation of [0,n)")
	// ErrPlaintextOutOfRange is returned when an integer plaintext to encode is
	// outside [0, q), or when brute-force decoding exceeds its ceiling.
	ErrPlaintextOutOfRange = errors.New("plaintext exceeds decode ceiling")
	// ErrNoMatrixRows is returned when combining partial decryptions over zero sealers.
	ErrNoMatrixRows = errors.New("no partial-decryption rows supplied")
)

var (
	big0 = big.NewInt(0)
	big1 = big.NewInt(1)
)

// Cipher is an exponential-ElGamal ciphertext (a, b) = (g^r, h_pk^r * m).
type Cipher struct {
	A *big.Int
	B *big.Int
}

// isQuadraticResidue reports whether m is a member of G_q, i.e. m^q mod p = 1.
func isQuadraticResidue(params *group.Params, m *big.Int) bool {
	r, err := modarith.Pow(m, params.Q(), params.P)
	if err != nil {
		return false
	}
	return r.Cmp(big1) == 0
}

// Encrypt returns the raw encryption (g^r, h_pk^r * m) of a plaintext that is
// itself a group element (m in G_q). Used when the plaintext carries
// identity (e.g. the constant 1 inside a re-encryption proof).
func Encrypt(params *group.Params, m, r *big.Int, pk *group.PublicKey) (*Cipher, error) {
	if !isQuadraticResidue(params, m) {
		return nil, ErrNotQuadraticResidue
	}
	a, err := modarith.Pow(params.G, r, params.P)
	if err != nil {
		return nil, err
	}
	hr, err := modarith.Pow(pk.H, r, params.P)
	if err != nil {
		return nil, err
	}
	b, err := modarith.Mul(hr, m, params.P)
	if err != nil {
		return nil, err
	}
	return &Cipher{A: a, B: b}, nil
}

// EncryptEncode returns the exponential encoding (g^r, h_pk^r * g^m) of an
// integer plaintext m in [0, q). This is the form used for the
// additively-homomorphic tally.
func EncryptEncode(params *group.Params, m, r *big.Int, pk *group.PublicKey) (*Cipher, error) {
	if err := utils.InRange(m, big0, params.Q()); err != nil {
		return nil, ErrPlaintextOutOfRange
	}
	gm, err := modarith.Pow(params.G, m, params.P)
	if err != nil {
		return nil, err
	}
	return Encrypt(params, gm, r, pk)
}

// Decrypt returns b * (a^x)^-1 mod p, the raw group element encoded by c,
// without attempting to decode it back to an integer.
func Decrypt(params *group.Params, c *Cipher, sk *group.PrivateKey) (*big.Int, error) {
	ax, err := modarith.Pow(c.A, sk.X, params.P)
	if err != nil {
		return nil, err
	}
	axInv, err := modarith.Inverse(ax, params.P)
	if err != nil {
		return nil, err
	}
	return modarith.Mul(c.B, axInv, params.P)
}

// DecryptDecode decrypts c and then recovers the integer m such that
// g^m = decrypt(c, sk), searching m = 0, 1, 2, ... up to (and excluding)
// ceiling. Returns ErrPlaintextOutOfRange if no match is found within the
// bound, satisfying the spec's requirement that brute-force decoding never
// run unbounded.
func DecryptDecode(params *group.Params, c *Cipher, sk *group.PrivateKey, ceiling int) (*big.Int, error) {
	gm, err := Decrypt(params, c, sk)
	if err != nil {
		return nil, err
	}
	return decodeMessage(params, gm, ceiling)
}

func decodeMessage(params *group.Params, gm *big.Int, ceiling int) (*big.Int, error) {
	acc := big.NewInt(1)
	for m := 0; m < ceiling; m++ {
		if acc.Cmp(gm) == 0 {
			return big.NewInt(int64(m)), nil
		}
		acc, _ = modarith.Mul(acc, params.G, params.P)
	}
	return nil, ErrPlaintextOutOfRange
}

// DecodeMessage exposes the brute-force discrete-log search directly, used
// by Tally when combined partial decryptions have already produced the
// group element g^m out-of-band.
func DecodeMessage(params *group.Params, gm *big.Int, ceiling int) (*big.Int, error) {
	return decodeMessage(params, gm, ceiling)
}

// PartialDecryptA returns a^x_share mod p, a single sealer's contribution
// toward recovering the "a"-side factor of a distributed-key ciphertext.
func PartialDecryptA(params *group.Params, c *Cipher, skShare *group.PrivateKey) (*big.Int, error) {
	return modarith.Pow(c.A, skShare.X, params.P)
}

// CombinePartialDecryptedA combines one partial decryption per sealer for a
// single ciphertext into prod_i d_i mod p.
func CombinePartialDecryptedA(params *group.Params, ds []*big.Int) (*big.Int, error) {
	if len(ds) == 0 {
		return nil, ErrNoMatrixRows
	}
	acc := big.NewInt(1)
	for _, d := range ds {
		var err error
		acc, err = modarith.Mul(acc, d, params.P)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// CombinePartialDecryptedAs combines a sealer-major matrix of partial
// decryptions (rows = sealers, columns = ciphertexts) into one combined
// value per ciphertext via a column-wise product. The result is invariant to
// row permutation, i.e. the order sealers publish in does not matter.
func CombinePartialDecryptedAs(params *group.Params, matrix [][]*big.Int) ([]*big.Int, error) {
	if len(matrix) == 0 {
		return nil, ErrNoMatrixRows
	}
	n := len(matrix[0])
	for _, row := range matrix {
		if len(row) != n {
			return nil, ErrLengthMismatch
		}
	}
	combined := make([]*big.Int, n)
	for col := 0; col < n; col++ {
		acc := big.NewInt(1)
		for _, row := range matrix {
			var err error
			acc, err = modarith.Mul(acc, row[col], params.P)
			if err != nil {
				return nil, err
			}
		}
		combined[col] = acc
	}
	return combined, nil
}

// PartialDecryptB combines a ciphertext's b component with the combined "a"
// partial decryptions into the raw plaintext group element b * d^-1 mod p.
func PartialDecryptB(params *group.Params, b, combinedD *big.Int) (*big.Int, error) {
	dInv, err := modarith.Inverse(combinedD, params.P)
	if err != nil {
		return nil, err
	}
	return modarith.Mul(b, dInv, params.P)
}

// HomomorphicAdd combines two encoded ciphertexts component-wise:
// (a1*a2, b1*b2) mod p, which under exponential ElGamal decodes to the sum
// of the two plaintexts. The identity element is an encryption of 0.
func HomomorphicAdd(params *group.Params, c1, c2 *Cipher) (*Cipher, error) {
	a, err := modarith.Mul(c1.A, c2.A, params.P)
	if err != nil {
		return nil, err
	}
	b, err := modarith.Mul(c1.B, c2.B, params.P)
	if err != nil {
		return nil, err
	}
	return &Cipher{A: a, B: b}, nil
}

// homomorphicSub is homomorphic_subtract: (a1/a2, b1/b2) mod p, the additive
// inverse of HomomorphicAdd, used by the re-encryption proof to recover an
// encryption of 1 from a cipher and its re-encryption.
func homomorphicSub(params *group.Params, c1, c2 *Cipher) (*Cipher, error) {
	aInv, err := modarith.Inverse(c2.A, params.P)
	if err != nil {
		return nil, err
	}
	bInv, err := modarith.Inverse(c2.B, params.P)
	if err != nil {
		return nil, err
	}
	a, err := modarith.Mul(c1.A, aInv, params.P)
	if err != nil {
		return nil, err
	}
	b, err := modarith.Mul(c1.B, bInv, params.P)
	if err != nil {
		return nil, err
	}
	return &Cipher{A: a, B: b}, nil
}

// HomomorphicSub exposes homomorphic subtraction for callers outside this
// package (the re-encryption proof).
func HomomorphicSub(params *group.Params, c1, c2 *Cipher) (*Cipher, error) {
	return homomorphicSub(params, c1, c2)
}

// HomomorphicMultiply raises a ciphertext to a scalar power component-wise:
// (a^k, b^k) mod p. This is the operation the source protocol's
// re-encryption-proof verifier calls "homomorphic_multiply"; it corresponds
// to exponentiating, not adding, an encrypted value by a public scalar.
func HomomorphicMultiply(params *group.Params, c *Cipher, k *big.Int) (*Cipher, error) {
	a, err := modarith.Pow(c.A, k, params.P)
	if err != nil {
		return nil, err
	}
	b, err := modarith.Pow(c.B, k, params.P)
	if err != nil {
		return nil, err
	}
	return &Cipher{A: a, B: b}, nil
}

// ReEncrypt returns (a*g^r, b*h_pk^r), a fresh ciphertext encoding the same
// plaintext as c under new randomness r.
func ReEncrypt(params *group.Params, c *Cipher, r *big.Int, pk *group.PublicKey) (*Cipher, error) {
	gr, err := modarith.Pow(params.G, r, params.P)
	if err != nil {
		return nil, err
	}
	hr, err := modarith.Pow(pk.H, r, params.P)
	if err != nil {
		return nil, err
	}
	a, err := modarith.Mul(c.A, gr, params.P)
	if err != nil {
		return nil, err
	}
	b, err := modarith.Mul(c.B, hr, params.P)
	if err != nil {
		return nil, err
	}
	return &Cipher{A: a, B: b}, nil
}

// ReEncryptViaAdd re-encrypts c by homomorphically adding a fresh encryption
// of zero, i.e. homomorphic_add(c, encrypt_encode(0, r, pk)). It is
// algebraically equivalent to ReEncrypt and kept to exercise the additive
// path the source protocol also offers.
func ReEncryptViaAdd(params *group.Params, c *Cipher, r *big.Int, pk *group.PublicKey) (*Cipher, error) {
	zero, err := EncryptEncode(params, big.NewInt(0), r, pk)
	if err != nil {
		return nil, err
	}
	return HomomorphicAdd(params, c, zero)
}

// ShuffledCipher pairs a re-encrypted ciphertext with the randomness and
// source index used to produce it, so a prover can later build a shuffle
// proof witness from the same values.
type ShuffledCipher struct {
	Cipher      *Cipher
	Random      *big.Int
	SourceIndex int
}

// Shuffle returns, for i = 0..n-1, the re-encryption of
// ciphers[permutation[i]] under randoms[permutation[i]]: position i of the
// output holds a fresh encryption of the plaintext that permutation[i]
// selected from the input. len(ciphers), len(permutation) and len(randoms)
// must all agree and be non-zero, and permutation must be a bijection on
// [0,n).
func Shuffle(params *group.Params, ciphers []*Cipher, permutation []int, randoms []*big.Int, pk *group.PublicKey) ([]*ShuffledCipher, error) {
	n := len(ciphers)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if len(permutation) != n || len(randoms) != n {
		return nil, ErrLengthMismatch
	}
	seen := make([]bool, n)
	for _, p := range permutation {
		if p < 0 || p >= n || seen[p] {
			return nil, ErrNotPermutation
		}
		seen[p] = true
	}

	out := make([]*ShuffledCipher, n)
	for i := 0; i < n; i++ {
		src := permutation[i]
		re, err := ReEncrypt(params, ciphers[src], randoms[src], pk)
		if err != nil {
			return nil, err
		}
		out[i] = &ShuffledCipher{Cipher: re, Random: randoms[src], SourceIndex: src}
	}
	return out, nil
}
