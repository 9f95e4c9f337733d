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

// Package group holds the ElGamal domain parameters and key types: the
// prime-order subgroup G_q of Z*_p, generator validation, q derivation and
// key-pair generation. Safe-prime selection itself (choosing p) is delegated
// to parameter setup and out of scope here, per the core's Non-goals.
package group

import (
	"errors"
	"math/big"

	"github.com/provotum/provotum-mixnet-sub000/crypto/modarith"
	"github.com/provotum/provotum-mixnet-sub000/crypto/utils"
)

var (
	// ErrNotGenerator is returned when g does not generate G_q under p.
	ErrNotGenerator = errors.New("g is not a generator of the order-q subgroup")
	// ErrInvalidParams is returned when p or q fail their primality/shape invariants.
	ErrInvalidParams = errors.New("invalid group parameters")
	// ErrSecretOutOfRange is returned when a secret key is not in [1, q).
	ErrSecretOutOfRange = errors.New("secret key must be in [1, q)")
)

var (
	big0 = big.NewInt(0)
	big1 = big.NewInt(1)
	big2 = big.NewInt(2)
)

// Params fixes the prime-order subgroup G_q of Z*_p used throughout the
// core: p (the modulus), g (the public generator) and h, a second
// independent generator used for Pedersen-style commitments in the shuffle
// proof. q = (p-1)/2 is derived, never stored redundantly (Design Notes:
// "Global process state: none").
type Params struct {
	P *big.Int
	G *big.Int
	H *big.Int
}

// Q returns (p-1)/2.
func (params *Params) Q() *big.Int {
	q := new(big.Int).Sub(params.P, big1)
	return q.Rsh(q, 1)
}

// IsGenerator reports whether g is a generator of G_q: g is neither the
// identity nor q itself, and g^q mod p = 1.
func (params *Params) IsGenerator(g *big.Int) bool {
	q := params.Q()
	if g.Cmp(big1) == 0 || g.Cmp(q) == 0 {
		return false
	}
	r, err := modarith.Pow(g, q, params.P)
	if err != nil {
		return false
	}
	return r.Cmp(big1) == 0
}

// Validate checks the GroupParams invariants: p prime, q=(p-1)/2 prime, g and
// h are generators of G_q distinct from each other.
func (params *Params) Validate(isPrime func(*big.Int) bool) error {
	if params.P == nil || params.G == nil || params.H == nil {
		return ErrInvalidParams
	}
	if err := utils.EnsureFieldOrder(params.P); err != nil {
		return ErrInvalidParams
	}
	if !isPrime(params.P) {
		return ErrInvalidParams
	}
	if !isPrime(params.Q()) {
		return ErrInvalidParams
	}
	if !params.IsGenerator(params.G) {
		return ErrNotGenerator
	}
	if !params.IsGenerator(params.H) {
		return ErrNotGenerator
	}
	if params.G.Cmp(params.H) == 0 {
		return ErrInvalidParams
	}
	return nil
}

// PublicKey is a sealer's (or the combined system's) public share h_pk = g^x mod p.
type PublicKey struct {
	Params *Params
	H      *big.Int
}

// PrivateKey is a sealer's secret share x, 1 <= x < q.
type PrivateKey struct {
	Params *Params
	X      *big.Int
}

// GenerateKeyPair derives (PublicKey, PrivateKey) from caller-sampled secret
// x. The caller is responsible for sampling x uniformly in [1, q) via a
// RandomSource; this function never generates randomness itself so that it
// stays usable both for fresh key generation and for reconstructing a key
// pair from a persisted share.
func GenerateKeyPair(params *Params, x *big.Int) (*PublicKey, *PrivateKey, error) {
	q := params.Q()
	if x.Sign() < 1 || x.Cmp(q) >= 0 {
		return nil, nil, ErrSecretOutOfRange
	}
	h, err := modarith.Pow(params.G, x, params.P)
	if err != nil {
		return nil, nil, err
	}
	return &PublicKey{Params: params, H: h}, &PrivateKey{Params: params, X: x}, nil
}

// Combine aggregates per-sealer public shares into the system public key
// h = prod_i h_i mod p, used by threshold key generation once every sealer
// has published its KeyGenProof-backed share.
func Combine(params *Params, shares []*big.Int) (*PublicKey, error) {
	if len(shares) == 0 {
		return nil, ErrInvalidParams
	}
	h := big.NewInt(1)
	for _, s := range shares {
		var err error
		h, err = modarith.Mul(h, s, params.P)
		if err != nil {
			return nil, err
		}
	}
	return &PublicKey{Params: params, H: h}, nil
}
