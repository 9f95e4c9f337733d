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

package zkproof

import (
	"math/big"

	"github.com/provotum/provotum-mixnet-sub000/crypto/group"
	"github.com/provotum/provotum-mixnet-sub000/crypto/hashing"
	"github.com/provotum/provotum-mixnet-sub000/crypto/modarith"
	"github.com/provotum/provotum-mixnet-sub000/crypto/random"
)

/*
KeyGenProof is the non-interactive Schnorr proof of knowledge of the discrete
log x behind a sealer's public share h_pk = g^x mod p, tagged by a caller id
so that per-sealer proofs cannot be replayed against a different sealer's
share.

Prover, given (params, id, x, h_pk = g^x):
  - samples r in [0, q)
  - commits b = g^r
  - c = H(id, "keygen", h_pk, b) mod q
  - d = r + c*x mod q
  - proof = (c, d)

Verifier recomputes b = g^d / h_pk^c mod p, rehashes and checks equality of c.
*/
type KeyGenProof struct {
	Challenge *big.Int
	Response  *big.Int
}

// GenerateKeyGenProof produces a KeyGenProof that the prover knows the secret
// key behind pk, tagged with id (e.g. the sealer's account identifier).
func GenerateKeyGenProof(params *group.Params, id []byte, sk *group.PrivateKey, pk *group.PublicKey, src random.Source) (*KeyGenProof, error) {
	q := params.Q()
	r, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}
	b, err := modarith.Pow(params.G, r, params.P)
	if err != nil {
		return nil, err
	}

	c := keyGenChallenge(q, id, pk.H, b)

	cx, err := modarith.Mul(c, sk.X, q)
	if err != nil {
		return nil, err
	}
	d, err := modarith.Add(r, cx, q)
	if err != nil {
		return nil, err
	}

	proof := &KeyGenProof{Challenge: c, Response: d}
	if err := VerifyKeyGenProof(params, id, pk, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

// VerifyKeyGenProof checks a KeyGenProof against the claimed public share.
func VerifyKeyGenProof(params *group.Params, id []byte, pk *group.PublicKey, proof *KeyGenProof) error {
	q := params.Q()

	gd, err := modarith.Pow(params.G, proof.Response, params.P)
	if err != nil {
		return err
	}
	hc, err := modarith.Pow(pk.H, proof.Challenge, params.P)
	if err != nil {
		return err
	}
	hcInv, err := modarith.Inverse(hc, params.P)
	if err != nil {
		return err
	}
	b, err := modarith.Mul(gd, hcInv, params.P)
	if err != nil {
		return err
	}

	want := keyGenChallenge(q, id, pk.H, b)
	if want.Cmp(proof.Challenge) != 0 {
		rejectf("keygen", "challenge mismatch", "id", string(id))
		return ErrVerifyFailure
	}
	return nil
}

func keyGenChallenge(q *big.Int, id []byte, hpk, b *big.Int) *big.Int {
	idInt := new(big.Int).SetBytes(id)
	return hashing.HashToInt("keygen", q, idInt, hpk, b)
}
