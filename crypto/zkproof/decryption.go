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
	"errors"
	"math/big"

	"github.com/provotum/provotum-mixnet-sub000/crypto/group"
	"github.com/provotum/provotum-mixnet-sub000/crypto/hashing"
	"github.com/provotum/provotum-mixnet-sub000/crypto/modarith"
	"github.com/provotum/provotum-mixnet-sub000/crypto/random"
)

// ErrLengthMismatch is returned when the ciphers and partial-decryption
// vectors passed to the decryption proof disagree in length.
var ErrLengthMismatch = errors.New("zkproof: ciphers and shares length mismatch")

/*
DecryptionProof is a Chaum-Pedersen-style proof, batched over n ciphers, that
a sealer's published partial decryptions s_i = a_i^x are consistent with its
public share h_pk = g^x, without revealing x.

Prover, given (params, id, x, h_pk, ciphers a_1..a_n, shares s_1..s_n):
  - samples r in [0, q)
  - t_0 = g^r; t_i = a_i^r for i=1..n
  - c = H(id, "decryption", h_pk, {a_i}, {s_i}, {t_0, t_1..t_n}) mod q
  - d = r - c*x mod q
  - proof = (c, d)

Verifier recomputes t_0 = h_pk^c * g^d and t_i = s_i^c * a_i^d, rehashes, and
checks equality of c.
*/
type DecryptionProof struct {
	Challenge *big.Int
	Response  *big.Int
}

// GenerateDecryptionProof proves that shares[i] = ciphers[i].A^x for the
// secret key behind pk.
func GenerateDecryptionProof(params *group.Params, id []byte, sk *group.PrivateKey, pk *group.PublicKey, ciphers []*big.Int, shares []*big.Int, src random.Source) (*DecryptionProof, error) {
	if len(ciphers) != len(shares) || len(ciphers) == 0 {
		return nil, ErrLengthMismatch
	}
	q := params.Q()
	r, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}

	ts, err := decryptionCommitments(params, r, ciphers)
	if err != nil {
		return nil, err
	}

	c := decryptionChallenge(q, id, pk.H, ciphers, shares, ts)

	cx, err := modarith.Mul(c, sk.X, q)
	if err != nil {
		return nil, err
	}
	d, err := modarith.Sub(r, cx, q)
	if err != nil {
		return nil, err
	}

	proof := &DecryptionProof{Challenge: c, Response: d}
	if err := VerifyDecryptionProof(params, id, pk, ciphers, shares, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

// VerifyDecryptionProof checks a DecryptionProof against the claimed
// ciphers/shares and public share.
func VerifyDecryptionProof(params *group.Params, id []byte, pk *group.PublicKey, ciphers []*big.Int, shares []*big.Int, proof *DecryptionProof) error {
	if len(ciphers) != len(shares) || len(ciphers) == 0 {
		return ErrLengthMismatch
	}
	q := params.Q()

	t0a, err := modarith.Pow(pk.H, proof.Challenge, params.P)
	if err != nil {
		return err
	}
	t0b, err := modarith.Pow(params.G, proof.Response, params.P)
	if err != nil {
		return err
	}
	t0, err := modarith.Mul(t0a, t0b, params.P)
	if err != nil {
		return err
	}

	ts := make([]*big.Int, len(ciphers)+1)
	ts[0] = t0
	for i, a := range ciphers {
		sc, err := modarith.Pow(shares[i], proof.Challenge, params.P)
		if err != nil {
			return err
		}
		ad, err := modarith.Pow(a, proof.Response, params.P)
		if err != nil {
			return err
		}
		ti, err := modarith.Mul(sc, ad, params.P)
		if err != nil {
			return err
		}
		ts[i+1] = ti
	}

	want := decryptionChallenge(q, id, pk.H, ciphers, shares, ts)
	if want.Cmp(proof.Challenge) != 0 {
		rejectf("decryption", "challenge mismatch", "id", string(id))
		return ErrVerifyFailure
	}
	return nil
}

func decryptionCommitments(params *group.Params, r *big.Int, ciphers []*big.Int) ([]*big.Int, error) {
	t0, err := modarith.Pow(params.G, r, params.P)
	if err != nil {
		return nil, err
	}
	ts := make([]*big.Int, len(ciphers)+1)
	ts[0] = t0
	for i, a := range ciphers {
		ti, err := modarith.Pow(a, r, params.P)
		if err != nil {
			return nil, err
		}
		ts[i+1] = ti
	}
	return ts, nil
}

func decryptionChallenge(q *big.Int, id []byte, hpk *big.Int, ciphers, shares, ts []*big.Int) *big.Int {
	idInt := new(big.Int).SetBytes(id)
	elements := make([]*big.Int, 0, 2+len(ciphers)+len(shares)+len(ts))
	elements = append(elements, idInt, hpk)
	elements = append(elements, ciphers...)
	elements = append(elements, shares...)
	elements = append(elements, ts...)
	return hashing.HashToInt("decryption", q, elements...)
}
