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

	"github.com/provotum/provotum-mixnet-sub000/crypto/elgamal"
	"github.com/provotum/provotum-mixnet-sub000/crypto/group"
	"github.com/provotum/provotum-mixnet-sub000/crypto/hashing"
	"github.com/provotum/provotum-mixnet-sub000/crypto/modarith"
	"github.com/provotum/provotum-mixnet-sub000/crypto/random"
)

var big1ReEnc = big.NewInt(1)

/*
ReEncryptionProof is a designated-verifier NIZK that c' is a re-encryption of
c under randomness r1, provable only to the holder of the verifier's secret
key (the "designated" verifier, pk's owner), following the source protocol's
algebra verbatim: the verifier side still needs `HomomorphicMultiply`
(ciphertext exponentiation (a,b)->(a^k,b^k)), not the additive analogue, to
check the commitment identity -- see spec Design Notes.

Prover, given (c, c' = re_encrypt(c, r1, pk), pk), samples r2, h2, s2 in [0,q):
  - t2 = g^s2 * h_pk^-h2
  - c_one = c' / c               (homomorphic subtraction; encrypts 1 under r1)
  - c_one' = encrypt(1, r2, pk)
  - h = H("re_encryption", c_one, c_one', t2) mod q
  - h1 = h - h2 mod q
  - challenge = h1*r1 + r2 mod q
  - proof = (c_one', challenge, h1, h2, s2, t2)
*/
type ReEncryptionProof struct {
	COnePrime *elgamal.Cipher
	Challenge *big.Int
	H1        *big.Int
	H2        *big.Int
	S2        *big.Int
	T2        *big.Int
}

// GenerateReEncryptionProof proves that cPrime is a re-encryption of c under
// r1, designated to the holder of pk's secret key.
func GenerateReEncryptionProof(params *group.Params, c, cPrime *elgamal.Cipher, r1 *big.Int, pk *group.PublicKey, src random.Source) (*ReEncryptionProof, error) {
	q := params.Q()

	r2, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}
	h2, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}
	s2, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}

	t2, err := reEncryptionT2(params, pk, s2, h2)
	if err != nil {
		return nil, err
	}

	cOne, err := elgamal.HomomorphicSub(params, cPrime, c)
	if err != nil {
		return nil, err
	}
	cOnePrime, err := elgamal.Encrypt(params, big1ReEnc, r2, pk)
	if err != nil {
		return nil, err
	}

	h := reEncryptionChallenge(q, cOne, cOnePrime, t2)
	h1, err := modarith.Sub(h, h2, q)
	if err != nil {
		return nil, err
	}

	h1r1, err := modarith.Mul(h1, r1, q)
	if err != nil {
		return nil, err
	}
	challenge, err := modarith.Add(h1r1, r2, q)
	if err != nil {
		return nil, err
	}

	proof := &ReEncryptionProof{
		COnePrime: cOnePrime,
		Challenge: challenge,
		H1:        h1,
		H2:        h2,
		S2:        s2,
		T2:        t2,
	}
	if err := VerifyReEncryptionProof(params, c, cPrime, pk, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

// VerifyReEncryptionProof checks a ReEncryptionProof for the pair (c, cPrime)
// under the designated verifier's public key pk.
func VerifyReEncryptionProof(params *group.Params, c, cPrime *elgamal.Cipher, pk *group.PublicKey, proof *ReEncryptionProof) error {
	q := params.Q()

	cOne, err := elgamal.HomomorphicSub(params, cPrime, c)
	if err != nil {
		return err
	}

	h := reEncryptionChallenge(q, cOne, proof.COnePrime, proof.T2)
	hh, err := modarith.Add(proof.H1, proof.H2, q)
	if err != nil {
		return err
	}
	if hh.Cmp(h) != 0 {
		rejectf("re-encryption", "split-challenge mismatch")
		return ErrVerifyFailure
	}

	// encrypt(1, challenge, pk) == c_one'^1 (+) (c_one * h1), additive over
	// ciphertexts being component-wise multiplication mod p.
	lhs, err := elgamal.Encrypt(params, big1ReEnc, proof.Challenge, pk)
	if err != nil {
		return err
	}
	cOneH1, err := elgamal.HomomorphicMultiply(params, cOne, proof.H1)
	if err != nil {
		return err
	}
	rhs, err := elgamal.HomomorphicAdd(params, proof.COnePrime, cOneH1)
	if err != nil {
		return err
	}
	if lhs.A.Cmp(rhs.A) != 0 || lhs.B.Cmp(rhs.B) != 0 {
		rejectf("re-encryption", "homomorphic identity mismatch")
		return ErrVerifyFailure
	}

	// g^s2 == h_pk^h2 * t2
	gs2, err := modarith.Pow(params.G, proof.S2, params.P)
	if err != nil {
		return err
	}
	hh2, err := modarith.Pow(pk.H, proof.H2, params.P)
	if err != nil {
		return err
	}
	want, err := modarith.Mul(hh2, proof.T2, params.P)
	if err != nil {
		return err
	}
	if gs2.Cmp(want) != 0 {
		rejectf("re-encryption", "schnorr commitment mismatch")
		return ErrVerifyFailure
	}
	return nil
}

// reEncryptionT2 computes t2 = g^s2 * h_pk^-h2 mod p.
func reEncryptionT2(params *group.Params, pk *group.PublicKey, s2, h2 *big.Int) (*big.Int, error) {
	gs2, err := modarith.Pow(params.G, s2, params.P)
	if err != nil {
		return nil, err
	}
	hh2, err := modarith.Pow(pk.H, h2, params.P)
	if err != nil {
		return nil, err
	}
	hh2Inv, err := modarith.Inverse(hh2, params.P)
	if err != nil {
		return nil, err
	}
	return modarith.Mul(gs2, hh2Inv, params.P)
}

func reEncryptionChallenge(q *big.Int, cOne, cOnePrime *elgamal.Cipher, t2 *big.Int) *big.Int {
	return hashing.HashToInt("re_encryption", q, cOne.A, cOne.B, cOnePrime.A, cOnePrime.B, t2)
}
