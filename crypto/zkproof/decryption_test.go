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
	"github.com/provotum/provotum-mixnet-sub000/crypto/modarith"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("DecryptionProof", func() {
	params := seededParams()
	id := []byte("sealer-1")

	buildShares := func(x *big.Int, ciphers []*big.Int) []*big.Int {
		shares := make([]*big.Int, len(ciphers))
		for i, a := range ciphers {
			shares[i], _ = modarith.Pow(a, x, params.P)
		}
		return shares
	}

	It("verifies an honestly generated proof over n=3 ciphers", func() {
		pub, priv, _ := group.GenerateKeyPair(params, big.NewInt(2))
		ciphers := []*big.Int{big.NewInt(4), big.NewInt(6), big.NewInt(18)}
		shares := buildShares(priv.X, ciphers)

		proof, err := GenerateDecryptionProof(params, id, priv, pub, ciphers, shares, newFixedSource(7))
		Expect(err).Should(BeNil())
		Expect(VerifyDecryptionProof(params, id, pub, ciphers, shares, proof)).Should(BeNil())
	})

	It("rejects mismatched cipher/share lengths", func() {
		pub, priv, _ := group.GenerateKeyPair(params, big.NewInt(2))
		_, err := GenerateDecryptionProof(params, id, priv, pub, []*big.Int{big.NewInt(4)}, nil, newFixedSource(7))
		Expect(err).Should(Equal(ErrLengthMismatch))
	})

	It("rejects a single flipped share", func() {
		pub, priv, _ := group.GenerateKeyPair(params, big.NewInt(2))
		ciphers := []*big.Int{big.NewInt(4), big.NewInt(6)}
		shares := buildShares(priv.X, ciphers)
		proof, err := GenerateDecryptionProof(params, id, priv, pub, ciphers, shares, newFixedSource(7))
		Expect(err).Should(BeNil())

		tampered := append([]*big.Int{}, shares...)
		tampered[0] = new(big.Int).Add(tampered[0], big.NewInt(1))
		Expect(VerifyDecryptionProof(params, id, pub, ciphers, tampered, proof)).Should(Equal(ErrVerifyFailure))
	})

	It("rejects a mutated response", func() {
		pub, priv, _ := group.GenerateKeyPair(params, big.NewInt(2))
		ciphers := []*big.Int{big.NewInt(4), big.NewInt(6)}
		shares := buildShares(priv.X, ciphers)
		proof, err := GenerateDecryptionProof(params, id, priv, pub, ciphers, shares, newFixedSource(7))
		Expect(err).Should(BeNil())

		mutated := &DecryptionProof{Challenge: proof.Challenge, Response: new(big.Int).Xor(proof.Response, big.NewInt(1))}
		Expect(VerifyDecryptionProof(params, id, pub, ciphers, shares, mutated)).Should(Equal(ErrVerifyFailure))
	})
})
