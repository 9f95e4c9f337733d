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

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ReEncryptionProof", func() {
	params := seededParams()

	buildPair := func() (*group.PublicKey, *elgamal.Cipher, *elgamal.Cipher, *big.Int) {
		pub, _, _ := group.GenerateKeyPair(params, big.NewInt(4))
		c, _ := elgamal.EncryptEncode(params, big.NewInt(2), big.NewInt(6), pub)
		r1 := big.NewInt(9)
		cPrime, _ := elgamal.ReEncrypt(params, c, r1, pub)
		return pub, c, cPrime, r1
	}

	It("verifies an honestly generated proof", func() {
		pub, c, cPrime, r1 := buildPair()
		proof, err := GenerateReEncryptionProof(params, c, cPrime, r1, pub, newFixedSource(3, 5, 2))
		Expect(err).Should(BeNil())
		Expect(VerifyReEncryptionProof(params, c, cPrime, pub, proof)).Should(BeNil())
	})

	It("rejects a proof checked against a cPrime that isn't a re-encryption of c", func() {
		pub, c, cPrime, r1 := buildPair()
		proof, err := GenerateReEncryptionProof(params, c, cPrime, r1, pub, newFixedSource(3, 5, 2))
		Expect(err).Should(BeNil())

		otherCipher, _ := elgamal.EncryptEncode(params, big.NewInt(5), big.NewInt(2), pub)
		Expect(VerifyReEncryptionProof(params, c, otherCipher, pub, proof)).Should(Equal(ErrVerifyFailure))
	})

	It("rejects a mutated T2", func() {
		pub, c, cPrime, r1 := buildPair()
		proof, err := GenerateReEncryptionProof(params, c, cPrime, r1, pub, newFixedSource(3, 5, 2))
		Expect(err).Should(BeNil())

		mutated := &ReEncryptionProof{
			COnePrime: proof.COnePrime,
			Challenge: proof.Challenge,
			H1:        proof.H1,
			H2:        proof.H2,
			S2:        proof.S2,
			T2:        new(big.Int).Add(proof.T2, big.NewInt(1)),
		}
		Expect(VerifyReEncryptionProof(params, c, cPrime, pub, mutated)).Should(Equal(ErrVerifyFailure))
	})

	It("rejects a mutated challenge", func() {
		pub, c, cPrime, r1 := buildPair()
		proof, err := GenerateReEncryptionProof(params, c, cPrime, r1, pub, newFixedSource(3, 5, 2))
		Expect(err).Should(BeNil())

		mutated := &ReEncryptionProof{
			COnePrime: proof.COnePrime,
			Challenge: new(big.Int).Xor(proof.Challenge, big.NewInt(1)),
			H1:        proof.H1,
			H2:        proof.H2,
			S2:        proof.S2,
			T2:        proof.T2,
		}
		Expect(VerifyReEncryptionProof(params, c, cPrime, pub, mutated)).Should(Equal(ErrVerifyFailure))
	})

	It("rejects a proof designated to the wrong verifier", func() {
		pub, c, cPrime, r1 := buildPair()
		proof, err := GenerateReEncryptionProof(params, c, cPrime, r1, pub, newFixedSource(3, 5, 2))
		Expect(err).Should(BeNil())

		otherPub, _, _ := group.GenerateKeyPair(params, big.NewInt(5))
		Expect(VerifyReEncryptionProof(params, c, cPrime, otherPub, proof)).Should(Equal(ErrVerifyFailure))
	})
})
