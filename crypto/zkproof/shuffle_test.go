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

// shuffleFixture builds the S2 cipher vector (messages {0,1,2}, randoms
// {4,7,3}) and its permutation pi=(2,0,1), re-encrypted with rTilde to give
// an eTilde consistent with this package's destination-indexed convention:
// eTilde[i] = ReEncrypt(e[pi[i]], rTilde[i], pk).
func shuffleFixture() (params *group.Params, pk *group.PublicKey, e, eTilde []*elgamal.Cipher, perm []int, rTilde []*big.Int) {
	params = seededParams()
	pub, _, _ := group.GenerateKeyPair(params, big.NewInt(2))

	messages := []int64{0, 1, 2}
	randoms := []*big.Int{big.NewInt(4), big.NewInt(7), big.NewInt(3)}
	e = make([]*elgamal.Cipher, 3)
	for i, m := range messages {
		c, _ := elgamal.EncryptEncode(params, big.NewInt(m), randoms[i], pub)
		e[i] = c
	}

	perm = []int{2, 0, 1}
	rTilde = []*big.Int{big.NewInt(5), big.NewInt(6), big.NewInt(2)}
	eTilde = make([]*elgamal.Cipher, 3)
	for i := range eTilde {
		c, _ := elgamal.ReEncrypt(params, e[perm[i]], rTilde[i], pub)
		eTilde[i] = c
	}
	return params, pub, e, eTilde, perm, rTilde
}

// shuffleProverSource supplies the 4n+4 draws GenerateShuffleProof consumes
// in order: r[n], rHat[n], w1, w2, w3, w4, wHat[n], wTilde[n].
func shuffleProverSource(n int) *fixedSource {
	vals := make([]int64, 0, 4*n+4)
	for v := int64(1); len(vals) < 4*n+4; v++ {
		vals = append(vals, v)
	}
	return newFixedSource(vals...)
}

var _ = Describe("ShuffleProof (S5)", func() {
	id := []byte("shuffle-test")

	It("verifies an honestly generated proof", func() {
		params, pk, e, eTilde, perm, rTilde := shuffleFixture()
		proof, err := GenerateShuffleProof(params, id, e, eTilde, pk, perm, rTilde, shuffleProverSource(3), nil)
		Expect(err).Should(BeNil())
		Expect(VerifyShuffleProof(params, id, e, eTilde, pk, proof, nil)).Should(BeNil())
	})

	It("rejects swapping two entries of eTilde without updating the proof", func() {
		params, pk, e, eTilde, perm, rTilde := shuffleFixture()
		proof, err := GenerateShuffleProof(params, id, e, eTilde, pk, perm, rTilde, shuffleProverSource(3), nil)
		Expect(err).Should(BeNil())

		mutated := append([]*elgamal.Cipher{}, eTilde...)
		mutated[0], mutated[1] = mutated[1], mutated[0]
		Expect(VerifyShuffleProof(params, id, e, mutated, pk, proof, nil)).Should(Equal(ErrVerifyFailure))
	})

	It("rejects a mutated challenge", func() {
		params, pk, e, eTilde, perm, rTilde := shuffleFixture()
		proof, err := GenerateShuffleProof(params, id, e, eTilde, pk, perm, rTilde, shuffleProverSource(3), nil)
		Expect(err).Should(BeNil())

		mutated := *proof
		mutated.Challenge = new(big.Int).Xor(proof.Challenge, big.NewInt(1))
		Expect(VerifyShuffleProof(params, id, e, eTilde, pk, &mutated, nil)).Should(Equal(ErrVerifyFailure))
	})

	It("rejects a mutated response", func() {
		params, pk, e, eTilde, perm, rTilde := shuffleFixture()
		proof, err := GenerateShuffleProof(params, id, e, eTilde, pk, perm, rTilde, shuffleProverSource(3), nil)
		Expect(err).Should(BeNil())

		mutated := *proof
		mutated.S1 = new(big.Int).Xor(proof.S1, big.NewInt(1))
		Expect(VerifyShuffleProof(params, id, e, eTilde, pk, &mutated, nil)).Should(Equal(ErrVerifyFailure))
	})

	It("rejects a mutated permutation commitment", func() {
		params, pk, e, eTilde, perm, rTilde := shuffleFixture()
		proof, err := GenerateShuffleProof(params, id, e, eTilde, pk, perm, rTilde, shuffleProverSource(3), nil)
		Expect(err).Should(BeNil())

		mutated := *proof
		mutatedVecC := append([]*big.Int{}, proof.VecC...)
		mutatedVecC[0] = new(big.Int).Add(mutatedVecC[0], big.NewInt(1))
		mutated.VecC = mutatedVecC
		Expect(VerifyShuffleProof(params, id, e, eTilde, pk, &mutated, nil)).Should(Equal(ErrVerifyFailure))
	})

	It("binds the proof to the batch-selection scalars", func() {
		params, pk, e, eTilde, perm, rTilde := shuffleFixture()
		optsA := &Options{Batch: &BatchInfo{BatchSize: 3, StartPosition: 0, Iteration: 1}}
		proof, err := GenerateShuffleProof(params, id, e, eTilde, pk, perm, rTilde, shuffleProverSource(3), optsA)
		Expect(err).Should(BeNil())
		Expect(VerifyShuffleProof(params, id, e, eTilde, pk, proof, optsA)).Should(BeNil())

		optsB := &Options{Batch: &BatchInfo{BatchSize: 3, StartPosition: 1, Iteration: 1}}
		Expect(VerifyShuffleProof(params, id, e, eTilde, pk, proof, optsB)).Should(Equal(ErrVerifyFailure))
	})

	It("rejects n beyond a configured MaxN bound", func() {
		params, pk, e, eTilde, perm, rTilde := shuffleFixture()
		opts := &Options{MaxN: 2}
		_, err := GenerateShuffleProof(params, id, e, eTilde, pk, perm, rTilde, shuffleProverSource(3), opts)
		Expect(err).Should(Equal(ErrExceeded))
	})
})

var _ = Describe("ShuffleProof contract errors", func() {
	id := []byte("shuffle-test")

	It("rejects an empty input", func() {
		params, pk, _, _, _, _ := shuffleFixture()
		_, err := GenerateShuffleProof(params, id, nil, nil, pk, nil, nil, shuffleProverSource(0), nil)
		Expect(err).Should(Equal(ErrEmptyInput))
	})

	It("rejects mismatched vector lengths", func() {
		params, pk, e, eTilde, perm, rTilde := shuffleFixture()
		_, err := GenerateShuffleProof(params, id, e, eTilde[:2], pk, perm, rTilde, shuffleProverSource(3), nil)
		Expect(err).Should(Equal(ErrLengthMismatch))
	})

	It("rejects a non-permutation witness", func() {
		params, pk, e, eTilde, _, rTilde := shuffleFixture()
		_, err := GenerateShuffleProof(params, id, e, eTilde, pk, []int{0, 0, 1}, rTilde, shuffleProverSource(3), nil)
		Expect(err).Should(Equal(ErrNotPermutation))
	})
})
