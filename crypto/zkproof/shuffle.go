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

	"github.com/provotum/provotum-mixnet-sub000/crypto/elgamal"
	"github.com/provotum/provotum-mixnet-sub000/crypto/group"
	"github.com/provotum/provotum-mixnet-sub000/crypto/hashing"
	"github.com/provotum/provotum-mixnet-sub000/crypto/modarith"
	"github.com/provotum/provotum-mixnet-sub000/crypto/random"
)

var (
	// ErrEmptyInput is returned when a shuffle proof is requested over n=0 ciphers.
	ErrEmptyInput = errors.New("zkproof: shuffle requires a non-empty cipher vector")
	// ErrNotPermutation is returned when the prover's claimed permutation is not a bijection on [0,n).
	ErrNotPermutation = errors.New("zkproof: not a permutation of [0,n)")
	// ErrExceeded is returned when n exceeds a caller-supplied work bound, per
	// the spec's requirement that long-running operations never run unbounded.
	ErrExceeded = errors.New("zkproof: shuffle size exceeds configured bound")
)

var (
	shuffleBig0 = big.NewInt(0)
	shuffleBig1 = big.NewInt(1)
)

// BatchInfo carries the opaque batch-selection scalars described in the
// spec's External Interfaces: { batch_size, start_position, iteration }. The
// core never interprets these -- it only folds them into the hashed
// transcript so that an external orchestrator's verifier replays the exact
// same slice of its on-chain cipher list that the prover shuffled.
type BatchInfo struct {
	BatchSize     int
	StartPosition int
	Iteration     int
}

// Options configures a single shuffle-proof generation or verification:
// Batch is threaded into the transcript (see BatchInfo), MaxN bounds n so a
// generation/verification request never runs unbounded (0 means unbounded).
type Options struct {
	Batch *BatchInfo
	MaxN  int
}

/*
ShuffleProof is Wikström's permutation-plus-commitment-chain NIZK that eTilde
is a re-encryption of a permutation of e. Public statement: (e, eTilde, pk).
Witness: permutation perm and re-encryption randoms rTilde, with
eTilde[i] = ReEncrypt(e[perm[i]], rTilde[i]).

Generation follows the spec's seven steps:
 1. n independent generators gens[0..n) derived from id (crypto/hashing).
 2. Permutation commitment vecC, sampling r[0..n) and setting
    vecC[perm[i]] = g^r[perm[i]] * gens[i].
 3. Challenge vector u[i] = H(H(e,eTilde,vecC,pk), i) mod q; uTilde[i] = u[perm[i]].
 4. Commitment chain over uTilde with fresh rHat[0..n), producing vecCHat, R, U.
 5. Commitments t1..t4_2 and the per-index tHat[i] from fresh w1..w4, wHat, wTilde.
 6. Challenge c = H(e, eTilde, vecC, vecCHat, pk, t1, t2, t3, (t4a,t4b), tHat) mod q.
 7. Responses s1..s4, sHat[0..n), sTilde[0..n).

Verification recomputes t1..t4_2 and tHat purely from the public statement and
responses via the algebraic identities below (no witness needed), rederives u,
then checks the recomputed challenge against c:
  - t1  = A1^c * g^s1,                 A1 = (prod vecC) * (prod gens)^-1
  - t2  = X2^c * g^s2,                 X2 = vecCHat[n-1] * h^-(prod u)
  - t3  = X3^c * g^s3 * prod gens[i]^sTilde[i],  X3 = prod vecC[i]^u[i]
  - t4a = Aprod^c * g^-s4 * prod eTilde[i].A^sTilde[i],  Aprod = prod e[i].A^u[i]
  - t4b = Bprod^c * hpk^-s4 * prod eTilde[i].B^sTilde[i], Bprod = prod e[i].B^u[i]
  - tHat[i] = vecCHat[i]^c * g^sHat[i] * cHatPrev^sTilde[i], cHatPrev starting at h

where h is the group's second fixed generator (params.H), distinct from the
per-index independent generators gens[0..n) used for the permutation
commitment. The spec's step-7 definition of r_dot/r~_dot is read consistently
with this identity set: r_dot pairs the permutation-commitment randoms with
the unpermuted challenge u, r~_dot pairs the re-encryption randoms with the
permuted challenge uTilde (see DESIGN.md for the resolved ambiguity).
*/
type ShuffleProof struct {
	Challenge *big.Int
	S1        *big.Int
	S2        *big.Int
	S3        *big.Int
	S4        *big.Int
	SHat      []*big.Int
	STilde    []*big.Int
	VecC      []*big.Int
	VecCHat   []*big.Int
}

// GenerateShuffleProof proves that eTilde is a re-encryption of a permutation
// of e under pk, without revealing perm or rTilde.
func GenerateShuffleProof(params *group.Params, id []byte, e, eTilde []*elgamal.Cipher, pk *group.PublicKey, perm []int, rTilde []*big.Int, src random.Source, opts *Options) (*ShuffleProof, error) {
	n := len(e)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if len(eTilde) != n || len(perm) != n || len(rTilde) != n {
		return nil, ErrLengthMismatch
	}
	if opts != nil && opts.MaxN > 0 && n > opts.MaxN {
		return nil, ErrExceeded
	}
	if !isPermutation(perm, n) {
		return nil, ErrNotPermutation
	}

	q := params.Q()
	p := params.P
	g := params.G
	h := params.H

	gens, err := hashing.GetGenerators(id, q, n)
	if err != nil {
		return nil, err
	}

	// Step 2: permutation commitment.
	r, err := src.BigUintsLessThan(q, n)
	if err != nil {
		return nil, err
	}
	vecC := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		j := perm[i]
		grj, err := modarith.Pow(g, r[j], p)
		if err != nil {
			return nil, err
		}
		cj, err := modarith.Mul(grj, gens[i], p)
		if err != nil {
			return nil, err
		}
		vecC[j] = cj
	}

	// Step 3: challenge vector and its permuted form.
	u := shuffleChallengeVector(q, e, eTilde, vecC, pk.H, opts, n)
	uTilde := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		uTilde[i] = u[perm[i]]
	}

	// Step 4: commitment chain over uTilde.
	rHat, err := src.BigUintsLessThan(q, n)
	if err != nil {
		return nil, err
	}
	vecCHat, R, U, err := commitmentChain(params, uTilde, rHat)
	if err != nil {
		return nil, err
	}

	// Step 5: commitments t1..t4_2, tHat.
	w1, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}
	w2, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}
	w3, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}
	w4, err := src.LessThan(q)
	if err != nil {
		return nil, err
	}
	wHat, err := src.BigUintsLessThan(q, n)
	if err != nil {
		return nil, err
	}
	wTilde, err := src.BigUintsLessThan(q, n)
	if err != nil {
		return nil, err
	}

	t1, err := modarith.Pow(g, w1, p)
	if err != nil {
		return nil, err
	}
	t2, err := modarith.Pow(g, w2, p)
	if err != nil {
		return nil, err
	}

	gensWTilde, err := vectorPow(gens, wTilde, p)
	if err != nil {
		return nil, err
	}
	gw3, err := modarith.Pow(g, w3, p)
	if err != nil {
		return nil, err
	}
	t3, err := modarith.Mul(gw3, gensWTilde, p)
	if err != nil {
		return nil, err
	}

	negW4, err := negMod(w4, q)
	if err != nil {
		return nil, err
	}
	aTildeVals, bTildeVals := cipherComponents(eTilde)
	aTildeWTilde, err := vectorPow(aTildeVals, wTilde, p)
	if err != nil {
		return nil, err
	}
	bTildeWTilde, err := vectorPow(bTildeVals, wTilde, p)
	if err != nil {
		return nil, err
	}
	gNegW4, err := modarith.Pow(g, negW4, p)
	if err != nil {
		return nil, err
	}
	t4a, err := modarith.Mul(gNegW4, aTildeWTilde, p)
	if err != nil {
		return nil, err
	}
	hpkNegW4, err := modarith.Pow(pk.H, negW4, p)
	if err != nil {
		return nil, err
	}
	t4b, err := modarith.Mul(hpkNegW4, bTildeWTilde, p)
	if err != nil {
		return nil, err
	}

	tHat := make([]*big.Int, n)
	rPrev, uPrev := shuffleBig0, shuffleBig1
	for i := 0; i < n; i++ {
		term, err := modarith.Mul(wTilde[i], rPrev, q)
		if err != nil {
			return nil, err
		}
		rPrimeI, err := modarith.Add(wHat[i], term, q)
		if err != nil {
			return nil, err
		}
		uPrimeI, err := modarith.Mul(wTilde[i], uPrev, q)
		if err != nil {
			return nil, err
		}
		gR, err := modarith.Pow(g, rPrimeI, p)
		if err != nil {
			return nil, err
		}
		hU, err := modarith.Pow(h, uPrimeI, p)
		if err != nil {
			return nil, err
		}
		tHat[i], err = modarith.Mul(gR, hU, p)
		if err != nil {
			return nil, err
		}
		rPrev, uPrev = R[i], U[i]
	}

	c := shuffleChallenge(q, e, eTilde, vecC, vecCHat, pk.H, opts, t1, t2, t3, t4a, t4b, tHat)

	// Step 7: responses.
	rFlat := big.NewInt(0)
	for _, ri := range r {
		rFlat, err = modarith.Add(rFlat, ri, q)
		if err != nil {
			return nil, err
		}
	}
	s1, err := shuffleResponse(w1, c, rFlat, q)
	if err != nil {
		return nil, err
	}
	s2, err := shuffleResponse(w2, c, R[n-1], q)
	if err != nil {
		return nil, err
	}

	rDot := big.NewInt(0)
	for i := 0; i < n; i++ {
		term, err := modarith.Mul(r[i], u[i], q)
		if err != nil {
			return nil, err
		}
		rDot, err = modarith.Add(rDot, term, q)
		if err != nil {
			return nil, err
		}
	}
	s3, err := shuffleResponse(w3, c, rDot, q)
	if err != nil {
		return nil, err
	}

	rTildeDot := big.NewInt(0)
	for i := 0; i < n; i++ {
		term, err := modarith.Mul(rTilde[i], uTilde[i], q)
		if err != nil {
			return nil, err
		}
		rTildeDot, err = modarith.Add(rTildeDot, term, q)
		if err != nil {
			return nil, err
		}
	}
	s4, err := shuffleResponse(w4, c, rTildeDot, q)
	if err != nil {
		return nil, err
	}

	sHat := make([]*big.Int, n)
	sTilde := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		sHat[i], err = shuffleResponse(wHat[i], c, rHat[i], q)
		if err != nil {
			return nil, err
		}
		sTilde[i], err = shuffleResponse(wTilde[i], c, uTilde[i], q)
		if err != nil {
			return nil, err
		}
	}

	proof := &ShuffleProof{
		Challenge: c,
		S1:        s1,
		S2:        s2,
		S3:        s3,
		S4:        s4,
		SHat:      sHat,
		STilde:    sTilde,
		VecC:      vecC,
		VecCHat:   vecCHat,
	}
	if err := VerifyShuffleProof(params, id, e, eTilde, pk, proof, opts); err != nil {
		return nil, err
	}
	return proof, nil
}

// VerifyShuffleProof checks a ShuffleProof against the public statement
// (e, eTilde, pk), recomputing every commitment from the responses alone.
func VerifyShuffleProof(params *group.Params, id []byte, e, eTilde []*elgamal.Cipher, pk *group.PublicKey, proof *ShuffleProof, opts *Options) error {
	n := len(e)
	if n == 0 {
		return ErrEmptyInput
	}
	if len(eTilde) != n {
		return ErrLengthMismatch
	}
	if opts != nil && opts.MaxN > 0 && n > opts.MaxN {
		return ErrExceeded
	}
	if len(proof.VecC) != n || len(proof.VecCHat) != n || len(proof.SHat) != n || len(proof.STilde) != n {
		return ErrLengthMismatch
	}

	q := params.Q()
	p := params.P
	g := params.G
	h := params.H
	c := proof.Challenge

	gens, err := hashing.GetGenerators(id, q, n)
	if err != nil {
		return err
	}

	u := shuffleChallengeVector(q, e, eTilde, proof.VecC, pk.H, opts, n)

	// Identity 1.
	prodC := big.NewInt(1)
	for _, cj := range proof.VecC {
		if prodC, err = modarith.Mul(prodC, cj, p); err != nil {
			return err
		}
	}
	prodGens := big.NewInt(1)
	for _, gi := range gens {
		if prodGens, err = modarith.Mul(prodGens, gi, p); err != nil {
			return err
		}
	}
	prodGensInv, err := modarith.Inverse(prodGens, p)
	if err != nil {
		return err
	}
	a1, err := modarith.Mul(prodC, prodGensInv, p)
	if err != nil {
		return err
	}
	t1, err := challengeResponse(a1, c, g, proof.S1, p)
	if err != nil {
		return err
	}

	// Identity 2.
	uTarget := big.NewInt(1)
	for _, ui := range u {
		if uTarget, err = modarith.Mul(uTarget, ui, q); err != nil {
			return err
		}
	}
	negUTarget, err := negMod(uTarget, q)
	if err != nil {
		return err
	}
	hNegUTarget, err := modarith.Pow(h, negUTarget, p)
	if err != nil {
		return err
	}
	x2, err := modarith.Mul(proof.VecCHat[n-1], hNegUTarget, p)
	if err != nil {
		return err
	}
	t2, err := challengeResponse(x2, c, g, proof.S2, p)
	if err != nil {
		return err
	}

	// Identity 3.
	x3, err := vectorPow(proof.VecC, u, p)
	if err != nil {
		return err
	}
	x3c, err := modarith.Pow(x3, c, p)
	if err != nil {
		return err
	}
	gs3, err := modarith.Pow(g, proof.S3, p)
	if err != nil {
		return err
	}
	gensSTilde, err := vectorPow(gens, proof.STilde, p)
	if err != nil {
		return err
	}
	t3tmp, err := modarith.Mul(x3c, gs3, p)
	if err != nil {
		return err
	}
	t3, err := modarith.Mul(t3tmp, gensSTilde, p)
	if err != nil {
		return err
	}

	// Identity 4.
	aVals, bVals := cipherComponents(e)
	aProd, err := vectorPow(aVals, u, p)
	if err != nil {
		return err
	}
	bProd, err := vectorPow(bVals, u, p)
	if err != nil {
		return err
	}
	negS4, err := negMod(proof.S4, q)
	if err != nil {
		return err
	}
	aTildeVals, bTildeVals := cipherComponents(eTilde)
	aTildeSTilde, err := vectorPow(aTildeVals, proof.STilde, p)
	if err != nil {
		return err
	}
	bTildeSTilde, err := vectorPow(bTildeVals, proof.STilde, p)
	if err != nil {
		return err
	}
	t4a, err := challengeResponse(aProd, c, g, negS4, p)
	if err != nil {
		return err
	}
	if t4a, err = modarith.Mul(t4a, aTildeSTilde, p); err != nil {
		return err
	}
	t4b, err := challengeResponse(bProd, c, pk.H, negS4, p)
	if err != nil {
		return err
	}
	if t4b, err = modarith.Mul(t4b, bTildeSTilde, p); err != nil {
		return err
	}

	// tHat[i] = vecCHat[i]^c * g^sHat[i] * cHatPrev^sTilde[i].
	tHat := make([]*big.Int, n)
	cHatPrev := h
	for i := 0; i < n; i++ {
		cic, err := modarith.Pow(proof.VecCHat[i], c, p)
		if err != nil {
			return err
		}
		gsHat, err := modarith.Pow(g, proof.SHat[i], p)
		if err != nil {
			return err
		}
		prevS, err := modarith.Pow(cHatPrev, proof.STilde[i], p)
		if err != nil {
			return err
		}
		tmp, err := modarith.Mul(cic, gsHat, p)
		if err != nil {
			return err
		}
		tHat[i], err = modarith.Mul(tmp, prevS, p)
		if err != nil {
			return err
		}
		cHatPrev = proof.VecCHat[i]
	}

	want := shuffleChallenge(q, e, eTilde, proof.VecC, proof.VecCHat, pk.H, opts, t1, t2, t3, t4a, t4b, tHat)
	if want.Cmp(c) != 0 {
		rejectf("shuffle", "challenge mismatch", "n", len(e))
		return ErrVerifyFailure
	}
	return nil
}

// challengeResponse computes base^challenge * g^response mod p, the shape
// shared by identities 1, 2 and 4's two halves.
func challengeResponse(base, challenge, g, response, p *big.Int) (*big.Int, error) {
	bc, err := modarith.Pow(base, challenge, p)
	if err != nil {
		return nil, err
	}
	gr, err := modarith.Pow(g, response, p)
	if err != nil {
		return nil, err
	}
	return modarith.Mul(bc, gr, p)
}

// shuffleResponse computes w - c*witness mod q, the shape of every response
// in step 7.
func shuffleResponse(w, c, witness, q *big.Int) (*big.Int, error) {
	cw, err := modarith.Mul(c, witness, q)
	if err != nil {
		return nil, err
	}
	return modarith.Sub(w, cw, q)
}

// negMod returns -a mod m via modarith.Sub(0, a, m), keeping the result
// unsigned.
func negMod(a, m *big.Int) (*big.Int, error) {
	return modarith.Sub(shuffleBig0, a, m)
}

// vectorPow returns prod_i bases[i]^exps[i] mod p.
func vectorPow(bases, exps []*big.Int, p *big.Int) (*big.Int, error) {
	acc := big.NewInt(1)
	for i := range bases {
		term, err := modarith.Pow(bases[i], exps[i], p)
		if err != nil {
			return nil, err
		}
		acc, err = modarith.Mul(acc, term, p)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// commitmentChain builds the commitment chain c_i = g^R_i * h^U_i over
// challenge vector uTilde with fresh randoms rHat, per the CommitmentChain
// entity: R_{-1}=0, U_{-1}=1; R_i = rHat_i + uTilde_i*R_{i-1};
// U_i = uTilde_i*U_{i-1}.
func commitmentChain(params *group.Params, uTilde, rHat []*big.Int) (vecCHat, R, U []*big.Int, err error) {
	n := len(uTilde)
	q := params.Q()
	p := params.P
	g := params.G
	h := params.H

	vecCHat = make([]*big.Int, n)
	R = make([]*big.Int, n)
	U = make([]*big.Int, n)
	rPrev, uPrev := shuffleBig0, shuffleBig1
	for i := 0; i < n; i++ {
		term, err := modarith.Mul(uTilde[i], rPrev, q)
		if err != nil {
			return nil, nil, nil, err
		}
		Ri, err := modarith.Add(rHat[i], term, q)
		if err != nil {
			return nil, nil, nil, err
		}
		Ui, err := modarith.Mul(uTilde[i], uPrev, q)
		if err != nil {
			return nil, nil, nil, err
		}
		gR, err := modarith.Pow(g, Ri, p)
		if err != nil {
			return nil, nil, nil, err
		}
		hU, err := modarith.Pow(h, Ui, p)
		if err != nil {
			return nil, nil, nil, err
		}
		ci, err := modarith.Mul(gR, hU, p)
		if err != nil {
			return nil, nil, nil, err
		}
		vecCHat[i], R[i], U[i] = ci, Ri, Ui
		rPrev, uPrev = Ri, Ui
	}
	return vecCHat, R, U, nil
}

// cipherComponents splits a cipher vector into its parallel A and B vectors.
func cipherComponents(cs []*elgamal.Cipher) (as, bs []*big.Int) {
	as = make([]*big.Int, len(cs))
	bs = make([]*big.Int, len(cs))
	for i, c := range cs {
		as[i] = c.A
		bs[i] = c.B
	}
	return as, bs
}

// cipherInts flattens a cipher vector into (a_0,b_0,a_1,b_1,...) for hashing.
func cipherInts(cs []*elgamal.Cipher) []*big.Int {
	out := make([]*big.Int, 0, 2*len(cs))
	for _, c := range cs {
		out = append(out, c.A, c.B)
	}
	return out
}

// isPermutation reports whether perm is a bijection on [0,n).
func isPermutation(perm []int, n int) bool {
	seen := make([]bool, n)
	for _, v := range perm {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// shuffleChallengeVector derives u_i = H(H(e,eTilde,vecC,pk[,batch]), i) mod q
// for i=0..n-1, the verifier-replayable challenge vector of step 3.
func shuffleChallengeVector(q *big.Int, e, eTilde []*elgamal.Cipher, vecC []*big.Int, pkH *big.Int, opts *Options, n int) []*big.Int {
	outer := hashing.NewTranscript("shuffle-ch")
	outer.WriteInts(cipherInts(e))
	outer.WriteInts(cipherInts(eTilde))
	outer.WriteInts(vecC)
	outer.WriteInt(pkH)
	writeBatch(outer, opts)
	digest := outer.Int()

	u := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		u[i] = hashing.HashToInt("shuffle-ch", q, digest, big.NewInt(int64(i)))
	}
	return u
}

// shuffleChallenge derives the overall Fiat-Shamir challenge c of step 6.
func shuffleChallenge(q *big.Int, e, eTilde []*elgamal.Cipher, vecC, vecCHat []*big.Int, pkH *big.Int, opts *Options, t1, t2, t3, t4a, t4b *big.Int, tHat []*big.Int) *big.Int {
	tr := hashing.NewTranscript("shuffle-t")
	tr.WriteInts(cipherInts(e))
	tr.WriteInts(cipherInts(eTilde))
	tr.WriteInts(vecC)
	tr.WriteInts(vecCHat)
	tr.WriteInt(pkH)
	tr.WriteInt(t1)
	tr.WriteInt(t2)
	tr.WriteInt(t3)
	tr.WriteInt(t4a)
	tr.WriteInt(t4b)
	tr.WriteInts(tHat)
	writeBatch(tr, opts)
	return new(big.Int).Mod(tr.Int(), q)
}

// writeBatch folds the opaque batch-selection scalars from BatchInfo into a
// transcript, when present, so prover and verifier hash the same window of
// an external cipher list.
func writeBatch(tr *hashing.Transcript, opts *Options) {
	if opts == nil || opts.Batch == nil {
		return
	}
	tr.WriteUint64(uint64(opts.Batch.BatchSize))
	tr.WriteUint64(uint64(opts.Batch.StartPosition))
	tr.WriteUint64(uint64(opts.Batch.Iteration))
}
