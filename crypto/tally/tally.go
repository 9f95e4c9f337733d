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

// Package tally implements the final stage of the data flow: combining each
// sealer's partial decryptions into the plaintext behind every ciphertext,
// and aggregating the resulting values into per-option vote counts.
package tally

import (
	"errors"
	"math/big"
	"sort"

	"github.com/provotum/provotum-mixnet-sub000/crypto/elgamal"
	"github.com/provotum/provotum-mixnet-sub000/crypto/group"
	"github.com/provotum/provotum-mixnet-sub000/logger"
)

// ErrCombinedLengthMismatch is returned when the combined partial
// decryptions don't cover exactly the ciphers being tallied.
var ErrCombinedLengthMismatch = errors.New("tally: combined shares and ciphers length mismatch")

// Config mirrors the spec's External Interfaces call-site configuration for
// decryption/tally: Encoded selects decrypt_decode over decrypt, and
// DecodeCeiling bounds the brute-force discrete-log search so decoding never
// runs unbounded.
type Config struct {
	Encoded       bool
	DecodeCeiling int
}

// Combine runs the tally pipeline over a batch of ciphertexts: it
// column-combines a sealer-major matrix of partial "a" decryptions (one row
// per sealer, one column per ciphertext, see elgamal.CombinePartialDecryptedAs),
// partial-decrypts each ciphertext's b component against the combined value,
// and -- when cfg.Encoded is set -- decodes the recovered group element back
// to an integer plaintext via brute-force search bounded by
// cfg.DecodeCeiling. The result has one entry per input ciphertext, in the
// same order.
func Combine(params *group.Params, ciphers []*elgamal.Cipher, partialAs [][]*big.Int, cfg Config) ([]*big.Int, error) {
	combined, err := elgamal.CombinePartialDecryptedAs(params, partialAs)
	if err != nil {
		return nil, err
	}
	if len(combined) != len(ciphers) {
		return nil, ErrCombinedLengthMismatch
	}

	out := make([]*big.Int, len(ciphers))
	for i, c := range ciphers {
		gm, err := elgamal.PartialDecryptB(params, c.B, combined[i])
		if err != nil {
			return nil, err
		}
		if !cfg.Encoded {
			out[i] = gm
			continue
		}
		m, err := elgamal.DecodeMessage(params, gm, cfg.DecodeCeiling)
		if err != nil {
			logger.Logger().Warn("tally: decode ceiling exceeded", "index", i, "ceiling", cfg.DecodeCeiling)
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// Count pairs one distinct decoded plaintext with the number of ballots that
// carried it.
type Count struct {
	Plaintext *big.Int
	Count     int
}

// Aggregate collapses a vector of decoded plaintexts into counts per
// distinct value, returned sorted by ascending plaintext for deterministic
// output across independently-run tallies. Per the spec's testable property
// 7, the returned counts always sum to len(values).
func Aggregate(values []*big.Int) []Count {
	index := make(map[string]int, len(values))
	var counts []Count
	for _, v := range values {
		key := v.String()
		if pos, ok := index[key]; ok {
			counts[pos].Count++
			continue
		}
		index[key] = len(counts)
		counts = append(counts, Count{Plaintext: v, Count: 1})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Plaintext.Cmp(counts[j].Plaintext) < 0
	})
	return counts
}
