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

import "math/big"

// fixedSource is a random.Source stub that replays a scripted sequence of
// LessThan draws, letting the seeded scenarios from spec S4/S5 pin down the
// prover's randomness exactly instead of sampling it.
type fixedSource struct {
	values []*big.Int
	next   int
}

func newFixedSource(values ...int64) *fixedSource {
	s := &fixedSource{}
	for _, v := range values {
		s.values = append(s.values, big.NewInt(v))
	}
	return s
}

func (s *fixedSource) LessThan(n *big.Int) (*big.Int, error) {
	v := s.values[s.next]
	s.next++
	return v, nil
}

func (s *fixedSource) Range(lo, hi *big.Int) (*big.Int, error) {
	v, err := s.LessThan(new(big.Int).Sub(hi, lo))
	if err != nil {
		return nil, err
	}
	return v.Add(v, lo), nil
}

func (s *fixedSource) Bytes(k int) ([]byte, error) {
	return make([]byte, k), nil
}

func (s *fixedSource) Permutation(n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm, nil
}

func (s *fixedSource) BigUintsLessThan(n *big.Int, k int) ([]*big.Int, error) {
	out := make([]*big.Int, k)
	for i := range out {
		v, err := s.LessThan(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
