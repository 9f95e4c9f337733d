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

// Package modarith is the primitive layer every other crypto package is
// built on: modular add/sub/mul/div, modular inverse via the extended
// Euclidean algorithm, and modular exponentiation. Every function treats its
// inputs as non-negative arbitrary-precision integers.
package modarith

import (
	"errors"
	"math/big"
)

var (
	// ErrZeroModulus is returned when the modulus is not positive.
	ErrZeroModulus = errors.New("modulus must be positive")
	// ErrNoInverse is returned when gcd(a, m) != 1, so a has no inverse mod m.
	ErrNoInverse = errors.New("no modular inverse exists")
	// ErrOutOfRange is returned when an operand is not reduced modulo m.
	ErrOutOfRange = errors.New("operand not reduced modulo m")
)

var big1 = big.NewInt(1)

// Mul returns (a*b) mod m.
func Mul(a, b, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrZeroModulus
	}
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, m), nil
}

// Add returns (a+b) mod m.
func Add(a, b, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrZeroModulus
	}
	r := new(big.Int).Add(a, b)
	return r.Mod(r, m), nil
}

// Sub returns (a-b) mod m, computed as ((a+m)-b) mod m so that the
// intermediate value never goes negative regardless of the relative size of
// a and b.
func Sub(a, b, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrZeroModulus
	}
	r := new(big.Int).Add(a, m)
	r.Sub(r, b)
	return r.Mod(r, m), nil
}

// Inverse returns a^-1 mod m via the extended Euclidean algorithm.
func Inverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrZeroModulus
	}
	g := new(big.Int)
	x := new(big.Int)
	g.GCD(x, nil, a, m)
	if g.Cmp(big1) != 0 {
		return nil, ErrNoInverse
	}
	return x.Mod(x, m), nil
}

// Div returns a * invmod(d, m) mod m. Requires a < m and d < m.
func Div(a, d, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrZeroModulus
	}
	if a.Cmp(m) >= 0 || d.Cmp(m) >= 0 {
		return nil, ErrOutOfRange
	}
	inv, err := Inverse(d, m)
	if err != nil {
		return nil, err
	}
	return Mul(a, inv, m)
}

// Pow returns a^e mod m via Go's constant-time-in-e square-and-multiply
// (math/big.Int.Exp runs in time depending on the bit-length of e, not on the
// value of a, which satisfies the timing contract for modular exponentiation
// operating on secret exponents).
func Pow(a, e, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrZeroModulus
	}
	return new(big.Int).Exp(a, e, m), nil
}
