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

// Package zkproof implements the four non-interactive zero-knowledge proofs
// the core relies on, all built with the Fiat-Shamir transform on top of
// crypto/hashing's domain-separated challenges: KeyGen (Schnorr proof of
// knowledge of a discrete log), Decryption (Chaum-Pedersen-style, batched
// over n ciphertext/share pairs), Re-Encryption (designated-verifier) and
// Shuffle (Wikström's permutation+commitment-chain construction).
package zkproof

import (
	"errors"

	"github.com/provotum/provotum-mixnet-sub000/logger"
)

// ErrVerifyFailure is returned by every proof's Verify method on rejection.
// Per the spec's error-handling policy this is always a recoverable,
// caller-facing condition -- never a panic.
var ErrVerifyFailure = errors.New("zkproof: verification failed")

// rejectf logs the reason a proof was rejected before the Verify* function
// returns ErrVerifyFailure to its caller. Rejection is an expected, routine
// outcome (a forged or stale proof), so it is logged at Debug rather than Warn.
func rejectf(kind, reason string, ctx ...interface{}) {
	logger.Logger().Debug("zkproof: rejected "+kind+" proof: "+reason, ctx...)
}
