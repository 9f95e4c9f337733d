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
package utils

import (
	"math/big"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("IsPrime", func() {
	DescribeTable("known vectors", func(n int64, want bool) {
		Expect(IsPrime(big.NewInt(n))).Should(Equal(want))
	},
		// S6: Miller-Rabin primality of 84532559 is true; of 84532560 is false.
		Entry("84532559 is prime", int64(84532559), true),
		Entry("84532560 is not prime", int64(84532560), false),
		Entry("23 is prime", int64(23), true),
		Entry("1 is not prime", int64(1), false),
		Entry("0 is not prime", int64(0), false),
	)
})
