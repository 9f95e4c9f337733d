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
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func TestUtils(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Utils Suite")
}

var _ = Describe("Utils", func() {
	DescribeTable("EnsureFieldOrder()", func(a *big.Int, err error) {
		got := EnsureFieldOrder(a)
		if err == nil {
			Expect(got).Should(BeNil())
		} else {
			Expect(got).Should(Equal(err))
		}
	},
		Entry("should be ok", big.NewInt(3), nil),
		Entry("invalid field order", big.NewInt(2), ErrLessOrEqualBig2),
	)

	DescribeTable("InRange()", func(checkValue *big.Int, floor *big.Int, ceil *big.Int, err error) {
		gotErr := InRange(checkValue, floor, ceil)
		if err == nil {
			Expect(gotErr).Should(BeNil())
		} else {
			Expect(gotErr).Should(Equal(err))
		}
	},
		Entry("should be ok", big.NewInt(5), big.NewInt(5), big.NewInt(7), nil),
		Entry("larger floor", big.NewInt(3), big.NewInt(4), big.NewInt(4), ErrLargerFloor),
		Entry("value is smaller than floor", big.NewInt(3), big.NewInt(4), big.NewInt(6), ErrNotInRange),
		Entry("value is equal to ceil", big.NewInt(6), big.NewInt(4), big.NewInt(6), ErrNotInRange),
	)

	DescribeTable("GenRandomBytes()", func(size int, err error) {
		got, gotErr := GenRandomBytes(size)
		if err == nil {
			Expect(gotErr).Should(BeNil())
			Expect(got).ShouldNot(BeNil())
		} else {
			Expect(gotErr).Should(Equal(err))
			Expect(got).Should(BeNil())
		}
	},
		Entry("should be ok", 100, nil),
		Entry("empty slices", 0, ErrEmptySlice),
	)
})
