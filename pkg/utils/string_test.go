package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("fits the ellipsis inside the width", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is..."))
	})

	It("never splits a multi-byte character", func() {
		Expect(Truncate("héllo wörld", 7)).To(Equal("héll..."))
	})

	It("flattens line breaks", func() {
		Expect(Truncate("line one\n\nline two", 40)).To(Equal("line one line two"))
	})
})
