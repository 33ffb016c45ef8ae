package cos_test

import (
	"github.com/fcopy-dev/fcopy/cmn/cos"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("cos", func() {
	Describe("ToSizeIEC", func() {
		It("renders sub-unit byte counts plainly", func() {
			Expect(cos.ToSizeIEC(512, 1)).To(Equal("512B"))
		})
		It("renders MiB-scale counts", func() {
			Expect(cos.ToSizeIEC(10*cos.MiB, 1)).To(Equal("10.0MiB"))
		})
	})

	Describe("DivCeil", func() {
		It("rounds up", func() {
			Expect(cos.DivCeil(10, 3)).To(BeEquivalentTo(4))
			Expect(cos.DivCeil(9, 3)).To(BeEquivalentTo(3))
		})
	})

	Describe("ClampI64", func() {
		It("clamps into [lo, hi]", func() {
			Expect(cos.ClampI64(5, 1, 10)).To(BeEquivalentTo(5))
			Expect(cos.ClampI64(-5, 1, 10)).To(BeEquivalentTo(1))
			Expect(cos.ClampI64(50, 1, 10)).To(BeEquivalentTo(10))
		})
	})

	Describe("Plural", func() {
		It("is empty for exactly one", func() {
			Expect(cos.Plural(1)).To(Equal(""))
			Expect(cos.Plural(0)).To(Equal("s"))
			Expect(cos.Plural(2)).To(Equal("s"))
		})
	})

	Describe("GenUUID", func() {
		It("produces valid, distinct IDs", func() {
			a, b := cos.GenUUID(), cos.GenUUID()
			Expect(cos.IsValidUUID(a)).To(BeTrue())
			Expect(a).NotTo(Equal(b))
		})
	})

	Describe("CheckAlphaPlus", func() {
		It("rejects double dots", func() {
			Expect(cos.CheckAlphaPlus("a..b", "name")).To(HaveOccurred())
		})
		It("accepts alnum with dash/underscore/dot", func() {
			Expect(cos.CheckAlphaPlus("my-volume_1.tag", "name")).NotTo(HaveOccurred())
		})
	})
})
