package hk_test

import (
	"sync/atomic"
	"time"

	"github.com/fcopy-dev/fcopy/hk"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("housekeeper", func() {
	It("fires a registered callback repeatedly", func() {
		var n int32
		hk.Reg("unit-test"+hk.NameSuffix, func() time.Duration {
			atomic.AddInt32(&n, 1)
			return 10 * time.Millisecond
		}, 10*time.Millisecond)
		defer hk.Unreg("unit-test" + hk.NameSuffix)

		Eventually(func() int32 { return atomic.LoadInt32(&n) }, "500ms", "5ms").Should(BeNumerically(">=", 2))
	})

	It("stops firing once unregistered", func() {
		var n int32
		hk.Reg("unit-test-2"+hk.NameSuffix, func() time.Duration {
			atomic.AddInt32(&n, 1)
			return 10 * time.Millisecond
		}, 10*time.Millisecond)
		time.Sleep(30 * time.Millisecond)
		hk.Unreg("unit-test-2" + hk.NameSuffix)
		after := atomic.LoadInt32(&n)
		time.Sleep(50 * time.Millisecond)
		Expect(atomic.LoadInt32(&n)).To(BeNumerically("<=", after+1))
	})
})
