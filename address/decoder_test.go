package address_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/address"
)

var _ = Describe("Decoder", func() {
	var d address.Decoder

	BeforeEach(func() {
		// 1024B cache, 32B blocks, 4-way => 8 sets
		d = address.NewDecoder(32, 8)
	})

	It("should decode address 0", func() {
		dc := d.Decode(0)
		Expect(dc.Tag).To(Equal(int64(0)))
		Expect(dc.SetIndex).To(Equal(0))
		Expect(dc.Offset).To(Equal(0))
	})

	It("should wrap set index at the cache size", func() {
		dc := d.Decode(1024)
		Expect(dc.Tag).To(Equal(int64(4)))
		Expect(dc.SetIndex).To(Equal(0))
		Expect(dc.Offset).To(Equal(0))
	})

	It("should decode offset and set inside the first tag", func() {
		dc := d.Decode(0x65) // block 3, byte 5
		Expect(dc.Tag).To(Equal(int64(0)))
		Expect(dc.SetIndex).To(Equal(3))
		Expect(dc.Offset).To(Equal(5))
	})

	It("should agree with the single-field accessors", func() {
		addr := uint64(123456)
		dc := d.Decode(addr)
		Expect(d.Tag(addr)).To(Equal(dc.Tag))
		Expect(d.SetIndex(addr)).To(Equal(dc.SetIndex))
		Expect(d.Offset(addr)).To(Equal(dc.Offset))
	})

	It("should honor non power of two geometry", func() {
		d = address.NewDecoder(24, 5)

		dc := d.Decode(1000)
		// 1000 / 24 = 41 rem 16; 41 % 5 = 1; 41 / 5 = 8
		Expect(dc.Offset).To(Equal(16))
		Expect(dc.SetIndex).To(Equal(1))
		Expect(dc.Tag).To(Equal(int64(8)))
		Expect(d.Compose(dc)).To(Equal(uint64(1000)))
	})

	It("should give the base address of a block", func() {
		Expect(d.BlockBase(4, 0)).To(Equal(uint64(1024)))
		Expect(d.BlockBase(1, 3)).To(Equal(uint64((1*8 + 3) * 32)))
	})
})
