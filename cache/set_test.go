package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replacement"
)

var _ = Describe("Set", func() {
	const (
		blockSize = 4
		numSets   = 8
		setIndex  = 3
	)

	var (
		mockCtrl *gomock.Controller
		backing  *MockBackingStore
		set      *cache.Set
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backing = NewMockBackingStore(mockCtrl)
		set = cache.NewSet(setIndex, 2, blockSize, replacement.NewLRU())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start with invalid blocks carrying no tag", func() {
		Expect(set.Associativity()).To(Equal(2))
		for way := 0; way < 2; way++ {
			Expect(set.Block(way).Valid).To(BeFalse())
			Expect(set.Block(way).Tag).To(Equal(cache.NoTag))
			Expect(set.Block(way).Data).To(HaveLen(blockSize))
		}

		_, ok := set.Lookup(cache.NoTag)
		Expect(ok).To(BeFalse())
	})

	It("should fill a free way from the block's memory range", func() {
		// tag 2, set 3 => block (2*8+3) => base 76
		backing.EXPECT().Read(uint64(76), blockSize).Return([]byte{1, 2, 3, 4})

		alloc := set.Allocate(2, numSets, backing)

		Expect(alloc.Way).To(Equal(0))
		Expect(alloc.Evicted).To(BeNil())
		block := set.Block(0)
		Expect(block.Valid).To(BeTrue())
		Expect(block.Dirty).To(BeFalse())
		Expect(block.Tag).To(Equal(int64(2)))
		Expect(block.Data).To(Equal([]byte{1, 2, 3, 4}))

		way, ok := set.Lookup(2)
		Expect(ok).To(BeTrue())
		Expect(way).To(Equal(0))
	})

	It("should not report clean victims", func() {
		backing.EXPECT().Read(gomock.Any(), blockSize).
			Return(make([]byte, blockSize)).Times(3)

		set.Allocate(0, numSets, backing)
		set.Allocate(1, numSets, backing)
		alloc := set.Allocate(2, numSets, backing)

		Expect(alloc.Way).To(Equal(0))
		Expect(alloc.Evicted).To(BeNil())
	})

	It("should write back a dirty victim to its old range", func() {
		backing.EXPECT().Read(gomock.Any(), blockSize).
			Return(make([]byte, blockSize)).Times(2)
		set.Allocate(0, numSets, backing)
		set.Allocate(1, numSets, backing)

		victim := set.Block(0)
		victim.Data[1] = 0x42
		victim.Dirty = true
		set.Touch(1)

		gomock.InOrder(
			// tag 0, set 3 => base 12
			backing.EXPECT().Write(uint64(12), []byte{0, 0x42, 0, 0}),
			// tag 5, set 3 => base (5*8+3)*4 = 172
			backing.EXPECT().Read(uint64(172), blockSize).
				Return([]byte{9, 9, 9, 9}),
		)

		alloc := set.Allocate(5, numSets, backing)

		Expect(alloc.Way).To(Equal(0))
		Expect(alloc.Evicted).NotTo(BeNil())
		Expect(alloc.Evicted.Tag).To(Equal(int64(0)))
		Expect(alloc.Evicted.Dirty).To(BeTrue())
		Expect(alloc.Evicted.Addr).To(Equal(uint64(12)))
		Expect(set.Block(0).Tag).To(Equal(int64(5)))
		Expect(set.Block(0).Dirty).To(BeFalse())
		Expect(set.Block(0).Data).To(Equal([]byte{9, 9, 9, 9}))
	})

	It("should flush only valid dirty blocks", func() {
		backing.EXPECT().Read(gomock.Any(), blockSize).
			Return(make([]byte, blockSize)).Times(2)
		set.Allocate(0, numSets, backing)
		set.Allocate(1, numSets, backing)
		set.Block(1).Dirty = true
		set.Block(1).Data[0] = 7

		// tag 1, set 3 => base (8+3)*4 = 44
		backing.EXPECT().Write(uint64(44), []byte{7, 0, 0, 0})

		Expect(set.Flush(numSets, backing)).To(Equal(1))
		Expect(set.Block(1).Dirty).To(BeFalse())
		Expect(set.Block(1).Valid).To(BeTrue())
		Expect(set.Flush(numSets, backing)).To(Equal(0))
	})
})
