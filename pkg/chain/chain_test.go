package chain_test

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	godigest "github.com/opencontainers/go-digest"

	"github.com/papercomputeco/seclist/pkg/chain"
	"github.com/papercomputeco/seclist/pkg/digest"
)

var _ = Describe("Chain", func() {
	var c *chain.Chain

	BeforeEach(func() {
		c = chain.New(spell)
	})

	Describe("New", func() {
		It("starts empty and valid", func() {
			Expect(c.Len()).To(Equal(0))
			Expect(c.Head()).To(BeNil())
			Expect(c.HeadDigest()).To(BeEmpty())
			Expect(c.Values()).To(BeEmpty())
			Expect(c.IsValid()).To(BeTrue())
		})

		It("falls back to the canonical digester", func() {
			c := chain.New(nil)
			c.Add("a")

			Expect(c.HeadDigest()).To(Equal(digest.Canonical.Digest("a")))
		})
	})

	Describe("Add", func() {
		It("prepends values", func() {
			c.Add("c")
			c.Add("b")
			c.Add("a")

			Expect(c.Values()).To(Equal([]string{"a", "b", "c"}))
			Expect(c.Len()).To(Equal(3))
			Expect(c.IsValid()).To(BeTrue())
		})

		It("leaves existing digests untouched", func() {
			c.Add("a")
			before := c.HeadDigest()
			c.Add("b")

			Expect(c.Head().Next().Digest()).To(Equal(before))
			Expect(c.HeadDigest()).To(Equal(godigest.Digest("h(bh(a))")))
		})

		It("gives equal values at different positions different digests", func() {
			c.Add("same")
			c.Add("same")
			c.Add("same")

			entries := c.Entries()
			Expect(entries[0].Digest).NotTo(Equal(entries[1].Digest))
			Expect(entries[1].Digest).NotTo(Equal(entries[2].Digest))
		})
	})

	Describe("Insert", func() {
		It("behaves like Add at index 0", func() {
			c.Add("b")
			Expect(c.Insert(0, "a")).To(Succeed())

			other := chain.New(spell)
			other.Add("b")
			other.Add("a")

			Expect(c.Entries()).To(Equal(other.Entries()))
		})

		It("creates a single node chain when inserting at 0 into an empty chain", func() {
			Expect(c.Insert(0, "v")).To(Succeed())

			Expect(c.Len()).To(Equal(1))
			Expect(c.HeadDigest()).To(Equal(godigest.Digest("h(v)")))
		})

		It("appends a new tail at index Len()", func() {
			c.Add("a")
			c.Add("b")
			Expect(c.Insert(2, "z")).To(Succeed())

			tail, err := c.Get(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(tail.Value()).To(Equal("z"))
			Expect(tail.HasNext()).To(BeFalse())
			Expect(tail.Digest()).To(Equal(godigest.Digest("h(z)")))
			Expect(c.Values()).To(Equal([]string{"b", "a", "z"}))
			Expect(c.IsValid()).To(BeTrue())
		})

		It("places the value in the middle and rehashes predecessors", func() {
			c.Add("c")
			c.Add("a")
			Expect(c.Insert(1, "b")).To(Succeed())

			Expect(c.Values()).To(Equal([]string{"a", "b", "c"}))
			Expect(c.HeadDigest()).To(Equal(godigest.Digest("h(ah(bh(c)))")))
			Expect(c.IsValid()).To(BeTrue())
		})

		It("rejects negative indexes without touching the chain", func() {
			c.Add("a")
			before := c.Entries()
			err := c.Insert(-1, "x")
			Expect(c.Entries()).To(Equal(before))

			var rangeErr chain.ErrIndexOutOfRange
			Expect(errors.As(err, &rangeErr)).To(BeTrue())
			Expect(rangeErr.Op).To(Equal("insert"))
			Expect(rangeErr.Index).To(Equal(-1))
		})
	})

	Describe("Remove", func() {
		BeforeEach(func() {
			c.Add("c")
			c.Add("b")
			c.Add("a")
		})

		It("removes the head without rehashing", func() {
			second := c.Head().Next().Digest()
			Expect(c.Remove(0)).To(Succeed())

			Expect(c.Values()).To(Equal([]string{"b", "c"}))
			Expect(c.HeadDigest()).To(Equal(second))
		})

		It("removes a middle node and rehashes predecessors", func() {
			Expect(c.Remove(1)).To(Succeed())

			Expect(c.Values()).To(Equal([]string{"a", "c"}))
			Expect(c.Head().Next().HasNext()).To(BeFalse())
			Expect(c.HeadDigest()).To(Equal(godigest.Digest("h(ah(c))")))
			Expect(c.IsValid()).To(BeTrue())
		})

		It("removes the tail", func() {
			Expect(c.Remove(2)).To(Succeed())

			Expect(c.Values()).To(Equal([]string{"a", "b"}))
			Expect(c.HeadDigest()).To(Equal(godigest.Digest("h(ah(b))")))
		})

		It("rejects indexes past the tail", func() {
			before := c.Entries()
			err := c.Remove(3)

			var rangeErr chain.ErrIndexOutOfRange
			Expect(errors.As(err, &rangeErr)).To(BeTrue())
			Expect(rangeErr.Length).To(Equal(3))
			Expect(c.Entries()).To(Equal(before))
		})

		It("rejects negative indexes", func() {
			before := c.Entries()

			Expect(c.Remove(-1)).To(MatchError(ContainSubstring("out of range")))
			Expect(c.Entries()).To(Equal(before))
		})

		It("reports an empty chain", func() {
			empty := chain.New(spell)
			err := empty.Remove(0)

			var emptyErr chain.ErrEmptyChain
			Expect(errors.As(err, &emptyErr)).To(BeTrue())
			Expect(err).To(MatchError("remove: chain is empty"))

			var rangeErr chain.ErrIndexOutOfRange
			Expect(errors.As(err, &rangeErr)).To(BeTrue())
		})
	})

	Describe("Get", func() {
		It("walks to the requested index", func() {
			c.Add("b")
			c.Add("a")

			n, err := c.Get(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Value()).To(Equal("b"))
		})

		It("fails on overrun", func() {
			c.Add("a")

			_, err := c.Get(1)
			var rangeErr chain.ErrIndexOutOfRange
			Expect(errors.As(err, &rangeErr)).To(BeTrue())
			Expect(rangeErr.Op).To(Equal("get"))
		})

		It("fails on an empty chain", func() {
			_, err := c.Get(0)
			var emptyErr chain.ErrEmptyChain
			Expect(errors.As(err, &emptyErr)).To(BeTrue())
		})
	})

	Describe("All", func() {
		It("stops when the consumer stops", func() {
			c.Add("c")
			c.Add("b")
			c.Add("a")

			var seen []string
			for i, n := range c.All() {
				seen = append(seen, n.Value())
				if i == 1 {
					break
				}
			}
			Expect(seen).To(Equal([]string{"a", "b"}))
		})
	})

	Describe("walkthrough", func() {
		It("keeps every digest consistent through add, insert and remove", func() {
			c := chain.New(digest.Canonical)

			c.Add("a")
			digestA := digest.Canonical.Digest("a")
			Expect(c.HeadDigest()).To(Equal(digestA))

			c.Add("b")
			digestB := digest.Canonical.Digest("b" + digestA.String())
			Expect(c.Values()).To(Equal([]string{"b", "a"}))
			Expect(c.HeadDigest()).To(Equal(digestB))

			Expect(c.Insert(1, "c")).To(Succeed())
			digestC := digest.Canonical.Digest("c" + digestA.String())
			Expect(c.Values()).To(Equal([]string{"b", "c", "a"}))
			middle, err := c.Get(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(middle.Digest()).To(Equal(digestC))
			Expect(c.HeadDigest()).To(Equal(digest.Canonical.Digest("b" + digestC.String())))
			Expect(c.IsValid()).To(BeTrue())

			Expect(c.Remove(1)).To(Succeed())
			Expect(c.Values()).To(Equal([]string{"b", "a"}))
			Expect(c.HeadDigest()).To(Equal(digestB))
			Expect(c.IsValid()).To(BeTrue())
		})

		It("rejects out of range indexes on a chain of length 2 and appends at 2", func() {
			c.Add("a")
			c.Add("b")

			before := c.Entries()

			var rangeErr chain.ErrIndexOutOfRange
			Expect(errors.As(c.Remove(5), &rangeErr)).To(BeTrue())
			Expect(c.Entries()).To(Equal(before))
			Expect(errors.As(c.Insert(3, "x"), &rangeErr)).To(BeTrue())
			Expect(c.Entries()).To(Equal(before))
			Expect(c.IsValid()).To(BeTrue())

			Expect(c.Insert(2, "x")).To(Succeed())
			Expect(c.Values()).To(Equal([]string{"b", "a", "x"}))
		})
	})

	Describe("round trip", func() {
		It("restores the chain after Add then Remove(0)", func() {
			c.Add("c")
			c.Add("b")
			c.Add("a")
			before := c.Entries()

			c.Add("tmp")
			Expect(c.Remove(0)).To(Succeed())

			Expect(c.Entries()).To(Equal(before))
		})
	})

	Describe("random operation sequences", func() {
		It("stays valid and matches a slice model after every operation", func() {
			rng := rand.New(rand.NewSource(42))
			c := chain.New(digest.Canonical)
			model := []string{}

			for step := 0; step < 500; step++ {
				value := string(rune('a' + rng.Intn(26)))

				switch op := rng.Intn(3); {
				case op == 0:
					c.Add(value)
					model = append([]string{value}, model...)
				case op == 1:
					i := rng.Intn(len(model) + 1)
					Expect(c.Insert(i, value)).To(Succeed())
					model = append(model[:i], append([]string{value}, model[i:]...)...)
				case len(model) > 0:
					i := rng.Intn(len(model))
					Expect(c.Remove(i)).To(Succeed())
					model = append(model[:i], model[i+1:]...)
				}

				Expect(c.Len()).To(Equal(len(model)))
				Expect(c.Values()).To(Equal(model))
				Expect(c.IsValid()).To(BeTrue())
			}
		})
	})
})
