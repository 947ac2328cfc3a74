package scenario_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/seclist/pkg/chain"
	"github.com/papercomputeco/seclist/pkg/digest"
	"github.com/papercomputeco/seclist/pkg/scenario"
)

var _ = Describe("Run", func() {
	It("applies every step and records chain state", func() {
		s, err := scenario.Parse([]byte(walkthrough))
		Expect(err).NotTo(HaveOccurred())

		c := chain.New(digest.Canonical)
		report, err := scenario.Run(c, s, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Failed).To(BeZero())
		Expect(report.Results).To(HaveLen(6))

		digestA := digest.Canonical.Digest("a")
		digestB := digest.Canonical.Digest("b" + digestA.String())
		Expect(report.Results[1].Head).To(Equal(digestB))
		Expect(report.Results[2].Length).To(Equal(3))

		Expect(*report.Results[3].Valid).To(BeTrue())
		Expect(report.Results[4].Head).To(Equal(digestB))
		Expect(*report.Results[5].Valid).To(BeTrue())
		Expect(c.Values()).To(Equal([]string{"b", "a"}))
	})

	const outOfRange = `
[[step]]
op = "add"
value = "a"

[[step]]
op = "add"
value = "b"

[[step]]
op = "remove"
index = 5

[[step]]
op = "insert"
index = 3
value = "x"

[[step]]
op = "insert"
index = 2
value = "x"

[[step]]
op = "get"
index = 2
`

	It("records rejected steps and keeps going", func() {
		s, err := scenario.Parse([]byte(outOfRange))
		Expect(err).NotTo(HaveOccurred())

		c := chain.New(nil)
		report, err := scenario.Run(c, s, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Failed).To(Equal(2))
		var rangeErr chain.ErrIndexOutOfRange
		Expect(errors.As(report.Results[2].Err, &rangeErr)).To(BeTrue())
		Expect(errors.As(report.Results[3].Err, &rangeErr)).To(BeTrue())
		Expect(report.Results[3].Length).To(Equal(2))

		Expect(report.Results[4].Err).NotTo(HaveOccurred())
		Expect(report.Results[5].Node).NotTo(BeNil())
		Expect(report.Results[5].Node.Value).To(Equal("x"))
		Expect(report.Results[5].Node.Digest).To(Equal(digest.Canonical.Digest("x")))
	})

	It("stops at the first rejection when failing fast", func() {
		s, err := scenario.Parse([]byte(outOfRange))
		Expect(err).NotTo(HaveOccurred())

		report, err := scenario.Run(chain.New(nil), s, true)
		Expect(err).To(MatchError(ContainSubstring("step 2 remove(5)")))
		Expect(report.Results).To(HaveLen(3))
		Expect(report.Failed).To(Equal(1))
	})

	It("rejects unvalidated steps without touching the chain", func() {
		c := chain.New(nil)
		s := &scenario.Scenario{Steps: []scenario.Step{
			{Op: scenario.OpVerify},
			{Op: scenario.OpInsert},
		}}

		report, err := scenario.Run(c, s, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failed).To(Equal(1))

		var invalid scenario.ErrInvalidStep
		Expect(errors.As(report.Results[1].Err, &invalid)).To(BeTrue())
		Expect(invalid.Step).To(Equal(1))
		Expect(c.Len()).To(BeZero())
	})
})
