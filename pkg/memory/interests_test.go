package memory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindneox/recall/pkg/kvstore"
	"github.com/mindneox/recall/pkg/kvstore/inmemory"
	"github.com/mindneox/recall/pkg/memory"
)

var _ = Describe("Tokenize", func() {
	It("lowercases and drops tokens of four characters or fewer", func() {
		Expect(memory.Tokenize("Tell me MORE about Kubernetes clusters", 5)).
			To(Equal([]string{"about", "kubernetes", "clusters"}))
	})

	It("keeps five character tokens and drops four character ones", func() {
		Expect(memory.Tokenize("rust there code about", 5)).To(Equal([]string{"there", "about"}))
	})

	It("keeps duplicate occurrences", func() {
		Expect(memory.Tokenize("hello hello world", 5)).To(Equal([]string{"hello", "hello", "world"}))
	})

	It("counts characters rather than bytes", func() {
		Expect(memory.Tokenize("café naïve", 5)).To(Equal([]string{"naïve"}))
	})

	It("splits on any whitespace", func() {
		Expect(memory.Tokenize("  python\tgolang\nrustacean  ", 5)).To(Equal([]string{"python", "golang", "rustacean"}))
	})

	It("returns nothing for empty text", func() {
		Expect(memory.Tokenize("", 5)).To(BeEmpty())
	})
})

var _ = Describe("InterestModel", func() {
	var (
		store     *inmemory.Driver
		interests *memory.InterestModel
		ctx       context.Context
	)

	BeforeEach(func() {
		store = inmemory.NewDriver()
		interests = memory.NewInterestModel(store, memory.DefaultLimits())
		ctx = context.Background()
	})

	It("ranks the scenario keywords by frequency", func() {
		for _, text := range []string{"machine learning basics", "more machine learning", "python programming"} {
			_, err := interests.RecordTokens(ctx, "u1", text)
			Expect(err).NotTo(HaveOccurred())
		}

		top, err := interests.TopKeywords(ctx, "u1", 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(top).To(Equal([]memory.Keyword{
			{Keyword: "machine", Frequency: 2},
			{Keyword: "learning", Frequency: 2},
			{Keyword: "python", Frequency: 1},
		}))
	})

	It("doubles every count when the same text is replayed", func() {
		text := "distributed systems distributed consensus"
		_, err := interests.RecordTokens(ctx, "u1", text)
		Expect(err).NotTo(HaveOccurred())
		before, err := interests.TopKeywords(ctx, "u1", 10)
		Expect(err).NotTo(HaveOccurred())

		_, err = interests.RecordTokens(ctx, "u1", text)
		Expect(err).NotTo(HaveOccurred())
		after, err := interests.TopKeywords(ctx, "u1", 10)
		Expect(err).NotTo(HaveOccurred())

		Expect(after).To(HaveLen(len(before)))
		counts := map[string]int64{}
		for _, k := range before {
			counts[k.Keyword] = k.Frequency
		}
		for _, k := range after {
			Expect(k.Frequency).To(Equal(2 * counts[k.Keyword]))
		}
	})

	It("never returns short tokens and respects the limit and order", func() {
		texts := []string{
			"the quick brown foxes jumped over lazy dogs",
			"a an of to in is it be as at so we he by or",
			"brown brown brown quick",
		}
		for _, text := range texts {
			_, err := interests.RecordTokens(ctx, "u1", text)
			Expect(err).NotTo(HaveOccurred())
		}

		top, err := interests.TopKeywords(ctx, "u1", 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(top)).To(BeNumerically("<=", 3))
		for i, k := range top {
			Expect(len([]rune(k.Keyword))).To(BeNumerically(">", 4))
			if i > 0 {
				Expect(k.Frequency).To(BeNumerically("<=", top[i-1].Frequency))
			}
		}
		Expect(top[0]).To(Equal(memory.Keyword{Keyword: "brown", Frequency: 4}))
	})

	It("records nothing for text without long tokens", func() {
		tokens, err := interests.RecordTokens(ctx, "u1", "hi you all")
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(BeEmpty())

		top, err := interests.TopKeywords(ctx, "u1", 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(top).To(BeEmpty())
	})

	It("refreshes the 30 day expiration", func() {
		_, err := interests.RecordTokens(ctx, "u1", "golang")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.TTL(memory.ContextKey("u1"))).To(BeNumerically("~", 30*24*time.Hour, time.Second))
	})

	It("deletes the set idempotently", func() {
		_, err := interests.RecordTokens(ctx, "u1", "golang")
		Expect(err).NotTo(HaveOccurred())

		Expect(interests.DeleteContext(ctx, "u1")).To(Succeed())
		Expect(interests.DeleteContext(ctx, "u1")).To(Succeed())

		top, err := interests.TopKeywords(ctx, "u1", 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(top).To(BeEmpty())
	})

	It("rejects a blank user id", func() {
		_, err := interests.RecordTokens(ctx, "", "golang")
		Expect(err).To(MatchError(memory.ErrInvalidUserID))
	})

	It("reports an unavailable store with an empty result", func() {
		Expect(store.Close()).To(Succeed())

		top, err := interests.TopKeywords(ctx, "u1", 5)
		Expect(err).To(MatchError(kvstore.ErrUnavailable))
		Expect(top).To(BeEmpty())
	})
})
