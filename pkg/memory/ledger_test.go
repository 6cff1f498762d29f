package memory_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindneox/recall/pkg/kvstore"
	"github.com/mindneox/recall/pkg/kvstore/inmemory"
	"github.com/mindneox/recall/pkg/memory"
)

var _ = Describe("Ledger", func() {
	var (
		now    time.Time
		store  *inmemory.Driver
		ledger *memory.Ledger
		ctx    context.Context
	)

	BeforeEach(func() {
		now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		store = inmemory.NewDriver(inmemory.WithClock(func() time.Time { return now }))
		ledger = memory.NewLedger(store, memory.DefaultLimits())
		ctx = context.Background()
	})

	appendN := func(userID string, n int) {
		for i := 1; i <= n; i++ {
			_, err := ledger.AppendTurn(ctx, userID, "s1", fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
			Expect(err).NotTo(HaveOccurred())
		}
	}

	It("returns the written turn", func() {
		turn, err := ledger.AppendTurn(ctx, "u1", "s1", "hi", "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(turn.UserMessage).To(Equal("hi"))
		Expect(turn.AssistantResponse).To(Equal("hello"))
		Expect(turn.SessionID).To(Equal("s1"))
		Expect(turn.Timestamp.IsZero()).To(BeFalse())
	})

	It("keeps exactly the 20 most recent turns newest first", func() {
		appendN("u1", 25)

		turns, err := ledger.GetUserHistory(ctx, "u1", 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(20))
		Expect(turns[0].UserMessage).To(Equal("question 25"))
		Expect(turns[19].UserMessage).To(Equal("question 6"))
		for _, t := range turns {
			Expect(t.UserMessage).NotTo(Equal("question 1"))
		}
	})

	It("bounds the read by limit", func() {
		appendN("u1", 5)

		turns, err := ledger.GetUserHistory(ctx, "u1", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(2))
		Expect(turns[0].UserMessage).To(Equal("question 5"))

		turns, err = ledger.GetUserHistory(ctx, "u1", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(BeEmpty())
	})

	It("honors a configured history limit", func() {
		ledger = memory.NewLedger(store, memory.Limits{HistoryLimit: 3})
		appendN("u1", 5)

		turns, err := ledger.GetUserHistory(ctx, "u1", 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(3))
	})

	It("returns an empty history for an unknown user", func() {
		turns, err := ledger.GetUserHistory(ctx, "nobody", 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(BeEmpty())
	})

	It("keeps the full session newest first", func() {
		appendN("u1", 25)

		turns, err := ledger.GetSessionHistory(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(25))
		Expect(turns[0].UserMessage).To(Equal("question 25"))
	})

	It("expires a session after an hour without activity", func() {
		appendN("u1", 2)
		now = now.Add(59 * time.Minute)
		appendN("u1", 1)

		now = now.Add(59 * time.Minute)
		turns, err := ledger.GetSessionHistory(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(3))

		now = now.Add(2 * time.Minute)
		turns, err = ledger.GetSessionHistory(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(BeEmpty())

		history, err := ledger.GetUserHistory(ctx, "u1", 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(3))
	})

	It("expires user history 30 days after the last write", func() {
		appendN("u1", 1)
		Expect(store.TTL(memory.HistoryKey("u1"))).To(Equal(30 * 24 * time.Hour))

		now = now.Add(30 * 24 * time.Hour)
		turns, err := ledger.GetUserHistory(ctx, "u1", 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(BeEmpty())
	})

	It("deletes history idempotently", func() {
		appendN("u1", 3)

		Expect(ledger.DeleteUserHistory(ctx, "u1")).To(Succeed())
		Expect(ledger.DeleteUserHistory(ctx, "u1")).To(Succeed())

		turns, err := ledger.GetUserHistory(ctx, "u1", 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(BeEmpty())
	})

	It("skips malformed records and reports them", func() {
		appendN("u1", 1)
		Expect(store.PushCapped(ctx, memory.HistoryKey("u1"), "{broken", 20, 0)).To(Succeed())
		appendN("u1", 1)

		turns, err := ledger.GetUserHistory(ctx, "u1", 20)
		Expect(err).To(MatchError(memory.ErrMalformedTurn))
		Expect(turns).To(HaveLen(2))

		var malformed *memory.MalformedError
		Expect(err).To(BeAssignableToTypeOf(malformed))
	})

	Context("with invalid identifiers", func() {
		BeforeEach(func() {
			Expect(store.Close()).To(Succeed())
		})

		It("rejects blank ids before touching the store", func() {
			_, err := ledger.AppendTurn(ctx, " ", "s1", "a", "b")
			Expect(err).To(MatchError(memory.ErrInvalidUserID))

			_, err = ledger.AppendTurn(ctx, "u1", "", "a", "b")
			Expect(err).To(MatchError(memory.ErrInvalidSessionID))

			_, err = ledger.GetSessionHistory(ctx, "\t")
			Expect(err).To(MatchError(memory.ErrInvalidSessionID))

			Expect(ledger.DeleteUserHistory(ctx, "")).To(MatchError(memory.ErrInvalidUserID))
		})
	})

	Context("when the store is unavailable", func() {
		It("attempts both writes and reports both failures", func() {
			Expect(store.Close()).To(Succeed())

			_, err := ledger.AppendTurn(ctx, "u1", "s1", "a", "b")
			Expect(err).To(MatchError(kvstore.ErrUnavailable))
			Expect(err.Error()).To(ContainSubstring("user history"))
			Expect(err.Error()).To(ContainSubstring("session history"))

			turns, err := ledger.GetUserHistory(ctx, "u1", 20)
			Expect(err).To(MatchError(kvstore.ErrUnavailable))
			Expect(turns).To(BeEmpty())
		})
	})
})
