package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindneox/recall/pkg/kvstore"
	"github.com/mindneox/recall/pkg/kvstore/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		now    time.Time
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		driver = inmemory.NewDriver(inmemory.WithClock(func() time.Time { return now }))
		ctx = context.Background()
	})

	It("implements kvstore.Store", func() {
		var _ kvstore.Store = driver
	})

	Describe("lists", func() {
		It("keeps the newest maxLen entries first", func() {
			for _, v := range []string{"1", "2", "3", "4"} {
				Expect(driver.PushCapped(ctx, "list", v, 3, 0)).To(Succeed())
			}

			values, err := driver.Range(ctx, "list", 0, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"4", "3", "2"}))
		})

		It("applies LRANGE index rules", func() {
			for _, v := range []string{"1", "2", "3", "4", "5"} {
				Expect(driver.PushCapped(ctx, "list", v, 0, 0)).To(Succeed())
			}

			values, err := driver.Range(ctx, "list", 0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"5", "4"}))

			values, err = driver.Range(ctx, "list", -2, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"2", "1"}))

			values, err = driver.Range(ctx, "list", 3, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"2", "1"}))

			values, err = driver.Range(ctx, "list", 10, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(BeEmpty())
		})

		It("returns an empty slice for a missing key", func() {
			values, err := driver.Range(ctx, "missing", 0, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(BeEmpty())
		})

		It("expires the whole key and refreshes on write", func() {
			Expect(driver.PushCapped(ctx, "list", "a", 0, time.Hour)).To(Succeed())
			now = now.Add(50 * time.Minute)
			Expect(driver.PushCapped(ctx, "list", "b", 0, time.Hour)).To(Succeed())
			Expect(driver.TTL("list")).To(Equal(time.Hour))

			now = now.Add(59 * time.Minute)
			values, err := driver.Range(ctx, "list", 0, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"b", "a"}))

			now = now.Add(time.Minute)
			values, err = driver.Range(ctx, "list", 0, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(BeEmpty())
		})
	})

	Describe("sorted sets", func() {
		It("counts occurrences and orders ties by descending member", func() {
			Expect(driver.IncrMembers(ctx, "set", []string{"apple", "cherry", "banana", "apple"}, 0)).To(Succeed())

			top, err := driver.TopMembers(ctx, "set", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(top).To(Equal([]kvstore.ScoredMember{
				{Member: "apple", Score: 2},
				{Member: "cherry", Score: 1},
				{Member: "banana", Score: 1},
			}))
		})

		It("limits the result", func() {
			Expect(driver.IncrMembers(ctx, "set", []string{"apple", "cherry", "banana"}, 0)).To(Succeed())

			top, err := driver.TopMembers(ctx, "set", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(top).To(HaveLen(2))

			top, err = driver.TopMembers(ctx, "set", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(top).To(BeEmpty())
		})

		It("expires the set", func() {
			Expect(driver.IncrMembers(ctx, "set", []string{"apple"}, time.Hour)).To(Succeed())
			now = now.Add(time.Hour)

			top, err := driver.TopMembers(ctx, "set", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(top).To(BeEmpty())
		})

		It("rejects list operations on a sorted set key", func() {
			Expect(driver.IncrMembers(ctx, "set", []string{"apple"}, 0)).To(Succeed())
			Expect(driver.PushCapped(ctx, "set", "a", 0, 0)).NotTo(Succeed())
		})
	})

	It("deletes keys idempotently", func() {
		Expect(driver.PushCapped(ctx, "list", "a", 0, 0)).To(Succeed())
		Expect(driver.Delete(ctx, "list", "missing")).To(Succeed())
		Expect(driver.Delete(ctx, "list")).To(Succeed())

		values, err := driver.Range(ctx, "list", 0, -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(BeEmpty())
	})

	It("reports ErrUnavailable once closed", func() {
		Expect(driver.Ping(ctx)).To(Succeed())
		Expect(driver.Close()).To(Succeed())

		Expect(driver.Ping(ctx)).To(MatchError(kvstore.ErrUnavailable))
		Expect(driver.PushCapped(ctx, "list", "a", 0, 0)).To(MatchError(kvstore.ErrUnavailable))
		_, err := driver.TopMembers(ctx, "set", 5)
		Expect(err).To(MatchError(kvstore.ErrUnavailable))
	})
})
