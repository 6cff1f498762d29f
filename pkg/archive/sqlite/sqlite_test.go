package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindneox/recall/pkg/archive"
	"github.com/mindneox/recall/pkg/archive/sqlite"
)

var _ = Describe("Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	It("implements archive.Driver", func() {
		var _ archive.Driver = driver
	})

	It("lists records newest first", func() {
		first := archive.NewRecord("user-1", "s1", "hello there", "hi!", false)
		first.Timestamp = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
		second := archive.NewRecord("user-1", "s1", "tell me about python", "sure", true)
		second.Timestamp = first.Timestamp.Add(time.Minute)
		second.Model = "mistral"

		Expect(driver.Save(ctx, first)).To(Succeed())
		Expect(driver.Save(ctx, second)).To(Succeed())

		records, err := driver.List(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].ID).To(Equal(second.ID))
		Expect(records[0].Model).To(Equal("mistral"))
		Expect(records[0].HasContext).To(BeTrue())
		Expect(records[0].Timestamp).To(BeTemporally("==", second.Timestamp))
		Expect(records[1].ID).To(Equal(first.ID))
		Expect(records[1].UserMessage).To(Equal("hello there"))
		Expect(records[1].HasContext).To(BeFalse())

		n, err := driver.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(2)))
	})

	It("honors the limit", func() {
		for range 3 {
			Expect(driver.Save(ctx, archive.NewRecord("u", "s", "m", "r", false))).To(Succeed())
		}

		records, err := driver.List(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))

		records, err = driver.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})

	It("ignores duplicate saves", func() {
		rec := archive.NewRecord("u", "s", "m", "r", false)
		Expect(driver.Save(ctx, rec)).To(Succeed())
		Expect(driver.Save(ctx, rec)).To(Succeed())

		n, err := driver.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))
	})

	It("gets and deletes a record by id", func() {
		rec := archive.NewRecord("clerk_1", "s", "hello", "hi", true)
		rec.UserEmail = "ada@example.com"
		rec.UserName = "Ada"
		Expect(driver.Save(ctx, rec)).To(Succeed())

		got, err := driver.Get(ctx, rec.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.UserEmail).To(Equal("ada@example.com"))
		Expect(got.UserName).To(Equal("Ada"))
		Expect(got.Timestamp).To(BeTemporally("==", rec.Timestamp))

		Expect(driver.Delete(ctx, rec.ID)).To(Succeed())

		_, err = driver.Get(ctx, rec.ID)
		Expect(err).To(MatchError(archive.ErrNotFound))
		Expect(driver.Delete(ctx, rec.ID)).To(MatchError(archive.ErrNotFound))
	})

	It("lists one user's records newest first", func() {
		base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
		for i, userID := range []string{"a", "b", "a", "a"} {
			rec := archive.NewRecord(userID, "s", "m", "r", false)
			rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
			Expect(driver.Save(ctx, rec)).To(Succeed())
		}

		records, err := driver.ListByUser(ctx, "a", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].Timestamp).To(BeTemporally("==", base.Add(3*time.Minute)))
		Expect(records[1].Timestamp).To(BeTemporally("==", base.Add(2*time.Minute)))

		records, err = driver.ListByUser(ctx, "nobody", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).NotTo(BeNil())
		Expect(records).To(BeEmpty())
	})

	It("aggregates stats", func() {
		stats, err := driver.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(archive.Stats{}))

		Expect(driver.Save(ctx, archive.NewRecord("a", "s", "m", "r", true))).To(Succeed())
		Expect(driver.Save(ctx, archive.NewRecord("a", "s", "m", "r", false))).To(Succeed())
		Expect(driver.Save(ctx, archive.NewRecord("b", "s", "m", "r", true))).To(Succeed())

		stats, err = driver.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(archive.Stats{
			TotalConversations: 3,
			TotalMessages:      6,
			UniqueUsers:        2,
			WithContext:        2,
		}))
	})

	It("adds the identity columns to an older database", func() {
		path := filepath.Join(GinkgoT().TempDir(), "old.db")
		raw, err := sql.Open("sqlite3", path)
		Expect(err).NotTo(HaveOccurred())
		_, err = raw.Exec(`CREATE TABLE conversations (
			id TEXT PRIMARY KEY, user_id TEXT NOT NULL, session_id TEXT NOT NULL,
			user_message TEXT NOT NULL, assistant_response TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '', has_context INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL)`)
		Expect(err).NotTo(HaveOccurred())
		_, err = raw.Exec(`INSERT INTO conversations VALUES ('old', 'u', 's', 'm', 'r', '', 0, 1)`)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw.Close()).To(Succeed())

		d, err := sqlite.NewDriver(path)
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()

		got, err := d.Get(ctx, "old")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.UserEmail).To(BeEmpty())
	})

	It("persists across reopen on disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "recall.db")
		d, err := sqlite.NewDriver(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Save(ctx, archive.NewRecord("u", "s", "m", "r", false))).To(Succeed())
		Expect(d.Close()).To(Succeed())

		d, err = sqlite.NewDriver(path)
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()
		Expect(d.Ping(ctx)).To(Succeed())

		n, err := d.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))
	})
})
