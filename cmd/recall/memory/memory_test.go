package memorycmder_test

import (
	"bytes"
	"context"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	memorycmder "github.com/mindneox/recall/cmd/recall/memory"
	"github.com/mindneox/recall/pkg/kvstore/redis"
	"github.com/mindneox/recall/pkg/memory"
)

var _ = Describe("Memory command", func() {
	var (
		mr     *miniredis.Miniredis
		out    *bytes.Buffer
		errOut *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := memorycmder.NewMemoryCmd()
		// registered on the root command in the real binary
		cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(errOut)
		cmd.SetArgs(append(args, "--redis-addr", mr.Addr()))
		return cmd.Execute()
	}

	BeforeEach(func() {
		mr = miniredis.RunT(GinkgoT())
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())

		store := redis.NewDriver(redis.Config{Addr: mr.Addr()})
		DeferCleanup(store.Close)

		svc := memory.NewService(memory.Config{Store: store})
		ctx := context.Background()
		Expect(svc.Record(ctx, "user-1", "s1", "machine learning", "Happy to help").OK()).To(BeTrue())
		Expect(svc.Record(ctx, "user-1", "s1", "python for machine learning", "Sure").OK()).To(BeTrue())
	})

	It("has every subcommand", func() {
		cmd := memorycmder.NewMemoryCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("history", "session", "interests", "greeting", "forget"))
	})

	It("prints a user's history", func() {
		Expect(run("history", "user-1")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("(2 turns)"))
		Expect(out.String()).To(ContainSubstring("python for machine learning"))
	})

	It("prints a session", func() {
		Expect(run("session", "s1")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Happy to help"))
	})

	It("prints interests", func() {
		Expect(run("interests", "user-1", "--limit", "2")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("machine"))
		Expect(out.String()).To(ContainSubstring("learning"))
		Expect(out.String()).NotTo(ContainSubstring("python"))
	})

	It("prints the greeting", func() {
		Expect(run("greeting", "user-1")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Welcome back! Would you like to continue discussing machine, learning, python?"))
	})

	It("forgets a user", func() {
		Expect(run("forget", "user-1")).To(Succeed())
		Expect(mr.Exists("user:user-1:history")).To(BeFalse())
		Expect(mr.Exists("user:user-1:context")).To(BeFalse())

		Expect(run("greeting", "user-1")).To(Succeed())
		Expect(out.String()).To(ContainSubstring(memory.GenericGreeting))
	})

	It("keeps stderr quiet without --debug", func() {
		Expect(run("history", "user-1")).To(Succeed())
		Expect(errOut.String()).To(BeEmpty())
	})

	It("logs to stderr with --debug", func() {
		Expect(run("history", "user-1", "--debug")).To(Succeed())
		Expect(errOut.String()).To(ContainSubstring("using redis memory store"))
	})

	It("rejects a blank user id", func() {
		Expect(run("history", " ")).To(MatchError(memory.ErrInvalidUserID))
	})
})
