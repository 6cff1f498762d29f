package servecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/mindneox/recall/cmd/recall/serve"
)

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	DescribeTable("registers flags with config defaults",
		func(name, def string) {
			flag := servecmder.NewServeCmd().Flags().Lookup(name)
			Expect(flag).NotTo(BeNil())
			Expect(flag.DefValue).To(Equal(def))
		},
		Entry("redis address", "redis-addr", "localhost:6379"),
		Entry("memory provider", "memory-provider", "redis"),
		Entry("listen address", "listen", ":8000"),
		Entry("llm target", "llm-target", "http://localhost:11434"),
		Entry("llm model", "llm-model", "mistral"),
		Entry("archive disabled", "archive", ""),
		Entry("events disabled", "events", ""),
		Entry("history limit", "history-limit", "20"),
		Entry("log file off", "log-file", ""),
		Entry("pretty logs", "json-logs", "false"),
	)
})
