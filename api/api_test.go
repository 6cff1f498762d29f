package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindneox/recall/pkg/archive"
	"github.com/mindneox/recall/pkg/chat"
	"github.com/mindneox/recall/pkg/kvstore/inmemory"
	"github.com/mindneox/recall/pkg/logger"
	"github.com/mindneox/recall/pkg/memory"
	"github.com/mindneox/recall/pkg/metrics"
	testutils "github.com/mindneox/recall/pkg/utils/test"
)

var _ = Describe("Server", func() {
	var (
		ctx       context.Context
		store     *inmemory.Driver
		svc       *memory.Service
		generator *testutils.MockGenerator
		archiver  *testutils.MockArchive
		deps      Dependencies
		server    *Server
	)

	do := func(method, target, body string) (int, map[string]any) {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, r)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)
		return resp.StatusCode, decoded
	}

	record := func(userID, sessionID, text string) {
		res := svc.Record(ctx, userID, sessionID, text, "reply to "+text)
		Expect(res.OK()).To(BeTrue())
	}

	JustBeforeEach(func() {
		var err error
		server, err = NewServer(Config{ListenAddr: ":0"}, deps, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewDriver()
		svc = memory.NewService(memory.Config{Store: store, Logger: logger.Nop()})
		generator = testutils.NewMockGenerator("Sure thing.")
		archiver = testutils.NewMockArchive()
		deps = Dependencies{
			Memory:    svc,
			Chat:      chat.NewHandler(chat.Config{Memory: svc, Generator: generator}),
			Generator: generator,
			Archive:   archiver,
			Metrics:   metrics.New(),
		}
	})

	It("requires a memory service", func() {
		_, err := NewServer(Config{}, Dependencies{}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("memory service is required")))
	})

	It("answers ping", func() {
		code, _ := do(http.MethodGet, "/ping", "")
		Expect(code).To(Equal(http.StatusOK))
	})

	Describe("GET /health", func() {
		It("reports every service", func() {
			code, body := do(http.MethodGet, "/health", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("status", "healthy"))
			Expect(body["services"]).To(And(
				HaveKeyWithValue("memory", "ok"),
				HaveKeyWithValue("llm", "ok"),
				HaveKeyWithValue("archive", "ok"),
				HaveKeyWithValue("events", "disabled"),
			))
		})

		It("is degraded when the store is down", func() {
			Expect(store.Close()).To(Succeed())

			_, body := do(http.MethodGet, "/health", "")
			Expect(body).To(HaveKeyWithValue("status", "degraded"))
		})
	})

	Describe("GET /v1/users/:user_id/history", func() {
		BeforeEach(func() {
			record("user-1", "s1", "first")
			record("user-1", "s1", "second")
			record("user-1", "s1", "third")
		})

		It("returns turns newest first", func() {
			code, body := do(http.MethodGet, "/v1/users/user-1/history", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("status", "success"))
			Expect(body).To(HaveKeyWithValue("count", BeNumerically("==", 3)))

			history := body["history"].([]any)
			Expect(history[0]).To(HaveKeyWithValue("user_message", "third"))
			Expect(history[2]).To(HaveKeyWithValue("user_message", "first"))
		})

		It("honors the limit", func() {
			_, body := do(http.MethodGet, "/v1/users/user-1/history?limit=2", "")
			Expect(body).To(HaveKeyWithValue("count", BeNumerically("==", 2)))
		})

		It("is empty for an unknown user", func() {
			code, body := do(http.MethodGet, "/v1/users/nobody/history", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("count", BeNumerically("==", 0)))
			Expect(body["history"]).To(BeEmpty())
		})

		It("degrades but answers when the store is down", func() {
			Expect(store.Close()).To(Succeed())

			code, body := do(http.MethodGet, "/v1/users/user-1/history", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("status", "degraded"))
			Expect(body).To(HaveKey("error"))
		})
	})

	Describe("GET /v1/users/:user_id/predict", func() {
		It("greets a new user generically", func() {
			_, body := do(http.MethodGet, "/v1/users/new-user/predict", "")
			Expect(body).To(HaveKeyWithValue("greeting", memory.GenericGreeting))
			Expect(body["top_keywords"]).To(BeEmpty())
		})

		It("welcomes a returning user back to their topics", func() {
			record("user-1", "s1", "machine learning")
			record("user-1", "s1", "python for machine learning")

			_, body := do(http.MethodGet, "/v1/users/user-1/predict", "")
			Expect(body).To(HaveKeyWithValue("greeting",
				"Welcome back! Would you like to continue discussing machine, learning, python?"))
		})
	})

	Describe("GET /v1/users/:user_id/context", func() {
		It("summarizes the user", func() {
			record("user-1", "s1", "python programming")
			record("user-1", "s2", "python testing")

			_, body := do(http.MethodGet, "/v1/users/user-1/context", "")
			Expect(body).To(HaveKeyWithValue("total_conversations", BeNumerically("==", 2)))

			keywords := body["top_keywords"].([]any)
			Expect(keywords[0]).To(And(
				HaveKeyWithValue("keyword", "python"),
				HaveKeyWithValue("frequency", BeNumerically("==", 2)),
			))
		})
	})

	Describe("DELETE /v1/users/:user_id/history", func() {
		It("forgets history and interests", func() {
			record("user-1", "s1", "python programming")

			code, body := do(http.MethodDelete, "/v1/users/user-1/history", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("status", "success"))

			Expect(svc.History(ctx, "user-1", 20).Value).To(BeEmpty())
			Expect(svc.Interests(ctx, "user-1", 10).Value).To(BeEmpty())
		})
	})

	Describe("GET /v1/sessions/:session_id/messages", func() {
		It("lists the session across users", func() {
			record("user-1", "shared", "hello")
			record("user-2", "shared", "hi")
			record("user-2", "other", "elsewhere")

			_, body := do(http.MethodGet, "/v1/sessions/shared/messages", "")
			Expect(body).To(HaveKeyWithValue("session_id", "shared"))
			Expect(body).To(HaveKeyWithValue("count", BeNumerically("==", 2)))
		})
	})

	Describe("POST /v1/chat", func() {
		It("answers and remembers", func() {
			code, body := do(http.MethodPost, "/v1/chat", `{"message":"hello there","session_id":"s1","user_id":"user-1"}`)
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("response", "Sure thing."))
			Expect(body).To(HaveKeyWithValue("has_context", false))
			Expect(body).To(HaveKeyWithValue("user_id", "user-1"))

			Expect(svc.History(ctx, "user-1", 20).Value).To(HaveLen(1))
		})

		It("rejects an empty message", func() {
			code, body := do(http.MethodPost, "/v1/chat", `{"message":""}`)
			Expect(code).To(Equal(http.StatusBadRequest))
			Expect(body).To(HaveKeyWithValue("error", chat.ErrEmptyMessage.Error()))
		})

		It("rejects a malformed body", func() {
			code, _ := do(http.MethodPost, "/v1/chat", `{"message":`)
			Expect(code).To(Equal(http.StatusBadRequest))
		})

		It("reports an unavailable model", func() {
			generator.Fail = true

			code, _ := do(http.MethodPost, "/v1/chat", `{"message":"hello"}`)
			Expect(code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("GET /v1/conversations", func() {
		It("lists archived turns newest first", func() {
			Expect(archiver.Save(ctx, archive.NewRecord("u", "s", "one", "r", false))).To(Succeed())
			Expect(archiver.Save(ctx, archive.NewRecord("u", "s", "two", "r", true))).To(Succeed())

			code, body := do(http.MethodGet, "/v1/conversations?limit=1", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("count", BeNumerically("==", 1)))
			Expect(body).To(HaveKeyWithValue("total", BeNumerically("==", 2)))

			conversations := body["conversations"].([]any)
			Expect(conversations[0]).To(HaveKeyWithValue("user_message", "two"))
		})

		Context("without an archive", func() {
			BeforeEach(func() {
				deps.Archive = nil
			})

			It("answers 503", func() {
				code, body := do(http.MethodGet, "/v1/conversations", "")
				Expect(code).To(Equal(http.StatusServiceUnavailable))
				Expect(body).To(HaveKeyWithValue("error", archive.ErrNotConfigured.Error()))
			})
		})
	})

	Describe("archived conversations by id", func() {
		var rec archive.Record

		BeforeEach(func() {
			rec = archive.NewRecord("clerk_1", "s", "what is rust", "a language", false)
			rec.UserEmail = "ada@example.com"
			Expect(archiver.Save(ctx, rec)).To(Succeed())
		})

		It("returns one conversation", func() {
			code, body := do(http.MethodGet, "/v1/conversations/"+rec.ID, "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("id", rec.ID))
			Expect(body).To(HaveKeyWithValue("user_message", "what is rust"))
			Expect(body).To(HaveKeyWithValue("user_email", "ada@example.com"))
		})

		It("answers 404 for an unknown id", func() {
			code, body := do(http.MethodGet, "/v1/conversations/nope", "")
			Expect(code).To(Equal(http.StatusNotFound))
			Expect(body).To(HaveKeyWithValue("error", archive.ErrNotFound.Error()))
		})

		It("deletes a conversation", func() {
			code, body := do(http.MethodDelete, "/v1/conversations/"+rec.ID, "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("id", rec.ID))
			Expect(archiver.Records()).To(BeEmpty())

			code, _ = do(http.MethodDelete, "/v1/conversations/"+rec.ID, "")
			Expect(code).To(Equal(http.StatusNotFound))
		})

		Context("without an archive", func() {
			BeforeEach(func() {
				deps.Archive = nil
			})

			DescribeTable("answers 503",
				func(method, target string) {
					code, body := do(method, target, "")
					Expect(code).To(Equal(http.StatusServiceUnavailable))
					Expect(body).To(HaveKeyWithValue("error", archive.ErrNotConfigured.Error()))
				},
				Entry("get", http.MethodGet, "/v1/conversations/any"),
				Entry("delete", http.MethodDelete, "/v1/conversations/any"),
				Entry("per user", http.MethodGet, "/v1/users/u/conversations"),
			)
		})
	})

	Describe("GET /v1/users/:user_id/conversations", func() {
		It("lists only that user's archived turns", func() {
			Expect(archiver.Save(ctx, archive.NewRecord("clerk_1", "s", "first", "r", false))).To(Succeed())
			Expect(archiver.Save(ctx, archive.NewRecord("clerk_2", "s", "other", "r", false))).To(Succeed())
			Expect(archiver.Save(ctx, archive.NewRecord("clerk_1", "s", "second", "r", true))).To(Succeed())

			code, body := do(http.MethodGet, "/v1/users/clerk_1/conversations", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("user_id", "clerk_1"))
			Expect(body).To(HaveKeyWithValue("count", BeNumerically("==", 2)))

			conversations := body["conversations"].([]any)
			Expect(conversations[0]).To(HaveKeyWithValue("user_message", "second"))
			Expect(conversations[1]).To(HaveKeyWithValue("user_message", "first"))
		})

		It("is empty, not null, for a user with no archive", func() {
			code, body := do(http.MethodGet, "/v1/users/nobody/conversations", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("conversations", BeEmpty()))
		})
	})

	Describe("GET /v1/stats", func() {
		It("summarizes the archive", func() {
			Expect(archiver.Save(ctx, archive.NewRecord("u1", "s", "one", "r", false))).To(Succeed())
			Expect(archiver.Save(ctx, archive.NewRecord("u1", "s", "two", "r", true))).To(Succeed())
			Expect(archiver.Save(ctx, archive.NewRecord("u2", "s", "three", "r", true))).To(Succeed())

			code, body := do(http.MethodGet, "/v1/stats", "")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("total_conversations", BeNumerically("==", 3)))
			Expect(body).To(HaveKeyWithValue("total_messages", BeNumerically("==", 6)))
			Expect(body).To(HaveKeyWithValue("unique_users", BeNumerically("==", 2)))
			Expect(body).To(HaveKeyWithValue("with_context", BeNumerically("==", 2)))
			Expect(body).To(HaveKeyWithValue("archive_enabled", true))
			Expect(body).To(HaveKeyWithValue("llm_enabled", true))
			Expect(body).To(HaveKeyWithValue("events_enabled", false))
		})

		Context("without an archive", func() {
			BeforeEach(func() {
				deps.Archive = nil
			})

			It("still answers with zero counts", func() {
				code, body := do(http.MethodGet, "/v1/stats", "")
				Expect(code).To(Equal(http.StatusOK))
				Expect(body).To(HaveKeyWithValue("total_conversations", BeNumerically("==", 0)))
				Expect(body).To(HaveKeyWithValue("archive_enabled", false))
			})
		})
	})

	It("exposes prometheus metrics", func() {
		record("user-1", "s1", "hello")

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring("go_goroutines"))
	})
})
