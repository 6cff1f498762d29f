package eventstream_test

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindneox/recall/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("stamps schema, type and id", func() {
		event := eventstream.NewTurnRecordedEvent(
			eventstream.EventSource{Service: "recall", Model: "mistral"},
			eventstream.TurnPayload{UserID: "user-1", SessionID: "s1", UserMessage: "hello"},
		)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal("recall.turn.recorded"))
		Expect(strings.HasPrefix(event.EventID, "evt_")).To(BeTrue())
		Expect(event.EmittedAt.IsZero()).To(BeFalse())
	})

	It("marshals with the expected top-level keys", func() {
		event := eventstream.NewTurnRecordedEvent(
			eventstream.EventSource{Service: "recall"},
			eventstream.TurnPayload{UserID: "user-1", SessionID: "s1"},
		)

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(payload, &decoded)).To(Succeed())
		Expect(decoded).To(HaveKey("schema_version"))
		Expect(decoded).To(HaveKey("event_type"))
		Expect(decoded).To(HaveKey("event_id"))
		Expect(decoded).To(HaveKey("emitted_at"))
		Expect(decoded).To(HaveKey("source"))
		Expect(decoded).To(HaveKey("turn"))

		turn := decoded["turn"].(map[string]any)
		Expect(turn).To(HaveKeyWithValue("user_id", "user-1"))
		Expect(turn).NotTo(HaveKey("keywords"))
	})
})
