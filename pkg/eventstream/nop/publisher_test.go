package nop_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindneox/recall/pkg/eventstream"
	"github.com/mindneox/recall/pkg/eventstream/nop"
	"github.com/mindneox/recall/pkg/logger"
)

var _ = Describe("Publisher", func() {
	It("rejects nil events", func() {
		p := nop.NewPublisher(nil)
		Expect(p.PublishTurn(context.Background(), nil)).To(MatchError(eventstream.ErrNilTurnEvent))
	})

	It("drops events and notes them at debug level", func() {
		var buf bytes.Buffer
		p := nop.NewPublisher(logger.New(logger.WithWriter(&buf), logger.WithDebug(true), logger.WithJSON(true)))

		event := eventstream.NewTurnRecordedEvent(
			eventstream.EventSource{Service: "recall"},
			eventstream.TurnPayload{UserID: "alice"},
		)
		Expect(p.PublishTurn(context.Background(), event)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring(event.EventID))
		Expect(buf.String()).To(ContainSubstring(`"user_id":"alice"`))
	})

	It("closes successfully", func() {
		Expect(nop.NewPublisher(nil).Close()).To(Succeed())
	})
})
