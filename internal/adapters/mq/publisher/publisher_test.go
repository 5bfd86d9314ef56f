package publisher_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/talentflow/internal/adapters/mq/publisher"
	"github.com/okian/talentflow/internal/domain/model"
)

func TestMessage(t *testing.T) {
	Convey("Given a transition event", t, func() {
		ev := model.TransitionEvent{
			ID:             "6d1f0b8e-0000-5000-8000-000000000001",
			ProfileURN:     "urn:p:1",
			FromCompanyURN: "urn:li:fs_company:42",
			ToCompanyURN:   "name:acme inc.",
			Date:           time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
		}

		Convey("Then it is encoded as a persistent JSON message", func() {
			msg, err := publisher.Message(ev)
			So(err, ShouldBeNil)
			So(msg.ContentType, ShouldEqual, "application/json")
			So(msg.DeliveryMode, ShouldEqual, amqp.Persistent)
			So(msg.MessageId, ShouldEqual, ev.ID)

			var back map[string]any
			So(json.Unmarshal(msg.Body, &back), ShouldBeNil)
			So(back["transition_date"], ShouldEqual, "2022-05-01T00:00:00Z")
		})

		Convey("Then the routing key has exactly three dot separated words", func() {
			So(publisher.RoutingKey(ev), ShouldEqual, "transition.urn:li:fs_company:42.name:acme_inc_")
		})
	})
}

func TestNoop(t *testing.T) {
	Convey("Given the noop publisher", t, func() {
		var p publisher.Publisher = publisher.Noop{}
		n, err := p.Publish(context.Background(), make([]model.TransitionEvent, 3))
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 3)
		So(p.Close(), ShouldBeNil)
	})
}
