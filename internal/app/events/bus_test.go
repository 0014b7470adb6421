package events

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestInProcBus_DeliversToSubscribers(t *testing.T) {
	bus := NewInProcBus(zap.NewNop())
	ch, cancel := bus.Subscribe()
	defer cancel()

	sessionID := primitive.NewObjectID()
	member := primitive.NewObjectID()
	bus.Publish(context.Background(), NewSessionMatched(sessionID, [][]primitive.ObjectID{{member}}, nil))

	evt := <-ch
	if evt.Type != TypeSessionMatched {
		t.Errorf("type: got %q, want %q", evt.Type, TypeSessionMatched)
	}
	if evt.SessionID != sessionID.Hex() {
		t.Errorf("session_id: got %q, want %q", evt.SessionID, sessionID.Hex())
	}
	if len(evt.Groups) != 1 || len(evt.Groups[0]) != 1 || evt.Groups[0][0] != member.Hex() {
		t.Errorf("unexpected groups payload: %+v", evt.Groups)
	}
	if evt.ID == "" {
		t.Error("expected a generated event id")
	}
}

func TestInProcBus_MultipleSubscribers(t *testing.T) {
	bus := NewInProcBus(zap.NewNop())
	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(context.Background(), NewSessionCancelled(primitive.NewObjectID()))

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Type != TypeSessionCancelled {
				t.Errorf("subscriber %d: type %q", i, evt.Type)
			}
		default:
			t.Errorf("subscriber %d: no event delivered", i)
		}
	}
}

func TestInProcBus_CancelStopsDelivery(t *testing.T) {
	bus := NewInProcBus(zap.NewNop())
	ch, cancel := bus.Subscribe()
	cancel()
	// Double cancel must not panic.
	cancel()

	bus.Publish(context.Background(), NewSessionCancelled(primitive.NewObjectID()))

	if _, open := <-ch; open {
		t.Error("expected channel to be closed after cancel")
	}
}

func TestInProcBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewInProcBus(zap.NewNop())
	_, cancel := bus.Subscribe()
	defer cancel()

	// Fill past the buffer; Publish must drop rather than stall.
	for i := 0; i < 100; i++ {
		bus.Publish(context.Background(), NewSessionCancelled(primitive.NewObjectID()))
	}
}
