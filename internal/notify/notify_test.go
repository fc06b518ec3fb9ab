package notify

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHub_FanOut(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	hub := NewHub(logger)

	first := hub.Subscribe()
	second := hub.Subscribe()

	hub.RecordChanged()

	for name, ch := range map[string]<-chan Event{"first": first, "second": second} {
		select {
		case ev := <-ch:
			if ev.Kind != KindRecordChanged {
				t.Errorf("%s subscriber got kind %s, want record-changed", name, ev.Kind)
			}
		case <-time.After(time.Second):
			t.Errorf("%s subscriber got no event", name)
		}
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	hub := NewHub(logger)

	ch := hub.Subscribe()

	// Overflow the subscriber buffer; every publish must return.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.HolidayChanged()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The subscriber still holds a pending event.
	select {
	case ev := <-ch:
		if ev.Kind != KindHolidayChanged {
			t.Errorf("pending event kind = %s, want holiday-changed", ev.Kind)
		}
	default:
		t.Error("no pending event for the slow subscriber")
	}
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	hub := NewHub(logger)

	// Must not panic or block.
	hub.ConfigChanged()
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindRecordChanged, "record-changed"},
		{KindHolidayChanged, "holiday-changed"},
		{KindConfigChanged, "config-changed"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
