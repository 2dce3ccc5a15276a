package core

import "testing"

// TopicEvent constructor & helper method tests
func TestTopicEvent_Constructor(t *testing.T) {
	ev := NewTopicEvent(EventTypeTopicActivated, "intake", "conv-1", map[string]any{"score": 0.9})
	if ev.EventID == "" || ev.Timestamp.IsZero() {
		t.Fatalf("NewTopicEvent did not initialize identity fields: %+v", ev)
	}
	if ev.EventType != EventTypeTopicActivated || ev.TopicName != "intake" || ev.ConversationID != "conv-1" {
		t.Fatalf("NewTopicEvent field mismatch: %+v", ev)
	}

	corr := ev.WithCorrelation("inv-1")
	if corr.CorrelationID != "inv-1" {
		t.Fatalf("WithCorrelation failed: %+v", corr)
	}
	if ev.CorrelationID != "" {
		t.Fatal("WithCorrelation mutated the original event")
	}
}

func TestNewID_Unique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty ids, got %q %q", a, b)
	}
}
