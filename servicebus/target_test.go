package servicebus

import (
	"errors"
	"testing"
)

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr error
	}{
		{"queue peek", QueueTarget("orders", QueuePeek), nil},
		{"queue batch", QueueTarget("orders", QueueSendBatch), nil},
		{"queue management", QueueTarget("orders", QueueManagement), nil},
		{"topic batch", TopicTarget("events", TopicSendBatch), nil},
		{"topic management", TopicTarget("events", TopicManagement), nil},
		{"topic peek", TopicTarget("events", TopicMode(ModePeek)), ErrInvalidMode},
		{"unknown mode", QueueTarget("orders", QueueMode("receive")), ErrInvalidMode},
		{"empty name", TopicTarget("", TopicSendBatch), ErrInvalidName},
		{"zero value", Target{}, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.target.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTarget_ResourceKeyDistinct(t *testing.T) {
	ck := FromConnectionString(csA).Key()
	other := FromConnectionString(csA + "2").Key()

	keys := map[string]string{
		"queue peek":          QueueTarget("x", QueuePeek).ResourceKey(ck),
		"queue batch":         QueueTarget("x", QueueSendBatch).ResourceKey(ck),
		"topic batch":         TopicTarget("x", TopicSendBatch).ResourceKey(ck),
		"other connection":    QueueTarget("x", QueuePeek).ResourceKey(other),
		"other name":          QueueTarget("y", QueuePeek).ResourceKey(ck),
		"separator in name":   QueueTarget("x:peek", QueuePeek).ResourceKey(ck),
		"separator in prefix": QueueTarget("x", QueuePeek).ResourceKey(ck + ":x"),
	}

	seen := make(map[string]string)
	for name, key := range keys {
		if prev, ok := seen[key]; ok {
			t.Errorf("%s and %s share key %q", name, prev, key)
		}
		seen[key] = name
	}

	if QueueTarget("x", QueuePeek).ResourceKey(ck) != QueueTarget("x", QueuePeek).ResourceKey(ck) {
		t.Error("ResourceKey() is not deterministic")
	}
}

func TestTarget_Accessors(t *testing.T) {
	target := TopicTarget("events", TopicManagement)
	if target.Kind() != KindTopic || target.Name() != "events" || target.Mode() != ModeManagement {
		t.Errorf("accessors = %s %q %s", target.Kind(), target.Name(), target.Mode())
	}
	if got, want := target.String(), `topic "events" (management)`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
