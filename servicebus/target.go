package servicebus

import (
	"fmt"

	"github.com/jonwraymond/busprobe/cache"
)

// Kind is the resource kind a probe targets.
type Kind string

const (
	KindQueue Kind = "queue"
	KindTopic Kind = "topic"
)

// Mode is the low-impact operation used to assert liveness.
type Mode string

const (
	// ModePeek peeks at most one message without locking or removing it.
	ModePeek Mode = "peek"
	// ModeSendBatch opens a message batch and never sends it.
	ModeSendBatch Mode = "sendbatch"
	// ModeManagement fetches runtime properties from the management plane.
	ModeManagement Mode = "management"
)

// QueueMode is a Mode valid for queues.
type QueueMode Mode

const (
	QueuePeek       = QueueMode(ModePeek)
	QueueSendBatch  = QueueMode(ModeSendBatch)
	QueueManagement = QueueMode(ModeManagement)
)

// TopicMode is a Mode valid for topics. Topics have no receive side, so
// there is no peek mode.
type TopicMode Mode

const (
	TopicSendBatch  = TopicMode(ModeSendBatch)
	TopicManagement = TopicMode(ModeManagement)
)

// Target is one resource to probe with one mode.
type Target struct {
	kind Kind
	name string
	mode Mode
}

// QueueTarget returns a target probing queue name with mode.
func QueueTarget(name string, mode QueueMode) Target {
	return Target{kind: KindQueue, name: name, mode: Mode(mode)}
}

// TopicTarget returns a target probing topic name with mode.
func TopicTarget(name string, mode TopicMode) Target {
	return Target{kind: KindTopic, name: name, mode: Mode(mode)}
}

func (t Target) Kind() Kind   { return t.kind }
func (t Target) Name() string { return t.name }
func (t Target) Mode() Mode   { return t.mode }

// Validate rejects empty names and modes outside the kind's set.
func (t Target) Validate() error {
	if t.name == "" {
		return ErrInvalidName
	}
	switch {
	case t.kind == KindQueue && (t.mode == ModePeek || t.mode == ModeSendBatch || t.mode == ModeManagement):
		return nil
	case t.kind == KindTopic && (t.mode == ModeSendBatch || t.mode == ModeManagement):
		return nil
	}
	return fmt.Errorf("%w: %q for %s", ErrInvalidMode, t.mode, t.kind)
}

// ResourceKey derives the cache key for the resource-scoped handle. The kind
// and mode are part of the key, so a queue and a topic with the same name, or
// two modes on one queue, never share a handle.
func (t Target) ResourceKey(ck ConnectionKey) string {
	return cache.JoinKey(string(t.kind), string(ck), t.name, string(t.mode))
}

func (t Target) String() string {
	return fmt.Sprintf("%s %q (%s)", t.kind, t.name, t.mode)
}
