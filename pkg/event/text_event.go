package event

import "strconv"

// dropTolerance absorbs float formatting noise when a seed id sits
// exactly on a probability boundary (e.g. "0.70" vs 0.7).
const dropTolerance = 1e-9

// TextEvent is a minimal Event implementation whose seed id doubles as
// its wire payload: a line-delimited batch of TextEvents round-trips as
// the seed ids themselves, which is what the line serializer and the
// scenario tests in spec.md §8 rely on.
//
// Subsampling is opt-in: events constructed with NewTextEvent never
// drop themselves, which models payloads that must always survive
// (e.g. errors). Events constructed with NewSeededTextEvent parse their
// own seed id as a float and drop themselves whenever that float
// exceeds the pass probability, matching the self-configured drop
// probability scenario in spec.md §8 (S5).
type TextEvent struct {
	seedID    string
	index     uint64
	droppable bool
}

// NewTextEvent creates an event that is never dropped by subsampling or
// queue pruning; seedID is also used as its serialized payload.
func NewTextEvent(seedID string) *TextEvent {
	return &TextEvent{seedID: seedID}
}

// NewSeededTextEvent creates an event whose seed id is interpreted as
// its own drop threshold: TryDrop(p, _) drops the event iff the seed id,
// parsed as a float, exceeds p.
func NewSeededTextEvent(seedID string) *TextEvent {
	return &TextEvent{seedID: seedID, droppable: true}
}

// SeedID returns the event's stable identifier.
func (e *TextEvent) SeedID() string { return e.seedID }

// EventIndex returns the index assigned by the batcher, or zero.
func (e *TextEvent) EventIndex() uint64 { return e.index }

// SetEventIndex assigns the batcher-issued index.
func (e *TextEvent) SetEventIndex(idx uint64) { e.index = idx }

// TryDrop implements the self-configured drop probability described in
// spec.md §8 S5: the event drops itself iff its seed id, read as a
// float, is strictly greater than the pass probability.
func (e *TextEvent) TryDrop(passProbability float64, _ DropPass) bool {
	if !e.droppable {
		return false
	}
	seed, err := strconv.ParseFloat(e.seedID, 64)
	if err != nil {
		return false
	}
	return seed > passProbability+dropTolerance
}

// Payload returns the bytes a serializer should write for this event.
// TextEvent's payload is simply its seed id; concrete Event types with
// richer wire formats implement this same method independently (the
// serializer package only requires it via serializer.EncodablePayload, not via
// the core Event contract).
func (e *TextEvent) Payload() []byte { return []byte(e.seedID) }
