package service

import (
	"sort"

	"github.com/avolkov/taskboard/internal/models"
)

// Pair is the unordered pair of participants that implicitly defines a
// conversation. No conversation entity is persisted anywhere; a thread is
// always re-derived from the message set. Construction through NewPair
// canonicalizes the order, so Pair values compare equal regardless of
// which side was named first.
type Pair struct {
	// A and B are the participant ids with A <= B.
	A, B string
}

// NewPair returns the canonical pair for two participant ids. a == b is
// allowed and yields a degenerate single-party pair.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Key returns a stable topic string for the pair, used to address the
// realtime channel.
func (p Pair) Key() string {
	return "dm:" + p.A + ":" + p.B
}

// Self reports whether the pair is a degenerate self-conversation.
func (p Pair) Self() bool {
	return p.A == p.B
}

// Matches reports whether a message belongs to exactly this pair.
func (p Pair) Matches(m models.Message) bool {
	return NewPair(m.SenderID, m.RecipientID) == p
}

func lessByCreated(a, b models.Message) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// SortByCreated orders messages by server-assigned creation time
// ascending, ties broken by id. Delivery or arrival order is never
// trusted; client clock skew makes it meaningless.
func SortByCreated(msgs []models.Message) {
	sort.Slice(msgs, func(i, j int) bool { return lessByCreated(msgs[i], msgs[j]) })
}

// MergeByCreated merges two creation-time-ordered message slices into one,
// preserving the ordering invariant of SortByCreated.
func MergeByCreated(x, y []models.Message) []models.Message {
	merged := make([]models.Message, 0, len(x)+len(y))
	for len(x) > 0 && len(y) > 0 {
		if lessByCreated(x[0], y[0]) {
			merged = append(merged, x[0])
			x = x[1:]
		} else {
			merged = append(merged, y[0])
			y = y[1:]
		}
	}
	merged = append(merged, x...)
	return append(merged, y...)
}

// ProjectPair filters an arbitrary message set down to the thread between
// exactly the pair's participants and sorts it by creation time. This is
// the naive strategy's second half, kept pure so it can be tested without
// any transport.
func ProjectPair(msgs []models.Message, p Pair) []models.Message {
	var thread []models.Message
	for _, m := range msgs {
		if p.Matches(m) {
			thread = append(thread, m)
		}
	}
	SortByCreated(thread)
	return thread
}
