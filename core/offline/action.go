package offline

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind is the closed set of queued action kinds. The kind decides which
// pending collection holds the action, so the gateway's replay and the
// client's sync engine see the same records.
type Kind string

const (
	KindQuizSubmission Kind = "quiz-submission"
	KindProgressUpdate Kind = "progress-update"
	KindGeneric        Kind = "generic"
)

var ErrUnknownKind = errors.New("unknown action kind")

// Collection maps the kind to its pending collection. The switch is
// exhaustive over the known kinds; anything else is rejected.
func (k Kind) Collection() (string, error) {
	switch k {
	case KindQuizSubmission:
		return CollectionPendingQuizSubmissions, nil
	case KindProgressUpdate:
		return CollectionPendingProgressUpdate, nil
	case KindGeneric:
		return CollectionPendingActions, nil
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", string(k))
}

// NewAction is the caller-supplied part of a queued action.
type NewAction struct {
	Kind     Kind            `json:"kind" validate:"required,oneof=quiz-submission progress-update generic"`
	Endpoint string          `json:"endpoint" validate:"required,endpoint"`
	Method   string          `json:"method" validate:"required,oneof=GET POST PUT DELETE"`
	Payload  json.RawMessage `json:"payload"`
}

// QueuedAction is a durable pending mutation. Created once, persisted, and
// deleted on successful replay; never mutated in place.
type QueuedAction struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Endpoint   string          `json:"endpoint"`
	Method     string          `json:"method"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	// AuthToken is the bearer token captured at enqueue time. Replay uses
	// it as-is; a token that expired in the meantime fails the replay and
	// leaves the action queued.
	AuthToken string `json:"authToken"`
}

// mockable
var (
	nowFunc   = time.Now
	newIDFunc = newActionID
)

// newActionID returns a time-prefixed unique id so lexical order within a
// collection follows enqueue order.
func newActionID(at time.Time) string {
	return strconv.FormatInt(at.UnixNano(), 10) + "-" + uuid.NewString()
}

func (a QueuedAction) record() (Record, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: a.ID, Data: data, StoredAt: a.EnqueuedAt}, nil
}

// DecodeAction decodes a pending-collection record. The gateway's replay
// and the queue read the same shapes through this one decoder so the two
// contexts cannot drift.
func DecodeAction(rec Record) (QueuedAction, error) {
	var a QueuedAction
	if err := json.Unmarshal(rec.Data, &a); err != nil {
		return QueuedAction{}, errors.Wrapf(err, "decoding queued action %q", rec.ID)
	}
	return a, nil
}
