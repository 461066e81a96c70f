package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the immutable wrapper every event travels in.
type Envelope struct {
	ID           string
	Type         Type
	PartitionKey string
	// Timestamp is unix milliseconds.
	Timestamp int64
	Payload   Payload
}

// New wraps p in an envelope with a fresh id.
func New(p Payload, now time.Time) (Envelope, error) {
	if p == nil {
		return Envelope{}, ErrNilPayload
	}
	return Envelope{
		ID:           uuid.NewString(),
		Type:         p.Type(),
		PartitionKey: p.PartitionKey(),
		Timestamp:    now.UnixMilli(),
		Payload:      p,
	}, nil
}

// Time returns the event timestamp.
func (e Envelope) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

type header struct {
	ID           string `json:"eventId"`
	Type         Type   `json:"eventType"`
	Timestamp    int64  `json:"timestamp"`
	PartitionKey string `json:"partitionKey,omitempty"`
}

// Marshal renders the flat wire form: header fields next to payload fields.
func (e Envelope) Marshal() ([]byte, error) {
	if e.Payload == nil {
		return nil, ErrNilPayload
	}
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	head, err := json.Marshal(header{ID: e.ID, Type: e.Type, Timestamp: e.Timestamp, PartitionKey: e.PartitionKey})
	if err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	if err := json.Unmarshal(head, &fields); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return json.Marshal(fields)
}

// DeriveID returns a stable event id for source, used for records published
// without an eventId. The same source always yields the same id.
func DeriveID(source string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("notifyhub:event/"+source)).String()
}

// Decode parses the wire form. It returns ErrUnknownType for types outside the
// known set and ErrMalformed for anything it cannot read. eventId and
// timestamp are optional; callers fill in missing ones.
func Decode(data []byte) (Envelope, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return Envelope{}, errors.Join(ErrMalformed, err)
	}

	decode, ok := decoders[h.Type]
	if !ok {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownType, h.Type)
	}
	p, err := decode(data)
	if err != nil {
		return Envelope{}, errors.Join(ErrMalformed, err)
	}

	key := h.PartitionKey
	if key == "" {
		key = p.PartitionKey()
	}
	return Envelope{
		ID:           h.ID,
		Type:         h.Type,
		PartitionKey: key,
		Timestamp:    h.Timestamp,
		Payload:      p,
	}, nil
}

// Accept dispatches the payload to v.
func (e Envelope) Accept(ctx context.Context, v Visitor) error {
	return e.Payload.Accept(ctx, e, v)
}
