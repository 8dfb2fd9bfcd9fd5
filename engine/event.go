package engine

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Event is what travels on the event bus. Actor is the id of the acting user,
// Target the id of the followed user or of the article.
type Event struct {
	Kind   EventKind
	Actor  string
	Target string
	At     time.Time
}

// NewEventMessage encodes an event as a structpb.Struct wrapped in a
// watermill message.
func NewEventMessage(event Event) (*message.Message, error) {
	payload, err := structpb.NewStruct(map[string]interface{}{
		"kind":   string(event.Kind),
		"actor":  event.Actor,
		"target": event.Target,
		"at":     event.At.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build event payload")
	}
	bytes, err := proto.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event payload")
	}
	return message.NewMessage(watermill.NewUUID(), bytes), nil
}

func DecodeEvent(payload []byte) (Event, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(payload, s); err != nil {
		return Event{}, errors.Wrap(err, "unmarshal event payload")
	}
	fields := s.GetFields()
	event := Event{
		Kind:   EventKind(fields["kind"].GetStringValue()),
		Actor:  fields["actor"].GetStringValue(),
		Target: fields["target"].GetStringValue(),
	}
	if at := fields["at"].GetStringValue(); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return Event{}, errors.Wrap(err, "parse event time")
		}
		event.At = t
	}
	if event.Kind == "" {
		return Event{}, errors.New("event without kind")
	}
	return event, nil
}
