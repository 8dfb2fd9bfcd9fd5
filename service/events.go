package service

import (
	"github.com/Luismorlan/conduit/engine"
	Logger "github.com/Luismorlan/conduit/utils/log"
)

// publish emits an event when a publisher is configured. Events are
// best effort: a failed publish is logged and never fails the request.
func (s *Service) publish(topic string, kind engine.EventKind, actor, target string) {
	if s.events == nil {
		return
	}
	msg, err := engine.NewEventMessage(engine.Event{Kind: kind, Actor: actor, Target: target, At: s.now()})
	if err != nil {
		Logger.Log.Errorf("fail to encode %s event: %v", kind, err)
		return
	}
	if err := s.events.Publish(topic, msg); err != nil {
		Logger.Log.Errorf("fail to publish %s event: %v", kind, err)
	}
}
