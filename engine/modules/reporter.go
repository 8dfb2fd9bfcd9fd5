package modules

import (
	"context"

	"github.com/Luismorlan/conduit/engine"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/ThreeDotsLabs/watermill/message"
)

// StatsdClient is the subset of *statsd.Client the reporter needs.
type StatsdClient interface {
	Incr(name string, tags []string, rate float64) error
}

type ReporterConfig struct {
	Name string
}

// Reporter's job is to listen to the event topics and aggregate results,
// sending to Datadog for monitoring purpose.
type Reporter struct {
	Config ReporterConfig

	Statsd StatsdClient

	EventBus message.Subscriber
}

func NewReporter(config ReporterConfig, statsd StatsdClient, e message.Subscriber) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

// ReportEvent sends one counter increment tagged with the event kind.
func ReportEvent(counter string, event engine.Event, statsd StatsdClient) {
	err := statsd.Incr(counter, []string{"kind:" + string(event.Kind)}, 1)
	if err != nil {
		Logger.Log.Infoln("cannot report event", event.Kind)
	}
}

func (r *Reporter) ProcessEvents(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	relationships, err := r.EventBus.Subscribe(ctx, engine.TOPIC_RELATIONSHIP_EVENT)
	if err != nil {
		return err
	}
	articles, err := r.EventBus.Subscribe(ctx, engine.TOPIC_ARTICLE_EVENT)
	if err != nil {
		return err
	}

	for relationships != nil || articles != nil {
		var (
			msg     *message.Message
			ok      bool
			counter string
		)
		select {
		case <-ctx.Done():
			return nil
		case msg, ok = <-relationships:
			if !ok {
				relationships = nil
				continue
			}
			counter = engine.DDOG_RELATIONSHIP_EVENT_COUNTER
		case msg, ok = <-articles:
			if !ok {
				articles = nil
				continue
			}
			counter = engine.DDOG_ARTICLE_EVENT_COUNTER
		}
		msg.Ack()

		event, err := engine.DecodeEvent(msg.Payload)
		if err != nil {
			Logger.Log.Errorf("drop malformed event %s: %v", msg.UUID, err)
			continue
		}
		ReportEvent(counter, event, r.Statsd)
	}

	return nil
}

func (r *Reporter) RunModule(ctx context.Context) error {
	return r.ProcessEvents(ctx)
}

func (r *Reporter) Name() string {
	return r.Config.Name
}

func (r *Reporter) Shutdown() {}
