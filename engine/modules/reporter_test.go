package modules

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Luismorlan/conduit/engine"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsd struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fakeStatsd) Incr(name string, tags []string, rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tag := range tags {
		f.counts[name+"|"+tag]++
	}
	return nil
}

func (f *fakeStatsd) Count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[key]
}

func publish(t *testing.T, bus *gochannel.GoChannel, topic string, event engine.Event) {
	msg, err := engine.NewEventMessage(event)
	require.Nil(t, err)
	require.Nil(t, bus.Publish(topic, msg))
}

func TestReporterCountsEvents(t *testing.T) {
	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 10, Persistent: true}, watermill.NopLogger{})
	defer bus.Close()
	statsd := &fakeStatsd{counts: map[string]int{}}
	reporter := NewReporter(ReporterConfig{Name: "reporter"}, statsd, bus)

	publish(t, bus, engine.TOPIC_RELATIONSHIP_EVENT, engine.Event{Kind: engine.EventFollowed, Actor: "alice", Target: "bob"})
	publish(t, bus, engine.TOPIC_RELATIONSHIP_EVENT, engine.Event{Kind: engine.EventFollowed, Actor: "carol", Target: "bob"})
	publish(t, bus, engine.TOPIC_ARTICLE_EVENT, engine.Event{Kind: engine.EventArticleCreated, Actor: "alice", Target: "a1"})
	require.Nil(t, bus.Publish(engine.TOPIC_ARTICLE_EVENT, message.NewMessage(watermill.NewUUID(), []byte("junk"))))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- reporter.RunModule(ctx) }()

	assert.Eventually(t, func() bool {
		return statsd.Count(engine.DDOG_RELATIONSHIP_EVENT_COUNTER+"|kind:followed") == 2 &&
			statsd.Count(engine.DDOG_ARTICLE_EVENT_COUNTER+"|kind:created") == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.Nil(t, err)
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}
	assert.Equal(t, "reporter", reporter.Name())
}
