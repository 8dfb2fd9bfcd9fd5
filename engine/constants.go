package engine

const (
	// Emitted by the relationship mutator whenever a follow or favorite edge
	// changes state.
	TOPIC_RELATIONSHIP_EVENT = "relationship_event"
	// Emitted whenever an article is created, updated or deleted.
	TOPIC_ARTICLE_EVENT = "article_event"

	DDOG_RELATIONSHIP_EVENT_COUNTER = "conduit.relationship_event"
	DDOG_ARTICLE_EVENT_COUNTER      = "conduit.article_event"
)

type EventKind string

const (
	EventFollowed    EventKind = "followed"
	EventUnfollowed  EventKind = "unfollowed"
	EventFavorited   EventKind = "favorited"
	EventUnfavorited EventKind = "unfavorited"

	EventArticleCreated EventKind = "created"
	EventArticleUpdated EventKind = "updated"
	EventArticleDeleted EventKind = "deleted"
)
