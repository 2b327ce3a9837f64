package events

import (
	"context"
	"time"
)

// Watched collections; a change to any of them invalidates dashboard statistics.
var WatchedCollections = []string{"cars", "payments", "tickets"}

// Change describes one write to a watched collection.
type Change struct {
	Collection string    `json:"collection"`
	Operation  string    `json:"operation"`
	Key        string    `json:"key,omitempty"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Subscriber delivers changes until ctx is cancelled, then closes the channel.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// NopPublisher is used when the database itself emits change notifications.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Change) error { return nil }
