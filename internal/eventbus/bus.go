// Package eventbus is the typed publish/subscribe surface behind the
// dashboard-refresh signals. Producers signal an opaque key; consumers
// subscribe by key prefix and get invoked at most once per distinct signaled
// value. Delivery is best-effort: the backing store is an implementation
// detail and no guarantee survives a dropped connection.
package eventbus

import (
	"context"
	"strconv"
	"time"
)

const (
	// KeyProjectCreated is signaled when any project is created.
	KeyProjectCreated = "project-created"

	progressKeyPrefix = "project-progress-updated-"
)

// ProgressKey returns the signal key for a project's progress updates.
func ProgressKey(projectID string) string {
	return progressKeyPrefix + projectID
}

// Handler receives the signaled key and its opaque value. Consumers compare
// keys and value recency only; the value itself is never interpreted.
type Handler func(key, value string)

type Bus interface {
	// Signal writes a fresh opaque value under the key and fans it out.
	Signal(ctx context.Context, key string) error
	// Subscribe registers a handler for keys with the given prefix and
	// returns an unsubscribe function.
	Subscribe(ctx context.Context, prefix string, h Handler) (func(), error)
}

func freshValue() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
