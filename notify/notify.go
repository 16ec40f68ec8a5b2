// Package notify broadcasts punishment lifecycle events to external
// collaborators (chat listeners, Discord bridges, staff tooling). It is
// fire-and-forget: delivery is best-effort and the punishment lifecycle
// never depends on it.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kasuganosora/modguard/config"
	"github.com/kasuganosora/modguard/model"
)

// Channel is the pub/sub channel punishment events are published on.
const Channel = "modguard:punishments"

// EventKind discriminates punishment lifecycle events.
type EventKind string

const (
	EventIssued  EventKind = "punishment_issued"
	EventRevoked EventKind = "punishment_revoked"
)

// Event is one broadcast payload.
type Event struct {
	Kind       EventKind         `json:"kind"`
	At         time.Time         `json:"at"`
	Punishment *model.Punishment `json:"punishment"`
}

// Notifier publishes punishment events and hands out subscriptions.
type Notifier interface {
	Publish(ctx context.Context, ev *Event) error
	Subscribe(ctx context.Context) (<-chan *Event, func(), error)
}

// New returns a Notifier backed by Redis pub/sub if RedisAddr is set,
// otherwise an in-process fan-out.
func New(cfg config.NotifyConfig) (Notifier, error) {
	if cfg.RedisAddr != "" {
		return newRedisNotifier(cfg)
	}
	return newLocalNotifier(cfg.LocalBuf), nil
}

func encode(ev *Event) (string, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decode(payload string) (*Event, error) {
	ev := &Event{}
	if err := json.Unmarshal([]byte(payload), ev); err != nil {
		return nil, err
	}
	return ev, nil
}
