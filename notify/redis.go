package notify

import (
	"context"
	"time"

	"github.com/kasuganosora/modguard/config"
	goredis "github.com/redis/go-redis/v9"
)

// redisNotifier publishes events through Redis pub/sub so collaborators in
// other processes (Discord bridge, web panel) can listen. This carries
// notifications only; the punishment cache itself stays in-process.
type redisNotifier struct {
	client *goredis.Client
}

func newRedisNotifier(cfg config.NotifyConfig) (*redisNotifier, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &redisNotifier{client: client}, nil
}

func (n *redisNotifier) Publish(ctx context.Context, ev *Event) error {
	payload, err := encode(ev)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, Channel, payload).Err()
}

func (n *redisNotifier) Subscribe(ctx context.Context) (<-chan *Event, func(), error) {
	ps := n.client.Subscribe(ctx, Channel)
	out := make(chan *Event, 256)

	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			ev, err := decode(msg.Payload)
			if err != nil {
				continue
			}
			out <- ev
		}
	}()

	cancel := func() {
		_ = ps.Close()
	}
	return out, cancel, nil
}
