package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

const (
	publishTimeout = 2 * time.Second
	publishQueue   = 256
)

// OpenRedis connects to the redis server at url.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// RedisBroadcaster publishes frames on a redis channel so that every api instance
// relays them to its own hub. Frames are queued and published in the background;
// Emit never waits on redis.
type RedisBroadcaster struct {
	client  redis.UniversalClient
	channel string
	hub     *Hub
	logger  core.Logger

	queue     chan []byte
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ core.Broadcaster = (*RedisBroadcaster)(nil)

func NewRedisBroadcaster(client redis.UniversalClient, channel string, hub *Hub, logger core.Logger) *RedisBroadcaster {
	b := &RedisBroadcaster{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  logger,
		queue:   make(chan []byte, publishQueue),
		done:    make(chan struct{}),
	}
	b.wg.Add(1)
	go b.publishLoop()
	return b
}

// Emit queues the frame for publishing. It is dropped when the queue is full or
// the broadcaster is closed.
func (b *RedisBroadcaster) Emit(event string, payload interface{}) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		b.logger.Error(fmt.Sprintf("encoding %s frame: %v", event, err), err)
		return
	}
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.queue <- frame:
	default:
		b.logger.Warn(fmt.Sprintf("dropping %s frame: publish queue full", event))
	}
}

// Close publishes what is still queued and stops the background publisher.
func (b *RedisBroadcaster) Close() {
	b.closeOnce.Do(func() { close(b.done) })
	b.wg.Wait()
}

func (b *RedisBroadcaster) publishLoop() {
	defer b.wg.Done()
	for {
		select {
		case frame := <-b.queue:
			b.publish(frame)
		case <-b.done:
			for {
				select {
				case frame := <-b.queue:
					b.publish(frame)
				default:
					return
				}
			}
		}
	}
}

func (b *RedisBroadcaster) publish(frame []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, b.channel, frame).Err(); err != nil {
		b.logger.Error(fmt.Sprintf("publishing frame on %s: %v", b.channel, err), err)
	}
}

// Relay delivers the frames published on the channel to the local hub until ctx is done.
func (b *RedisBroadcaster) Relay(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrapf(err, "subscribing to %s", b.channel)
	}
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("redis subscription closed")
			}
			b.hub.Deliver([]byte(msg.Payload))
		}
	}
}
