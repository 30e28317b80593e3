//go:build integration

package realtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/services/realtime"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/testutil"
)

func TestRedisBroadcaster(t *testing.T) {
	_, url := testutil.RedisClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// two api instances sharing the channel
	var hubs []*realtime.Hub
	var wsURLs []string
	for i := 0; i < 2; i++ {
		client, err := realtime.OpenRedis(ctx, url)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		hub, wsURL := startHub(t, 8, nil)
		b := realtime.NewRedisBroadcaster(client, "aits-test", hub, testutil.Logger())
		t.Cleanup(b.Close)
		go func() { _ = b.Relay(ctx) }()
		hubs = append(hubs, hub)
		wsURLs = append(wsURLs, wsURL)
	}

	c0 := dial(t, wsURLs[0])
	c1 := dial(t, wsURLs[1])
	waitClients(t, hubs[0], 1)
	waitClients(t, hubs[1], 1)

	client, err := realtime.OpenRedis(ctx, url)
	require.NoError(t, err)
	defer client.Close()
	publisher := realtime.NewRedisBroadcaster(client, "aits-test", hubs[0], testutil.Logger())
	defer publisher.Close()

	// the subscriptions may need a moment before they receive
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, "aits-test").Result()
		return err == nil && n["aits-test"] == 2
	}, 5*time.Second, 50*time.Millisecond)

	publisher.Emit("pollUpdated", map[string]int{"votes": 1})

	f0 := readFrame(t, c0)
	f1 := readFrame(t, c1)
	assert.Equal(t, "pollUpdated", f0.Event)
	assert.Equal(t, "pollUpdated", f1.Event)
	assert.Equal(t, map[string]interface{}{"votes": 1.0}, f1.Data)
}

func TestOpenRedis_badURL(t *testing.T) {
	_, err := realtime.OpenRedis(context.Background(), "://nope")
	assert.Error(t, err)
}
