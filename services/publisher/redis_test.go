package publisher

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	pub := NewRedisPublisher(ctx, RedisOptions{
		Addr:            "localhost:6379",
		StreamPrefix:    "jobcrawler_test",
		StreamCount:     1,
		StreamMaxLength: 10,
	})
	defer pub.Close()

	if err := pub.Ping(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	client.Del(ctx, pub.Stream(0))

	require.NoError(t, pub.Publish("NoFluffJobs", []byte("test_message")))

	msgs, err := client.XRange(ctx, pub.Stream(0), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	// base64 of "test_message"
	assert.Equal(t, "dGVzdF9tZXNzYWdl", msgs[0].Values["NoFluffJobs"])

	for i := 0; i < 20; i++ {
		require.NoError(t, pub.Publish("NoFluffJobs", []byte("x")))
	}
	require.NoError(t, pub.TrimStreams())

	n, err := client.XLen(ctx, pub.Stream(0)).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int64(10))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish("k", []byte("v")))
	assert.NoError(t, p.TrimStreams())
	assert.NoError(t, p.Close())
}
