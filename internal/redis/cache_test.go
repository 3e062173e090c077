package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()

	for name, c := range map[string]*Cache{
		"nil":      nil,
		"noClient": NewCache(nil, time.Hour, time.Second),
		"zeroTTL":  NewCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), 0, time.Second),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, c.Enabled())

			var v map[string]int
			hit, err := c.Get(ctx, "k", &v)
			require.NoError(t, err)
			assert.False(t, hit)
			assert.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}))
			assert.NoError(t, c.Delete(ctx, "k"))
		})
	}
}

func TestUnreachableCacheReportsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewCache(client, time.Minute, 200*time.Millisecond)
	require.True(t, c.Enabled())

	var v string
	hit, err := c.Get(context.Background(), "k", &v)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, c.Set(context.Background(), "k", "v"))
}

func TestSetRejectsUnencodableValue(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	c := NewCache(client, time.Minute, time.Second)
	err := c.Set(context.Background(), "k", make(chan int))
	assert.ErrorContains(t, err, "encode cache value")
}
