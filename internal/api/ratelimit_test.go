package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow_PermitsUpToBurstThenBlocks(t *testing.T) {
	rl := &RateLimiter{rate: 1.0 / 60.0, burst: 3, buckets: make(map[string]*ipBucket)}

	for i := 0; i < 3; i++ {
		ok, _ := rl.allow("1.2.3.4")
		assert.True(t, ok, "request %d within burst should be allowed", i)
	}
	ok, retryAfter := rl.allow("1.2.3.4")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiter_Allow_TracksBucketsPerIPIndependently(t *testing.T) {
	rl := &RateLimiter{rate: 1.0 / 60.0, burst: 1, buckets: make(map[string]*ipBucket)}

	ok1, _ := rl.allow("1.1.1.1")
	ok2, _ := rl.allow("2.2.2.2")
	assert.True(t, ok1)
	assert.True(t, ok2)

	ok1Again, _ := rl.allow("1.1.1.1")
	assert.False(t, ok1Again)
}

func TestRateLimiter_Allow_RefillsOverTime(t *testing.T) {
	rl := &RateLimiter{rate: 100.0, burst: 1, buckets: make(map[string]*ipBucket)}

	ok, _ := rl.allow("3.3.3.3")
	require := assert.New(t)
	require.True(ok)

	rl.buckets["3.3.3.3"].lastSeen = time.Now().Add(-1 * time.Second)
	ok, _ = rl.allow("3.3.3.3")
	require.True(ok, "bucket should have refilled after waiting")
}
