package ratelimiting

import (
	"net/http"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockedRateLimiter struct {
	consumeFunc func(key string) bool
}

func (m *mockedRateLimiter) Consume(key string) bool {
	return m.consumeFunc(key)
}

func TestKeyBasedRateLimiter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping test in short mode")
	}
	rateLimiter, stop := NewTokenBucketRateLimiter(1, 2)
	defer stop()

	assert.True(t, rateLimiter.Consume("user2"))

	// Burst of 2
	assert.True(t, rateLimiter.Consume("user1"))
	assert.True(t, rateLimiter.Consume("user1"))
	assert.False(t, rateLimiter.Consume("user1"))

	time.Sleep(1000 * time.Millisecond)
	runtime.Gosched()

	// Refill rate of 1
	assert.True(t, rateLimiter.Consume("user1"))
	assert.False(t, rateLimiter.Consume("user1"))

	// Burst of 2 - even after refill
	assert.True(t, rateLimiter.Consume("user3"))
	assert.True(t, rateLimiter.Consume("user3"))
	assert.False(t, rateLimiter.Consume("user3"))

	assert.True(t, rateLimiter.Consume("user2"))
	assert.True(t, rateLimiter.Consume("user2"))
	assert.False(t, rateLimiter.Consume("user2"))
}

func TestIPKeyFunc(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		request  *http.Request
		expected string
	}{
		{
			name:     "remote address",
			request:  &http.Request{RemoteAddr: "123.123.123.123"},
			expected: "ip: 123.123.123.123",
		},
		{
			name:     "remote address with port",
			request:  &http.Request{RemoteAddr: "123.123.123.123:4567"},
			expected: "ip: 123.123.123.123",
		},
		{
			name:     "ipv6 with port",
			request:  &http.Request{RemoteAddr: "[2001:db8::1]:4567"},
			expected: "ip: 2001:db8::1",
		},
		{
			name: "forwarded",
			request: &http.Request{
				RemoteAddr: "10.0.0.1:4567",
				Header:     http.Header{"X-Forwarded-For": []string{"203.0.113.7, 10.0.0.1"}},
			},
			expected: "ip: 203.0.113.7",
		},
		{
			name: "empty forwarded header",
			request: &http.Request{
				RemoteAddr: "10.0.0.1:4567",
				Header:     http.Header{"X-Forwarded-For": []string{" "}},
			},
			expected: "ip: 10.0.0.1",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, c.expected, IPKeyFunc(c.request))
		})
	}
}

func TestUserEmailKeyFunc(t *testing.T) {
	t.Parallel()

	request := &http.Request{Header: http.Header{"X-User-Email": []string{" Coach@Example.com "}}}
	assert.Equal(t, "user-email: coach@example.com", UserEmailKeyFunc(request))

	assert.Equal(t, "user-email: <missing>", UserEmailKeyFunc(&http.Request{}))
}

func TestRequestBasedRateLimiter(t *testing.T) {
	var expectedKey string
	var allowed bool
	rateLimiter := &mockedRateLimiter{
		consumeFunc: func(key string) bool {
			t.Helper()
			assert.Equal(t, expectedKey, key)
			return allowed
		},
	}
	requestRateLimiter := NewRequestBasedRateLimiter(rateLimiter, IPKeyFunc)

	expectedKey = "ip: 1.1.1.1"
	allowed = true
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))
	allowed = false
	assert.False(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))

	expectedKey = "ip: 2.1.1.1"
	allowed = true
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "2.1.1.1"}))

	expectedKey = "ip: 1.1.1.1"
	allowed = false
	assert.False(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1"}))
}
