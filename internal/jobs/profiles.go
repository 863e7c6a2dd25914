package jobs

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectionProfile is a named connection policy for the job system. The
// producer side serves interactive requests and must fail fast; the consumer
// side must outlast outages so no scheduled expiration is permanently lost.
type ConnectionProfile struct {
	Name            string
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
}

// InteractiveProfile is used by schedule/cancel calls made while serving a
// player request. A down job system degrades to the fallback sweep instead
// of hanging the request.
func InteractiveProfile() ConnectionProfile {
	return ConnectionProfile{
		Name:            "interactive",
		MaxRetries:      1,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 250 * time.Millisecond,
		DialTimeout:     2 * time.Second,
	}
}

// BackgroundProfile is used by the consumer pool, which keeps retrying with
// long backoff until the job system returns.
func BackgroundProfile() ConnectionProfile {
	return ConnectionProfile{
		Name:            "background",
		MaxRetries:      20,
		MinRetryBackoff: time.Second,
		MaxRetryBackoff: 30 * time.Second,
		DialTimeout:     10 * time.Second,
	}
}

// Client builds a redis client for the profile.
func (p ConnectionProfile) Client(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.MaxRetries = p.MaxRetries
	opts.MinRetryBackoff = p.MinRetryBackoff
	opts.MaxRetryBackoff = p.MaxRetryBackoff
	opts.DialTimeout = p.DialTimeout
	return redis.NewClient(opts), nil
}
