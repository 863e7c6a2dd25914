package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const scheduleKey = "picturechain:jobs"

// Queue is a delayed-job queue over a redis sorted set scored by run time.
// Scheduling the same kind and entity again replaces the earlier deadline,
// which makes rescheduling idempotent. Delivery is at-least-once with no
// ordering guarantee; a member is claimed by whichever consumer removes it.
type Queue struct {
	producer *redis.Client
	consumer *redis.Client
	registry *Registry
	log      zerolog.Logger

	workers      int
	pollInterval time.Duration
	retryDelay   time.Duration

	wg sync.WaitGroup
}

func NewQueue(redisURL string, registry *Registry, workers int, logger zerolog.Logger) (*Queue, error) {
	producer, err := InteractiveProfile().Client(redisURL)
	if err != nil {
		return nil, err
	}
	consumer, err := BackgroundProfile().Client(redisURL)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 4
	}
	return &Queue{
		producer:     producer,
		consumer:     consumer,
		registry:     registry,
		log:          logger,
		workers:      workers,
		pollInterval: time.Second,
		retryDelay:   30 * time.Second,
	}, nil
}

// Ping verifies the producer connection at startup.
func (q *Queue) Ping(ctx context.Context) error {
	return q.producer.Ping(ctx).Err()
}

// Schedule enqueues a job to run at runAt, replacing any earlier schedule
// for the same kind and entity. Called with the interactive profile.
func (q *Queue) Schedule(ctx context.Context, kind string, entityID uint, runAt time.Time) error {
	member := jobMember(kind, entityID)
	return q.producer.ZAdd(ctx, scheduleKey, redis.Z{
		Score:  float64(runAt.Unix()),
		Member: member,
	}).Err()
}

// Cancel removes a scheduled job. Missing jobs are not an error.
func (q *Queue) Cancel(ctx context.Context, kind string, entityID uint) error {
	return q.producer.ZRem(ctx, scheduleKey, jobMember(kind, entityID)).Err()
}

// Start launches the poller and the bounded worker pool. Consumers use the
// background profile and keep reconnecting through outages. Returns after
// spawning; Stop waits for in-flight handlers.
func (q *Queue) Start(ctx context.Context) {
	due := make(chan string)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for member := range due {
				q.dispatch(ctx, member)
			}
		}()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(due)
		ticker := time.NewTicker(q.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				q.poll(ctx, due)
			}
		}
	}()
}

// Stop waits for the poller and workers to drain.
func (q *Queue) Stop() {
	q.wg.Wait()
	if err := q.producer.Close(); err != nil {
		q.log.Error().Err(err).Msg("jobs: producer close failed")
	}
	if err := q.consumer.Close(); err != nil {
		q.log.Error().Err(err).Msg("jobs: consumer close failed")
	}
}

func (q *Queue) poll(ctx context.Context, due chan<- string) {
	now := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	members, err := q.consumer.ZRangeByScore(ctx, scheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: int64(q.workers * 4),
	}).Result()
	if err != nil {
		q.log.Error().Err(err).Msg("jobs: poll failed")
		return
	}
	for _, member := range members {
		// ZRem is the claim: only the consumer that removes the member
		// runs it.
		removed, err := q.consumer.ZRem(ctx, scheduleKey, member).Result()
		if err != nil {
			q.log.Error().Err(err).Str("job", member).Msg("jobs: claim failed")
			continue
		}
		if removed == 0 {
			continue
		}
		select {
		case due <- member:
		case <-ctx.Done():
			return
		}
	}
}

func (q *Queue) dispatch(ctx context.Context, member string) {
	kind, entityID, err := parseMember(member)
	if err != nil {
		q.log.Error().Err(err).Str("job", member).Msg("jobs: malformed member dropped")
		return
	}
	handler, ok := q.registry.handler(kind)
	if !ok {
		q.log.Error().Str("kind", kind).Msg("jobs: no handler registered")
		return
	}
	if err := handler(ctx, entityID); err != nil {
		q.log.Error().Err(err).Str("kind", kind).Uint("entity_id", entityID).
			Msg("jobs: handler failed, re-enqueueing")
		if reErr := q.consumer.ZAdd(ctx, scheduleKey, redis.Z{
			Score:  float64(time.Now().UTC().Add(q.retryDelay).Unix()),
			Member: member,
		}).Err(); reErr != nil {
			// The sweep recomputes this expiration independently.
			q.log.Error().Err(reErr).Str("job", member).Msg("jobs: re-enqueue failed")
		}
	}
}

func jobMember(kind string, entityID uint) string {
	return fmt.Sprintf("%s:%d", kind, entityID)
}

func parseMember(member string) (string, uint, error) {
	idx := strings.LastIndex(member, ":")
	if idx <= 0 || idx == len(member)-1 {
		return "", 0, fmt.Errorf("jobs: bad member %q", member)
	}
	id, err := strconv.ParseUint(member[idx+1:], 10, 64)
	if err != nil {
		return "", 0, err
	}
	return member[:idx], uint(id), nil
}
