package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	defaultBucketAttempts = 3
	bucketRetryBase       = 10 * time.Millisecond
	bucketRetryMax        = time.Second
)

// EnsureBucket returns the KV bucket named in cfg, creating it if needed.
//
// Processes racing to create the same bucket all succeed: the loser of the
// race opens the bucket the winner created. Other failures are retried with
// doubling delays until attempts run out or ctx is done.
//
// Parameters:
//   - ctx: Bounds the whole operation including delays
//   - js: JetStream context
//   - cfg: Bucket configuration, used only when the bucket is created
//   - attempts: Number of tries (defaultBucketAttempts when <= 0)
//
// Returns:
//   - jetstream.KeyValue: The bucket
//   - error: ctx.Err() or the last failure, naming the bucket
//
// Example:
//
//	kv, err := publish.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
//	    Bucket:  "jointown",
//	    History: 8,
//	}, 3)
func EnsureBucket(
	ctx context.Context,
	js jetstream.JetStream,
	cfg jetstream.KeyValueConfig,
	attempts int,
) (jetstream.KeyValue, error) {
	if attempts <= 0 {
		attempts = defaultBucketAttempts
	}

	var lastErr error
	for attempt := range attempts {
		kv, err := openOrCreate(ctx, js, cfg)
		if err == nil {
			return kv, nil
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Bucket, ctx.Err())
		case <-time.After(bucketRetryDelay(attempt)):
		}
	}

	return nil, fmt.Errorf("ensure bucket %s: %d attempts: %w", cfg.Bucket, attempts, lastErr)
}

// openOrCreate creates the bucket, or opens it when it already exists.
func openOrCreate(ctx context.Context, js jetstream.JetStream, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.CreateKeyValue(ctx, cfg)
	if !errors.Is(err, jetstream.ErrBucketExists) {
		return kv, err
	}

	kv, err = js.KeyValue(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open existing bucket: %w", err)
	}

	return kv, nil
}

// bucketRetryDelay doubles from bucketRetryBase and is capped at bucketRetryMax.
func bucketRetryDelay(attempt int) time.Duration {
	delay := bucketRetryBase
	for range attempt {
		delay *= 2
		if delay >= bucketRetryMax {
			return bucketRetryMax
		}
	}

	return delay
}
