package publish

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/zeebo/xxh3"

	"github.com/arloliu/jointown/internal/logging"
	"github.com/arloliu/jointown/types"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "jointown"

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		if prefix != "" {
			p.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Publisher writes World snapshots to a KV bucket.
//
// Snapshots equal to the last published one in ownership and membership are
// skipped, so replaying a channel of snapshots only writes real changes.
type Publisher struct {
	kv     jetstream.KeyValue
	prefix string
	logger types.Logger

	mu          sync.Mutex
	published   bool
	fingerprint uint64
	step        int
	persons     map[types.PersonID]struct{}
}

// New creates a publisher writing into kv.
//
// Parameters:
//   - kv: Target bucket, see EnsureBucket
//   - opts: WithPrefix, WithLogger
//
// Returns:
//   - *Publisher: Publisher that has not written anything yet
func New(kv jetstream.KeyValue, opts ...Option) *Publisher {
	p := &Publisher{
		kv:      kv,
		prefix:  DefaultPrefix,
		logger:  logging.NewNop(),
		persons: make(map[types.PersonID]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WorldKey returns the key of the world record.
func (p *Publisher) WorldKey() string {
	return p.prefix + ".world"
}

// PersonKey returns the key of a person record.
func (p *Publisher) PersonKey(id types.PersonID) string {
	return p.prefix + ".person." + string(id)
}

// Publish writes a snapshot unless it matches the last published one.
//
// Person records are written first, then stale person keys are deleted, and
// the world record is written last so that watchers of the world key see a
// complete layout.
//
// Returns:
//   - bool: true if the snapshot was written
//   - error: ErrPublishFailed wrapping the KV error
func (p *Publisher) Publish(ctx context.Context, snap types.Snapshot) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fp := fingerprint(snap)
	if p.published && fp == p.fingerprint {
		p.logger.Debug("snapshot unchanged, skipping publish", "step", snap.Step)
		return false, nil
	}

	current := make(map[types.PersonID]struct{}, len(snap.Tiers))
	for id, tier := range snap.Tiers {
		if !validKeyToken(id) {
			p.logger.Debug("person id is not a valid key token", "person", id)
			continue
		}
		current[id] = struct{}{}

		objects := snap.OwnedBy(id)
		if objects == nil {
			objects = []int{}
		}
		data, err := json.Marshal(PersonRecord{Step: snap.Step, Tier: tier, Objects: objects})
		if err != nil {
			return false, fmt.Errorf("%w: marshal person %q: %w", ErrPublishFailed, id, err)
		}
		if _, err := p.kv.Put(ctx, p.PersonKey(id), data); err != nil {
			return false, fmt.Errorf("%w: put %s: %w", ErrPublishFailed, p.PersonKey(id), err)
		}
	}

	for id := range p.persons {
		if _, ok := current[id]; ok {
			continue
		}
		if err := p.kv.Delete(ctx, p.PersonKey(id)); err != nil {
			p.logger.Warn("failed to delete departed person", "key", p.PersonKey(id), "error", err)
		}
	}

	data, err := json.Marshal(NewRecord(snap))
	if err != nil {
		return false, fmt.Errorf("%w: marshal world: %w", ErrPublishFailed, err)
	}
	if _, err := p.kv.Put(ctx, p.WorldKey(), data); err != nil {
		return false, fmt.Errorf("%w: put %s: %w", ErrPublishFailed, p.WorldKey(), err)
	}

	p.published = true
	p.fingerprint = fp
	p.step = snap.Step
	p.persons = current

	p.logger.Debug("snapshot published", "step", snap.Step, "ownership", snap.Ownership())

	return true, nil
}

// Run publishes snapshots from ch until it is closed or ctx is done.
//
// Publish failures caused by connectivity are logged and the snapshot is
// skipped; the next snapshot is published in full. Other failures stop Run.
//
// Returns:
//   - error: nil when ch is closed, ctx.Err(), or the first non-connectivity
//     publish error
func (p *Publisher) Run(ctx context.Context, ch <-chan types.Snapshot) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := p.Publish(ctx, snap); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				if IsConnectivityError(err) {
					p.logger.Warn("snapshot not published", "step", snap.Step, "error", err)
					continue
				}

				return err
			}
		}
	}
}

// LastStep returns the step of the last published snapshot.
func (p *Publisher) LastStep() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.step, p.published
}

// Latest reads the world record stored in kv under prefix.
//
// Returns:
//   - Record: Last published world record
//   - uint64: KV revision of the record
//   - error: ErrNoRecord if nothing was published
func Latest(ctx context.Context, kv jetstream.KeyValue, prefix string) (Record, uint64, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	entry, err := kv.Get(ctx, prefix+".world")
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return Record{}, 0, ErrNoRecord
		}

		return Record{}, 0, fmt.Errorf("get world record: %w", err)
	}
	rec, err := DecodeRecord(entry.Value())
	if err != nil {
		return Record{}, 0, err
	}

	return rec, entry.Revision(), nil
}

// PersonFromKey extracts the person id from a person key.
func PersonFromKey(prefix, key string) (types.PersonID, bool) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	id, ok := strings.CutPrefix(key, prefix+".person.")
	if !ok || id == "" {
		return types.NoOwner, false
	}

	return types.PersonID(id), true
}

// fingerprint hashes the ownership digest together with the membership.
func fingerprint(snap types.Snapshot) uint64 {
	h := xxh3.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], snap.Digest())
	_, _ = h.Write(buf[:])
	for _, tier := range []types.Tier{types.TierNormal, types.TierLowprio} {
		for _, id := range snap.Members(tier) {
			_, _ = h.WriteString(string(id))
			_, _ = h.Write([]byte{0, byte(tier)})
		}
	}

	return h.Sum64()
}
