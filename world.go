package jointown

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/jointown/internal/logging"
	"github.com/arloliu/jointown/internal/metrics"
	"github.com/arloliu/jointown/internal/ownership"
	"github.com/arloliu/jointown/internal/tier"
	"github.com/arloliu/jointown/types"
)

// Step actions reported to metrics and snapshots.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// World distributes N objects among persons of two priority tiers.
//
// Every person declares a domain, the objects it may own. Each add or remove
// event is applied as one atomic step: objects are assigned, normal persons
// evict low-priority owners from their domain, and both tiers are evened out
// so that capitals are as equal as domains allow.
//
// World is safe for concurrent use. Events are serialized; observers take a
// read lock and never see a half-applied step. Subscribers receive snapshots
// in step order because they are sent before the step releases its lock.
//
// A step that fails after a tier has already changed leaves the World
// inconsistent. Such a World stops: every later AddPerson and RemovePerson
// returns ErrWorldStopped wrapping the original error. Observers keep working.
type World struct {
	cfg Config

	mu      sync.RWMutex
	table   *ownership.Table
	normal  *tier.Group
	lowprio *tier.LowprioGroup
	step    int
	failed  error

	logger  Logger
	metrics MetricsCollector

	subscribers      *xsync.Map[uint64, *subscriber]
	nextSubscriberID atomic.Uint64
}

// New creates a World of n objects with default configuration.
//
// Parameters:
//   - objects: Number of objects N; object ids are 0..N-1
//   - opts: Optional logger and metrics
//
// Returns:
//   - *World: World with every object free and no persons
//   - error: ErrInvalidConfig if objects is negative
//
// Example:
//
//	w, err := jointown.New(10)
//	id, err := w.AddPerson("", jointown.NewDomain(2, 3), false)
//	fmt.Println(w.Ownership()) // "--00------"
func New(objects int, opts ...Option) (*World, error) {
	cfg := DefaultConfig()
	cfg.Objects = objects

	return NewWorld(&cfg, opts...)
}

// NewWorld creates a World from a configuration.
//
// Parameters:
//   - cfg: Configuration; missing values are filled by SetDefaults
//   - opts: Optional logger and metrics
//
// Returns:
//   - *World: World with every object free and no persons
//   - error: ErrInvalidConfig if cfg is nil or fails Validate
func NewWorld(cfg *Config, opts ...Option) (*World, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	options := &worldOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	c := *cfg
	SetDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.ValidateWithWarnings(options.logger)

	table := ownership.New(c.Objects)
	normal := tier.NewGroup(table, options.logger, options.metrics)
	lowprio := tier.NewLowprioGroup(table, normal, options.logger, options.metrics)

	w := &World{
		cfg:         c,
		table:       table,
		normal:      normal,
		lowprio:     lowprio,
		logger:      options.logger,
		metrics:     options.metrics,
		subscribers: xsync.NewMap[uint64, *subscriber](),
	}
	w.metrics.RecordFreeObjects(table.FreeCount())

	return w, nil
}

// AddPerson adds a person to the normal or the low-priority tier.
//
// The person immediately receives every free object of its domain. A normal
// person also takes every object of its domain held by a low-priority person.
// Both tiers are then evened out.
//
// Parameters:
//   - id: Person key; NoOwner ("") picks a free key from the person counter
//   - domain: Objects the person may own, each in [0, N)
//   - lowprio: true to add the person to the low-priority tier
//
// Returns:
//   - PersonID: Key of the new person
//   - error: ErrObjectOutOfRange, ErrDuplicateMember, ErrWorldStopped, or the
//     error of a step that failed midway (the World stops afterwards)
func (w *World) AddPerson(id PersonID, domain Domain, lowprio bool) (PersonID, error) {
	if err := w.checkDomain(domain); err != nil {
		return NoOwner, err
	}

	start := time.Now()
	w.mu.Lock()

	if err := w.checkRunningLocked(); err != nil {
		w.mu.Unlock()
		return NoOwner, err
	}
	if id == NoOwner {
		id = w.freeID()
	} else if w.normal.Has(id) || w.lowprio.Has(id) {
		w.mu.Unlock()
		return NoOwner, fmt.Errorf("%w: %q", ErrDuplicateMember, id)
	}

	kind := TierNormal
	if lowprio {
		kind = TierLowprio
	}

	if err := w.addLocked(id, domain, kind); err != nil {
		w.stopLocked(ActionAdd, id, err)
		w.mu.Unlock()
		return NoOwner, err
	}
	w.step++

	w.logger.Info("person added",
		"person", id,
		"tier", kind.String(),
		"domain", domain.String(),
		"step", w.step,
	)
	w.broadcast(w.finishStepLocked(ActionAdd, start))
	w.mu.Unlock()

	return id, nil
}

func (w *World) addLocked(id PersonID, domain Domain, kind Tier) error {
	if kind == TierLowprio {
		if _, err := w.lowprio.AddPerson(id, domain); err != nil {
			return err
		}

		return w.evenOutLocked()
	}

	// lowprio active domains shrink during the add, so candidates come first
	candidates := domain.Intersect(w.lowprio.DomainUnion())
	assigned, err := w.normal.AddPerson(id, domain)
	if err != nil {
		return err
	}

	evicted := 0
	for o := range candidates.Minus(assigned).All() {
		owner, err := w.lowprio.TakeAway(o)
		if err != nil {
			return fmt.Errorf("evict object %d for %q: %w", o, id, err)
		}
		if err := w.normal.AssignTo(o, id); err != nil {
			return fmt.Errorf("evict object %d for %q: %w", o, id, err)
		}
		w.logger.Debug("object evicted", "object", o, "from", owner, "to", id)
		evicted++
	}
	w.metrics.RecordEvictions(evicted)

	return w.evenOutLocked()
}

// RemovePerson removes a person from whichever tier holds it.
//
// Every freed object goes to the poorest person of the same tier that may own
// it. Objects freed by a normal person that no normal person can take go to
// the poorest eligible low-priority person; otherwise they stay free. Both
// tiers are then evened out.
//
// Removing an unknown person is not an error: a warning is logged and no step
// is counted.
//
// Returns:
//   - bool: false if no tier holds the person
//   - error: ErrWorldStopped, or the error of a step that failed midway (the
//     World stops afterwards)
func (w *World) RemovePerson(id PersonID) (bool, error) {
	start := time.Now()
	w.mu.Lock()

	if err := w.checkRunningLocked(); err != nil {
		w.mu.Unlock()
		return false, err
	}

	var t tier.Tier
	switch {
	case w.normal.Has(id):
		t = w.normal
	case w.lowprio.Has(id):
		t = w.lowprio
	default:
		w.mu.Unlock()
		w.logger.Warn("person not found", "person", id, "error", ErrPersonNotFound)
		w.metrics.RecordPersonNotFound()

		return false, nil
	}

	if err := w.removeLocked(id, t); err != nil {
		w.stopLocked(ActionRemove, id, err)
		w.mu.Unlock()
		return false, err
	}
	w.step++

	w.logger.Info("person removed", "person", id, "tier", t.Kind().String(), "step", w.step)
	w.broadcast(w.finishStepLocked(ActionRemove, start))
	w.mu.Unlock()

	return true, nil
}

func (w *World) removeLocked(id PersonID, t tier.Tier) error {
	freed, err := t.RemovePerson(id)
	if err != nil {
		return err
	}

	for o := range freed.All() {
		heir, ok := t.PoorestAcceptor(o)
		target := t
		if !ok && t.Kind() == TierNormal {
			heir, ok = w.lowprio.PoorestAcceptor(o)
			target = w.lowprio
		}
		if !ok {
			continue
		}
		if err := target.AssignTo(o, heir); err != nil {
			return fmt.Errorf("reassign object %d from %q: %w", o, id, err)
		}
	}

	return w.evenOutLocked()
}

func (w *World) evenOutLocked() error {
	for _, t := range []tier.Tier{w.normal, w.lowprio} {
		chains, err := t.EvenOut()
		if err != nil {
			w.logger.Error("even out failed", "tier", t.Kind().String(), "error", err)
			return err
		}
		if chains > 0 {
			w.logger.Debug("tier evened out", "tier", t.Kind().String(), "chains", chains)
		}
	}

	return nil
}

// checkRunningLocked returns ErrWorldStopped once a step has failed midway.
func (w *World) checkRunningLocked() error {
	if w.failed != nil {
		return fmt.Errorf("%w: %w", ErrWorldStopped, w.failed)
	}

	return nil
}

// stopLocked records a failure that happened after a tier changed.
func (w *World) stopLocked(action string, id PersonID, err error) {
	w.failed = err
	w.logger.Error("step failed, world stopped",
		"action", action,
		"person", id,
		"step", w.step,
		"error", err,
	)
}

// personsLocked counts the members of both tiers.
func (w *World) personsLocked() int {
	return w.normal.Len() + w.lowprio.Len()
}

// freeID returns the first unused key probing down from the person counter.
func (w *World) freeID() PersonID {
	for n := w.personsLocked(); ; n-- {
		id := PersonID(strconv.Itoa(n))
		if !w.normal.Has(id) && !w.lowprio.Has(id) {
			return id
		}
	}
}

func (w *World) checkDomain(domain Domain) error {
	if lo, ok := domain.Min(); ok && lo < 0 {
		return fmt.Errorf("%w: object %d", ErrObjectOutOfRange, lo)
	}
	if hi, ok := domain.Max(); ok && hi >= w.cfg.Objects {
		return fmt.Errorf("%w: object %d, world has %d objects", ErrObjectOutOfRange, hi, w.cfg.Objects)
	}

	return nil
}

// finishStepLocked records step metrics and returns the snapshot to publish.
func (w *World) finishStepLocked(action string, start time.Time) Snapshot {
	w.metrics.RecordStep(action, time.Since(start).Seconds())
	w.metrics.RecordPersons(TierNormal, w.normal.Len())
	w.metrics.RecordPersons(TierLowprio, w.lowprio.Len())
	w.metrics.RecordFreeObjects(w.table.FreeCount())

	return w.snapshotLocked()
}

// Owners returns the owner of every object, NoOwner for free objects.
func (w *World) Owners() []PersonID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.table.Owners()
}

// Ownership returns one character per object: the first character of its
// owner's key, or FreeMarker ('-') for a free object.
func (w *World) Ownership() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.table.String()
}

// Capital returns the number of objects a person owns.
func (w *World) Capital(id PersonID) (int, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if c, ok := w.normal.Capital(id); ok {
		return c, true
	}

	return w.lowprio.Capital(id)
}

// TierOf returns the tier holding a person.
func (w *World) TierOf(id PersonID) (Tier, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	switch {
	case w.normal.Has(id):
		return TierNormal, true
	case w.lowprio.Has(id):
		return TierLowprio, true
	default:
		return 0, false
	}
}

// Domain returns the domain a person was added with.
func (w *World) Domain(id PersonID) (Domain, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if d, ok := w.normal.Domain(id); ok {
		return d, true
	}

	return w.lowprio.GivenDomain(id)
}

// Step returns the number of completed add/remove steps.
func (w *World) Step() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.step
}

// Persons returns the number of persons in both tiers.
func (w *World) Persons() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.personsLocked()
}

// Objects returns N.
func (w *World) Objects() int {
	return w.cfg.Objects
}

// Snapshot returns a detached copy of the current state.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.snapshotLocked()
}

func (w *World) snapshotLocked() Snapshot {
	snap := types.Snapshot{
		Step:     w.step,
		Persons:  w.personsLocked(),
		Owners:   w.table.Owners(),
		Capitals: make(map[PersonID]int, w.personsLocked()),
		Tiers:    make(map[PersonID]Tier, w.personsLocked()),
	}
	for _, g := range []*tier.Group{w.normal, w.lowprio.Group} {
		for p, c := range g.Capitals() {
			snap.Capitals[p] = c
			snap.Tiers[p] = g.Kind()
		}
	}

	return snap
}

// String returns a one-line summary of the world.
func (w *World) String() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return fmt.Sprintf("World: %d persons. Ownership = %s", w.personsLocked(), w.table.String())
}
