package jointown_test

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jointown"
	"github.com/arloliu/jointown/internal/metrics"
	jttest "github.com/arloliu/jointown/testing"
	"github.com/arloliu/jointown/test/testutil"
)

// step is one event: add with a domain, or remove when remove is set.
type step struct {
	domain  []int
	lowprio bool
	remove  jointown.PersonID
	want    string
}

func add(want string, ids ...int) step { return step{domain: ids, want: want} }

func addLow(want string, ids ...int) step { return step{domain: ids, lowprio: true, want: want} }

func remove(want string, id jointown.PersonID) step { return step{remove: id, want: want} }

// run applies steps with auto-named persons and checks invariants after each one.
func run(t *testing.T, w *jointown.World, steps []step) []jointown.PersonID {
	t.Helper()
	domains := map[jointown.PersonID]jointown.Domain{}
	var ids []jointown.PersonID

	for i, s := range steps {
		if s.remove != jointown.NoOwner {
			ok, err := w.RemovePerson(s.remove)
			require.NoError(t, err)
			require.True(t, ok, "step %d", i+1)
			delete(domains, s.remove)
		} else {
			d := jointown.NewDomain(s.domain...)
			id, err := w.AddPerson(jointown.NoOwner, d, s.lowprio)
			require.NoError(t, err)
			domains[id] = d
			ids = append(ids, id)
		}

		require.Equal(t, s.want, w.Ownership(), "step %d", i+1)
		testutil.AssertSnapshotConsistent(t, w.Snapshot(), domains)
	}

	return ids
}

func TestWorld_TaskStatementScenario(t *testing.T) {
	w, err := jointown.New(10)
	require.NoError(t, err)

	ids := run(t, w, []step{
		add("----------"),
		add("--11------", 2, 3),
		add("--1122----", 2, 4, 5),
		add("--3122----", 2),
		remove("--31------", "2"),
		addLow("--31------", 2, 3),
	})

	require.Equal(t, []jointown.PersonID{"0", "1", "2", "3", "2"}, ids)
	require.Equal(t, 6, w.Step())
	require.Equal(t, 4, w.Persons())

	tier, ok := w.TierOf("2")
	require.True(t, ok)
	require.Equal(t, jointown.TierLowprio, tier)
	c, ok := w.Capital("2")
	require.True(t, ok)
	require.Zero(t, c)
}

func TestWorld_ChainedExchangeScenario(t *testing.T) {
	w, err := jointown.New(13)
	require.NoError(t, err)

	run(t, w, []step{
		add("00000--------", 0, 1, 2, 3, 4),
		add("00100111-----", 2, 3, 4, 5, 6, 7),
		add("22000111-----", 0, 1, 2, 3),
		remove("00100111-----", "2"),
		addLow("0010011122222", 6, 7, 8, 9, 10, 11, 12),
		addLow("0010011133222", 5, 6, 7, 8, 9, 10),
		add("0011044143322", 5, 6, 7, 8),
	})

	snap := w.Snapshot()
	require.Equal(t, map[jointown.PersonID]int{"0": 3, "1": 3, "2": 2, "3": 2, "4": 3}, snap.Capitals)
	require.Equal(t, []jointown.PersonID{"0", "1", "4"}, snap.Members(jointown.TierNormal))
	require.Equal(t, []jointown.PersonID{"2", "3"}, snap.Members(jointown.TierLowprio))
}

func TestWorld_NamedPersons(t *testing.T) {
	w, err := jointown.New(10)
	require.NoError(t, err)

	id, err := w.AddPerson("Vasia", jointown.NewDomain(1, 2, 3), false)
	require.NoError(t, err)
	require.Equal(t, jointown.PersonID("Vasia"), id)
	require.Equal(t, []jointown.PersonID{"", "Vasia", "Vasia", "Vasia", "", "", "", "", "", ""}, w.Owners())

	id, err = w.AddPerson("", jointown.NewDomain(1, 2, 3, 4), true)
	require.NoError(t, err)
	require.Equal(t, jointown.PersonID("1"), id)
	require.Equal(t, "-VVV1-----", w.Ownership())
	require.Equal(t, 2, w.Persons())
	require.Equal(t, 2, w.Step())

	ok, err := w.RemovePerson("1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "-VVV------", w.Ownership())
	require.Equal(t, 1, w.Persons())
	require.Equal(t, 3, w.Step())
	require.Equal(t, "World: 1 persons. Ownership = -VVV------", w.String())
}

type recordingMetrics struct {
	*metrics.NopMetrics
	notFound  atomic.Int64
	evictions atomic.Int64
	dropped   atomic.Int64
	steps     atomic.Int64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{NopMetrics: metrics.NewNop()}
}

func (m *recordingMetrics) RecordPersonNotFound()          { m.notFound.Add(1) }
func (m *recordingMetrics) RecordEvictions(count int)      { m.evictions.Add(int64(count)) }
func (m *recordingMetrics) RecordSnapshotDropped()         { m.dropped.Add(1) }
func (m *recordingMetrics) RecordStep(_ string, _ float64) { m.steps.Add(1) }

func TestWorld_RemoveUnknownPerson(t *testing.T) {
	rec := newRecordingMetrics()
	w, err := jointown.New(5, jointown.WithMetrics(rec), jointown.WithLogger(jttest.NewTestLogger(t)))
	require.NoError(t, err)

	_, err = w.AddPerson("a", jointown.NewDomain(0, 1), false)
	require.NoError(t, err)

	ok, err := w.RemovePerson("ghost")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, w.Step())
	require.Equal(t, 1, w.Persons())
	require.Equal(t, "aa---", w.Ownership())
	require.EqualValues(t, 1, rec.notFound.Load())
	require.EqualValues(t, 1, rec.steps.Load())
}

func TestWorld_AddPersonValidation(t *testing.T) {
	w, err := jointown.New(4)
	require.NoError(t, err)

	_, err = w.AddPerson("a", jointown.NewDomain(1, 4), false)
	require.ErrorIs(t, err, jointown.ErrObjectOutOfRange)

	_, err = w.AddPerson("a", jointown.NewDomain(-1, 2), false)
	require.ErrorIs(t, err, jointown.ErrObjectOutOfRange)

	_, err = w.AddPerson("a", jointown.NewDomain(0), true)
	require.NoError(t, err)
	_, err = w.AddPerson("a", jointown.NewDomain(1), false)
	require.ErrorIs(t, err, jointown.ErrDuplicateMember)

	require.Equal(t, 1, w.Step())
	require.Equal(t, "a---", w.Ownership())
}

func TestWorld_EmptyWorld(t *testing.T) {
	w, err := jointown.New(0)
	require.NoError(t, err)

	id, err := w.AddPerson("", jointown.Domain{}, false)
	require.NoError(t, err)
	require.Equal(t, jointown.PersonID("0"), id)
	require.Empty(t, w.Ownership())
	require.Zero(t, w.Objects())
}

func TestWorld_NewWorldRejectsInvalidConfig(t *testing.T) {
	_, err := jointown.NewWorld(nil)
	require.ErrorIs(t, err, jointown.ErrInvalidConfig)

	_, err = jointown.New(-1)
	require.ErrorIs(t, err, jointown.ErrInvalidConfig)
}

func TestWorld_NormalEvictsLowprio(t *testing.T) {
	rec := newRecordingMetrics()
	w, err := jointown.New(6, jointown.WithMetrics(rec))
	require.NoError(t, err)

	_, err = w.AddPerson("low", jointown.DomainRange(0, 6), true)
	require.NoError(t, err)
	require.Equal(t, "llllll", w.Ownership())

	_, err = w.AddPerson("Norm", jointown.NewDomain(1, 2, 3), false)
	require.NoError(t, err)
	require.Equal(t, "lNNNll", w.Ownership())
	require.EqualValues(t, 3, rec.evictions.Load())

	// objects go back to the lowprio tier once no normal person wants them
	_, err = w.RemovePerson("Norm")
	require.NoError(t, err)
	require.Equal(t, "llllll", w.Ownership())
}

func TestWorld_RemovedObjectsPreferSameTier(t *testing.T) {
	w, err := jointown.New(4)
	require.NoError(t, err)

	_, err = w.AddPerson("A", jointown.NewDomain(0, 1), false)
	require.NoError(t, err)
	_, err = w.AddPerson("b", jointown.NewDomain(1, 2, 3), true)
	require.NoError(t, err)
	_, err = w.AddPerson("C", jointown.NewDomain(1), false)
	require.NoError(t, err)
	require.Equal(t, "ACbb", w.Ownership())

	_, err = w.RemovePerson("C")
	require.NoError(t, err)
	owner := w.Owners()[1]
	require.Equal(t, jointown.PersonID("A"), owner, "normal heir beats lowprio")
}

func TestWorld_Subscribe(t *testing.T) {
	w, err := jointown.New(3)
	require.NoError(t, err)

	ch, unsubscribe := w.Subscribe()

	initial, err := testutil.WaitStep(ch, 0, time.Second)
	require.NoError(t, err)
	require.Equal(t, "---", initial.Ownership())

	_, err = w.AddPerson("x", jointown.NewDomain(0, 2), false)
	require.NoError(t, err)

	snap, err := testutil.WaitStep(ch, 1, time.Second)
	require.NoError(t, err)
	require.Equal(t, "x-x", snap.Ownership())
	require.Equal(t, map[jointown.PersonID]int{"x": 2}, snap.Capitals)

	unsubscribe()
	_, open := <-ch
	require.False(t, open)
	unsubscribe()
}

func TestWorld_SlowSubscriberDropsSnapshots(t *testing.T) {
	rec := newRecordingMetrics()
	cfg := jointown.TestConfig()
	cfg.SubscriberBuffer = 1
	w, err := jointown.NewWorld(&cfg, jointown.WithMetrics(rec))
	require.NoError(t, err)

	_, unsubscribe := w.Subscribe()
	defer unsubscribe()

	for i := range 3 {
		_, err := w.AddPerson("", jointown.NewDomain(i), false)
		require.NoError(t, err)
	}
	require.EqualValues(t, 3, rec.dropped.Load())
}

func TestWorld_RandomFlowKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := range 5 {
		objects := 10 + rng.IntN(30)
		w, err := jointown.New(objects)
		require.NoError(t, err)
		domains := map[jointown.PersonID]jointown.Domain{}

		for i := range 60 {
			if len(domains) > 0 && rng.IntN(3) == 0 {
				victim := pick(rng, domains)
				ok, err := w.RemovePerson(victim)
				require.NoError(t, err)
				require.True(t, ok)
				delete(domains, victim)
			} else {
				d := testutil.RandomWindow(rng, objects, 1+rng.IntN(objects/2+1))
				id, err := w.AddPerson(jointown.NoOwner, d, rng.IntN(3) == 0)
				require.NoError(t, err, "round %d event %d", round, i)
				domains[id] = d
			}

			snap := w.Snapshot()
			testutil.AssertSnapshotConsistent(t, snap, domains)
			require.Equal(t, len(domains), w.Persons())
		}
	}
}

func TestWorld_FullDomainsAreEven(t *testing.T) {
	w, err := jointown.New(23)
	require.NoError(t, err)

	for range 5 {
		_, err := w.AddPerson("", jointown.DomainRange(0, 23), false)
		require.NoError(t, err)
		require.LessOrEqual(t, testutil.CapitalSpread(w.Snapshot(), jointown.TierNormal), 1)
	}
	_, err = w.RemovePerson("2")
	require.NoError(t, err)
	require.LessOrEqual(t, testutil.CapitalSpread(w.Snapshot(), jointown.TierNormal), 1)
}

func TestWorld_ConcurrentAccess(t *testing.T) {
	w, err := jointown.New(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := jointown.PersonID("p" + strconv.Itoa(g))
			for i := range 20 {
				_, err := w.AddPerson(id, jointown.DomainRange(g*4, g*4+16), i%2 == 0)
				assert.NoError(t, err)
				_ = w.Ownership()
				_ = w.Snapshot()
				ok, err := w.RemovePerson(id)
				assert.NoError(t, err)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 0, w.Persons())
	require.Equal(t, 8*20*2, w.Step())
	require.Equal(t, 64, w.Snapshot().FreeObjects())
}

func pick(rng *rand.Rand, domains map[jointown.PersonID]jointown.Domain) jointown.PersonID {
	keys := make([]jointown.PersonID, 0, len(domains))
	for k := range domains {
		keys = append(keys, k)
	}
	// map order is random
	slices.Sort(keys)

	return keys[rng.IntN(len(keys))]
}
