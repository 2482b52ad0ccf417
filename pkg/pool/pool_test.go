package pool

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/testutil"
)

type widget struct {
	id    int
	state string
}

// sequentialFactory builds widgets with ids 1, 2, 3, ... in call order.
type sequentialFactory struct {
	next int
}

func (f *sequentialFactory) Create() *widget {
	f.next++
	return &widget{id: f.next}
}

func ids(ws []*widget) []int {
	out := make([]int, len(ws))
	for i, w := range ws {
		out[i] = w.id
	}
	return out
}

func newTestPool(t *testing.T, opts ...Option) (*Pool[*widget], *sequentialFactory) {
	t.Helper()
	f := &sequentialFactory{}
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New[*widget](f, opts...), f
}

func TestPool_WidgetScenario(t *testing.T) {
	log, logs := testutil.ObservedLogger(zapcore.WarnLevel)
	events := testutil.NewRecordingObserver()
	p := New[*widget](&sequentialFactory{}, WithName("widgets"), WithLogger(log), WithObserver(events))

	require.NoError(t, p.Prewarm(2))
	assert.Equal(t, []int{1, 2}, ids(p.available))
	assert.True(t, p.IsPrewarmed())

	assert.Equal(t, 2, p.Allocate().id)
	assert.Equal(t, []int{1}, ids(p.available))

	assert.Equal(t, 1, p.Allocate().id)
	assert.Empty(t, p.available)

	third := p.Allocate()
	assert.Equal(t, 3, third.id)

	p.Free(third)
	assert.Equal(t, []int{3}, ids(p.available))

	err := p.Prewarm(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyPrewarmed))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	assert.Equal(t, []int{3}, ids(p.available))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "widgets", entry.ContextMap()["pool"])
	assert.EqualValues(t, 5, entry.ContextMap()["requested"])

	assert.Equal(t, 3, events.Allocations["widgets"])
	assert.Equal(t, 2, events.Reused["widgets"])
	assert.Equal(t, 1, events.Frees["widgets"])
	assert.Equal(t, 1, events.Rejected["widgets"])
	assert.Equal(t, 1, events.Available["widgets"])
	assert.Equal(t, 2, events.Outstanding["widgets"])
}

func TestPool_PrewarmIdempotent(t *testing.T) {
	once, _ := newTestPool(t)
	require.NoError(t, once.Prewarm(4))

	twice, _ := newTestPool(t)
	require.NoError(t, twice.Prewarm(4))
	assert.ErrorIs(t, twice.Prewarm(9), ErrAlreadyPrewarmed)

	assert.Equal(t, once.Available(), twice.Available())
	assert.Equal(t, int64(4), twice.Stats().Constructed)
}

func TestPool_PrewarmZero(t *testing.T) {
	p, f := newTestPool(t)

	require.NoError(t, p.Prewarm(0))
	assert.True(t, p.IsPrewarmed())
	assert.Zero(t, p.Available())
	assert.Zero(t, f.next)
	assert.ErrorIs(t, p.Prewarm(3), ErrAlreadyPrewarmed)
}

func TestPool_PrewarmNegative(t *testing.T) {
	p, _ := newTestPool(t)

	err := p.Prewarm(-1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeCount)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.False(t, p.IsPrewarmed())
	assert.Zero(t, p.Available())
}

func TestPool_LIFOReuse(t *testing.T) {
	p, _ := newTestPool(t)
	require.NoError(t, p.Prewarm(3))

	got := []int{p.Allocate().id, p.Allocate().id, p.Allocate().id}
	assert.Equal(t, []int{3, 2, 1}, got)
}

func TestPool_ConstructOnDemand(t *testing.T) {
	p, f := newTestPool(t)

	w := p.Allocate()
	assert.Equal(t, 1, w.id)
	assert.Equal(t, 1, f.next)
	assert.False(t, p.IsPrewarmed())

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(0), stats.Hits)
}

func TestPool_RoundTrip(t *testing.T) {
	p, _ := newTestPool(t)
	require.NoError(t, p.Prewarm(2))

	x := p.Allocate()
	other := p.Allocate()
	p.Free(other)
	p.Free(x)

	assert.Same(t, x, p.Allocate())
}

func TestPool_AllocateN(t *testing.T) {
	p, _ := newTestPool(t)
	require.NoError(t, p.Prewarm(2))

	got := p.AllocateN(4)
	require.Len(t, got, 4)
	for i, w := range got {
		require.NotNil(t, w, "slot %d", i)
	}
	assert.Equal(t, []int{2, 1, 3, 4}, ids(got))
	assert.Empty(t, p.AllocateN(0))
	assert.Empty(t, p.AllocateN(-2))
}

func TestPool_FreeAll(t *testing.T) {
	p, _ := newTestPool(t)

	batch := p.AllocateN(3)
	p.FreeAll(batch)

	assert.Equal(t, []int{1, 2, 3}, ids(p.available))
	assert.Equal(t, 3, p.Allocate().id)
}

func TestPool_Dispose(t *testing.T) {
	p, f := newTestPool(t)
	require.NoError(t, p.Prewarm(3))
	held := p.Allocate()

	p.Dispose()
	assert.Zero(t, p.Available())
	assert.False(t, p.IsPrewarmed())
	assert.Equal(t, int64(1), p.Stats().Outstanding)

	require.NoError(t, p.Prewarm(1), "a disposed pool can be prewarmed again")
	assert.Equal(t, 4, f.next)

	p.Free(held)
	assert.Same(t, held, p.Allocate())
}

func TestPool_FactoryPanicPropagates(t *testing.T) {
	calls := 0
	f := FactoryFunc[*widget](func() *widget {
		calls++
		if calls > 1 {
			panic("out of widgets")
		}
		return &widget{id: calls}
	})
	p := New[*widget](f, WithLogger(zaptest.NewLogger(t)))

	assert.PanicsWithValue(t, "out of widgets", func() { _ = p.Prewarm(3) })
	assert.False(t, p.IsPrewarmed())
	assert.Zero(t, p.Available())

	assert.Panics(t, func() { p.Allocate() })
	assert.Zero(t, p.Stats().Allocations)
}

func TestPool_RecycleOnFree(t *testing.T) {
	f := NewFactory(
		func() *widget { return &widget{state: "new"} },
		func(w *widget) { w.state = "" },
	)
	p := New(f, WithLogger(zaptest.NewLogger(t)))

	w := p.Allocate()
	w.state = "dirty"
	p.Free(w)
	assert.Empty(t, w.state)
}

func TestNewFactoryWithoutReset(t *testing.T) {
	f := NewFactory(func() int { return 7 }, nil)
	_, ok := f.(Recycler[int])
	assert.False(t, ok)
	assert.Equal(t, 7, f.Create())
}

func TestPool_NilFactoryPanics(t *testing.T) {
	assert.Panics(t, func() { New[*widget](nil) })
}

func TestPool_Stats(t *testing.T) {
	p, _ := newTestPool(t)
	require.NoError(t, p.Prewarm(1))

	a := p.Allocate()
	b := p.Allocate()
	p.Free(a)

	s := p.Stats()
	assert.Equal(t, Stats{
		Constructed: 2,
		Allocations: 2,
		Hits:        1,
		Misses:      1,
		Frees:       1,
		Available:   1,
		Outstanding: 1,
	}, s)
	assert.InDelta(t, 0.5, s.HitRate(), 1e-9)
	assert.Zero(t, Stats{}.HitRate())
	_ = b
}

// TestPool_Exclusivity drives a random allocate/free sequence and checks that
// no instance is ever both outstanding and in the free list.
func TestPool_Exclusivity(t *testing.T) {
	p, _ := newTestPool(t)
	require.NoError(t, p.Prewarm(5))
	for _, w := range p.available {
		w.state = "pooled"
	}

	rng := rand.New(rand.NewSource(42))
	var held []*widget
	for step := 0; step < 2000; step++ {
		if len(held) == 0 || rng.Intn(2) == 0 {
			w := p.Allocate()
			require.NotEqual(t, "outstanding", w.state, "step %d: handed out twice", step)
			w.state = "outstanding"
			held = append(held, w)
		} else {
			i := rng.Intn(len(held))
			w := held[i]
			held = append(held[:i], held[i+1:]...)
			w.state = "pooled"
			p.Free(w)
		}

		seen := make(map[*widget]bool, len(p.available))
		for _, w := range p.available {
			require.Equal(t, "pooled", w.state, "step %d", step)
			require.False(t, seen[w], "step %d: duplicate free-list entry", step)
			seen[w] = true
		}
		require.Equal(t, int64(len(held)), p.Stats().Outstanding)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeRuntime},
		{in: "runtime", want: ModeRuntime},
		{in: " Authoring ", want: ModeAuthoring},
		{in: "editor", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "authoring", ModeAuthoring.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}
