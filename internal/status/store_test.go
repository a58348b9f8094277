package status

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/liminalpurple/evastatus/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingSlot returns errors from every call
type failingSlot struct {
	getErr error
	setErr error
}

func (f *failingSlot) Get(ctx context.Context, key string) ([]byte, error) { return nil, f.getErr }
func (f *failingSlot) Set(ctx context.Context, key string, value []byte) error {
	return f.setErr
}
func (f *failingSlot) Close() error { return nil }

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.March, 7, 9, 5, 0, 0, time.Local)
	}
}

func newTestStore(t *testing.T, slot storage.Slot) *Store {
	t.Helper()
	return NewStore(slot, WithClock(fixedClock()))
}

func TestLoad_EmptySlotGivesDefaults(t *testing.T) {
	store := newTestStore(t, storage.NewMemorySlot())

	res := store.Load(context.Background())

	assert.Equal(t, LoadFresh, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, DefaultState(), store.Snapshot())
}

func TestRecordStatus_Scenario(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())
	store.Load(ctx)

	entry, err := store.RecordStatus(ctx, "Погуляли", Flags{Walk: true}, "8")
	require.NoError(t, err)

	cur := store.CurrentStatus()
	require.NotNil(t, cur)
	assert.Equal(t, "Погуляли", cur.Text)
	require.NotNil(t, cur.Mood)
	assert.Equal(t, 8.0, *cur.Mood)
	assert.True(t, cur.Walk)
	assert.Equal(t, "07.03 09:05", cur.Time)
	assert.Equal(t, entry, *cur)
	assert.Len(t, store.Snapshot().History, 1)
}

func TestRecordStatus_HistoryCap(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())

	for i := 0; i < 105; i++ {
		_, err := store.RecordStatus(ctx, fmt.Sprintf("e%d", i), Flags{}, "")
		require.NoError(t, err)
	}

	history := store.Snapshot().History
	require.Len(t, history, MaxHistory)
	assert.Equal(t, "e5", history[0].Text)
	assert.Equal(t, "e104", history[99].Text)
	for i, e := range history {
		assert.Equal(t, fmt.Sprintf("e%d", i+5), e.Text)
	}
}

func TestRecordStatus_CurrentMatchesLastHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())

	for i := 0; i < 3; i++ {
		_, err := store.RecordStatus(ctx, fmt.Sprintf("s%d", i), Flags{Eat: i%2 == 0}, fmt.Sprint(i))
		require.NoError(t, err)

		snap := store.Snapshot()
		require.NotNil(t, snap.CurrentStatus)
		assert.Equal(t, snap.History[len(snap.History)-1], *snap.CurrentStatus)
	}
}

func TestRecordStatus_AcceptsEmptyInput(t *testing.T) {
	store := newTestStore(t, storage.NewMemorySlot())

	entry, err := store.RecordStatus(context.Background(), "", Flags{}, "")
	require.NoError(t, err)

	assert.Equal(t, "", entry.Text)
	assert.Nil(t, entry.Mood)
	assert.Empty(t, entry.Names())
}

func TestNormalizeMood(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"", nil},
		{"   ", nil},
		{"7", ptr(7)},
		{"0", ptr(0)},
		{" 10 ", ptr(10)},
		{"7.5", ptr(7.5)},
		{"-1", ptr(-1)},
		{"abc", nil},
		{"NaN", nil},
		{"Infinity", nil},
		{"1e400", nil},
		{"1e3", ptr(1000)},
		{".5", ptr(0.5)},
		{"5.", ptr(5)},
		{"+3", ptr(3)},
		{"1_0", nil},
		{"0x1A", ptr(26)},
		{"0X1a", ptr(26)},
		{"0o17", ptr(15)},
		{"0b101", ptr(5)},
		{"0x", nil},
		{"0x1_A", nil},
		{"-0x1A", nil},
		{"0x-1", nil},
		{"0x1p4", nil},
		{"inf", nil},
		{"nan", nil},
		{"8/10", nil},
		{"7 5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMood(tt.raw))
		})
	}
}

func TestClearHistory_KeepsCurrentStatus(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())

	_, err := store.RecordStatus(ctx, "Спит", Flags{}, "5")
	require.NoError(t, err)
	require.NoError(t, store.ClearHistory(ctx))

	snap := store.Snapshot()
	assert.Empty(t, snap.History)
	require.NotNil(t, snap.CurrentStatus)
	assert.Equal(t, "Спит", snap.CurrentStatus.Text)
}

func TestWalkCounter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())

	prev := store.WalkCount()
	for i := 0; i < 4; i++ {
		n, err := store.IncrementWalk(ctx)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
	assert.Equal(t, 4, store.WalkCount())

	require.NoError(t, store.ResetWalk(ctx))
	assert.Equal(t, 0, store.WalkCount())

	require.NoError(t, store.ResetWalk(ctx))
	assert.Equal(t, 0, store.WalkCount())
}

func TestAddPhotos_Cap(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())

	var all []string
	for batch := 0; batch < 5; batch++ {
		var images []string
		for i := 0; i < 7; i++ {
			images = append(images, fmt.Sprintf("data:image/png;base64,%d-%d", batch, i))
		}
		all = append(all, images...)
		require.NoError(t, store.AddPhotos(ctx, images...))
		assert.LessOrEqual(t, len(store.Photos()), MaxPhotos)
	}

	assert.Equal(t, all[len(all)-MaxPhotos:], store.Photos())
}

func TestAddPhotos_OneAtATime(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())

	for i := 0; i < 23; i++ {
		require.NoError(t, store.AddPhotos(ctx, fmt.Sprintf("p%d", i)))
	}

	photos := store.Photos()
	require.Len(t, photos, MaxPhotos)
	assert.Equal(t, "p3", photos[0])
	assert.Equal(t, "p22", photos[19])
}

func TestAddPhotos_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.AddPhotos(ctx, fmt.Sprintf("p%d", i)))
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Photos(), MaxPhotos)
}

func TestClearPhotos(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())

	require.NoError(t, store.AddPhotos(ctx, "a", "b"))
	require.NoError(t, store.ClearPhotos(ctx))
	assert.Empty(t, store.Photos())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	store := newTestStore(t, slot)

	_, err := store.RecordStatus(ctx, "Поели", Flags{Eat: true, Cold: true}, "0")
	require.NoError(t, err)
	_, err = store.RecordStatus(ctx, "", Flags{}, "")
	require.NoError(t, err)
	_, err = store.IncrementWalk(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AddPhotos(ctx, "data:image/png;base64,AAAA"))
	require.NoError(t, store.Save(ctx))

	fresh := newTestStore(t, slot)
	res := fresh.Load(ctx)

	assert.Equal(t, LoadRestored, res.Outcome)
	assert.Equal(t, store.Snapshot(), fresh.Snapshot())

	// Mood 0 survives the round trip
	require.NotNil(t, fresh.Snapshot().History[0].Mood)
	assert.Equal(t, 0.0, *fresh.Snapshot().History[0].Mood)
}

func TestLoad_CorruptPayload(t *testing.T) {
	payloads := []string{
		"{not json",
		`{"history": 5}`,
		`{"walkCount": "many"}`,
		`[1, 2, 3]`,
		`{"currentStatus": {"text": 12}}`,
	}

	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			ctx := context.Background()
			slot := storage.NewMemorySlot()
			require.NoError(t, slot.Set(ctx, DefaultKey, []byte(p)))

			store := newTestStore(t, slot)
			store.state.WalkCount = 7
			res := store.Load(ctx)

			assert.Equal(t, LoadRecovered, res.Outcome)
			assert.Error(t, res.Err)
			assert.Equal(t, DefaultState(), store.Snapshot())
		})
	}
}

func TestLoad_ReadErrorRecovers(t *testing.T) {
	store := newTestStore(t, &failingSlot{getErr: errors.New("disk on fire")})

	res := store.Load(context.Background())

	assert.Equal(t, LoadRecovered, res.Outcome)
	assert.ErrorContains(t, res.Err, "disk on fire")
	assert.Equal(t, DefaultState(), store.Snapshot())
}

func TestLoad_PartialSnapshotMergesOverDefaults(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	require.NoError(t, slot.Set(ctx, DefaultKey, []byte(`{"walkCount": 3, "history": null}`)))

	store := newTestStore(t, slot)
	res := store.Load(ctx)

	assert.Equal(t, LoadRestored, res.Outcome)
	snap := store.Snapshot()
	assert.Equal(t, 3, snap.WalkCount)
	assert.Nil(t, snap.CurrentStatus)
	assert.NotNil(t, snap.History)
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.Photos)
}

func TestLoad_OriginalPayloadFormat(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	payload := `{"currentStatus":{"text":"Гуляем","walk":true,"eat":false,"drink":false,"play":true,"cold":false,"mood":null,"time":"01.02 10:30"},` +
		`"history":[{"text":"Гуляем","walk":true,"eat":false,"drink":false,"play":true,"cold":false,"mood":null,"time":"01.02 10:30"}],` +
		`"walkCount":2,"photos":["data:image/jpeg;base64,/9j/"]}`
	require.NoError(t, slot.Set(ctx, DefaultKey, []byte(payload)))

	store := newTestStore(t, slot)
	res := store.Load(ctx)
	require.Equal(t, LoadRestored, res.Outcome)

	cur := store.CurrentStatus()
	require.NotNil(t, cur)
	assert.Equal(t, "Гуляем", cur.Text)
	assert.Equal(t, []string{FlagWalk, FlagPlay}, cur.Names())
	assert.Nil(t, cur.Mood)
	assert.Equal(t, 2, store.WalkCount())
	assert.Equal(t, []string{"data:image/jpeg;base64,/9j/"}, store.Photos())
}

func TestLoad_OversizedSnapshotIsTrimmed(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()

	state := DefaultState()
	for i := 0; i < 120; i++ {
		state.History = append(state.History, Entry{Text: fmt.Sprintf("h%d", i)})
	}
	for i := 0; i < 25; i++ {
		state.Photos = append(state.Photos, fmt.Sprintf("p%d", i))
	}
	state.WalkCount = -4

	writer := NewStore(slot)
	writer.state = state
	require.NoError(t, writer.Save(ctx))

	store := newTestStore(t, slot)
	store.Load(ctx)
	snap := store.Snapshot()

	assert.Len(t, snap.History, MaxHistory)
	assert.Equal(t, "h20", snap.History[0].Text)
	assert.Len(t, snap.Photos, MaxPhotos)
	assert.Equal(t, "p5", snap.Photos[0])
	assert.Equal(t, 0, snap.WalkCount)
}

func TestMutation_PersistErrorKeepsMemoryState(t *testing.T) {
	store := newTestStore(t, &failingSlot{setErr: errors.New("read-only")})

	n, err := store.IncrementWalk(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.WalkCount())
}

func TestWithKey(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	store := NewStore(slot, WithKey("other_v1"))

	_, err := store.IncrementWalk(ctx)
	require.NoError(t, err)

	_, err = slot.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = slot.Get(ctx, "other_v1")
	assert.NoError(t, err)
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())
	_, err := store.RecordStatus(ctx, "x", Flags{}, "3")
	require.NoError(t, err)

	snap := store.Snapshot()
	*snap.CurrentStatus.Mood = 99
	snap.History[0].Text = "changed"

	assert.Equal(t, 3.0, *store.CurrentStatus().Mood)
	assert.Equal(t, "x", store.Snapshot().History[0].Text)
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot())
	for _, text := range []string{"a", "b", "c"} {
		_, err := store.RecordStatus(ctx, text, Flags{}, "")
		require.NoError(t, err)
	}

	var texts []string
	for _, e := range store.HistoryNewestFirst() {
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"c", "b", "a"}, texts)
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"walk", " Cold ", ""})
	require.NoError(t, err)
	assert.Equal(t, Flags{Walk: true, Cold: true}, f)
	assert.Equal(t, []string{FlagWalk, FlagCold}, f.Names())

	_, err = ParseFlags([]string{"fly"})
	assert.Error(t, err)
}

func TestLoadOutcome_String(t *testing.T) {
	assert.Equal(t, "fresh", LoadFresh.String())
	assert.Equal(t, "restored", LoadRestored.String())
	assert.Equal(t, "recovered", LoadRecovered.String())
}

func ptr(v float64) *float64 {
	return &v
}

func TestRefresh_PicksUpWritesFromAnotherStore(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	bot := newTestStore(t, slot)
	cli := newTestStore(t, slot)
	bot.Load(ctx)
	cli.Load(ctx)

	_, err := bot.IncrementWalk(ctx)
	require.NoError(t, err)
	require.NoError(t, cli.Refresh(ctx))
	_, err = cli.RecordStatus(ctx, "Спит", Flags{}, "")
	require.NoError(t, err)

	require.NoError(t, bot.Refresh(ctx))
	n, err := bot.IncrementWalk(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	snap := bot.Snapshot()
	require.NotNil(t, snap.CurrentStatus)
	assert.Equal(t, "Спит", snap.CurrentStatus.Text)
	assert.Len(t, snap.History, 1)
}

func TestRefresh_KeepsStateWhenUnreadable(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	store := newTestStore(t, slot)
	store.Load(ctx)
	_, err := store.IncrementWalk(ctx)
	require.NoError(t, err)

	require.NoError(t, slot.Set(ctx, DefaultKey, []byte("{broken")))
	assert.Error(t, store.Refresh(ctx))
	assert.Equal(t, 1, store.WalkCount())

	failing := newTestStore(t, &failingSlot{getErr: errors.New("redis down")})
	failing.state.WalkCount = 4
	assert.ErrorContains(t, failing.Refresh(ctx), "redis down")
	assert.Equal(t, 4, failing.WalkCount())
}
