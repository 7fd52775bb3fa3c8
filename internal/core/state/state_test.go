package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/kv"
	"github.com/hay-kot/pear/internal/core/task"
	"github.com/hay-kot/pear/internal/store/memory"
)

const pngURI = "data:image/png;base64,iVBORw0KGgo="

// brokenKeys fails reads and writes for selected keys.
type brokenKeys struct {
	kv.Store
	keys map[string]bool
}

var errBroken = errors.New("storage unavailable")

func (b *brokenKeys) Get(ctx context.Context, key string) (string, error) {
	if b.keys[key] {
		return "", errBroken
	}
	return b.Store.Get(ctx, key)
}

func (b *brokenKeys) Set(ctx context.Context, key, value string) error {
	if b.keys[key] {
		return errBroken
	}
	return b.Store.Set(ctx, key, value)
}

func newCodec(t *testing.T, seed map[string]string) (*Codec, *memory.Store) {
	t.Helper()
	store := memory.Seed(seed)
	return New(store, zerolog.Nop()), store
}

func TestLoad_EmptyStorage(t *testing.T) {
	c, _ := newCodec(t, nil)
	assert.Equal(t, DefaultSnapshot(), c.Load(context.Background()))
	assert.False(t, c.LegacyPending())
}

func TestLoad_IsolatesFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed tasks", func(t *testing.T) {
		c, _ := newCodec(t, map[string]string{
			KeyTasks: `{not json`,
			KeyUsers: `["Alice"]`,
		})
		snap := c.Load(ctx)
		assert.Empty(t, snap.Tasks)
		assert.Equal(t, []string{"Alice"}, snap.Users)
	})

	t.Run("malformed background", func(t *testing.T) {
		c, _ := newCodec(t, map[string]string{
			KeyTasks:      `[{"id":"1","text":"a","completed":false,"type":"work"}]`,
			KeyBackground: `{"backgroundDescriptor":{"kind":"video","value":"x"}}`,
		})
		snap := c.Load(ctx)
		require.Len(t, snap.Tasks, 1)
		assert.Equal(t, background.Default, snap.Background.Descriptor)
	})

	t.Run("unreadable users", func(t *testing.T) {
		store := &brokenKeys{
			Store: memory.Seed(map[string]string{KeyTasks: `[{"id":"1","text":"a"}]`}),
			keys:  map[string]bool{KeyUsers: true},
		}
		snap := New(store, zerolog.Nop()).Load(ctx)
		assert.Len(t, snap.Tasks, 1)
		assert.Equal(t, []string{}, snap.Users)
	})
}

func TestDecodeTasks_Migration(t *testing.T) {
	data := []byte(`[
		{"id":"1700000000000","text":"old","completed":true},
		{"id":"2","text":"typed","completed":false,"type":"work","assignee":"Bob"},
		{"id":"3","text":"empty type","completed":false,"type":""}
	]`)

	tasks, issues, err := DecodeTasks(data, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, tasks, 3)

	assert.Equal(t, task.TypePersonal, tasks[0].Type)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, task.TypeWork, tasks[1].Type)
	assert.Equal(t, "Bob", tasks[1].AssigneeName())
	assert.Equal(t, task.TypePersonal, tasks[2].Type)
}

func TestDecodeTasks_MigrationIsIdempotent(t *testing.T) {
	data := []byte(`[{"id":"1","text":"x","completed":false,"dueDate":"2026-01-02T15:04"}]`)

	first, _, err := DecodeTasks(data, time.UTC)
	require.NoError(t, err)
	enc1, err := EncodeTasks(first)
	require.NoError(t, err)

	second, issues, err := DecodeTasks(enc1, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, issues)
	enc2, err := EncodeTasks(second)
	require.NoError(t, err)

	assert.JSONEq(t, string(enc1), string(enc2))
	assert.Equal(t, task.TypePersonal, second[0].Type)
}

func TestDecodeTasks_DueDates(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-01-02T15:04:05Z", time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2026-01-02T15:04:05+02:00", time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC)},
		{"2026-01-02T15:04", time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)},
		{"2026-01-02", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDueDate(tt.in, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseDueDate("tomorrow", time.UTC)
	require.Error(t, err)
}

func TestDecodeTasks_InvalidRecords(t *testing.T) {
	data := []byte(`[
		{"id":"ok","text":"fine"},
		{"text":"no id"},
		{"id":"blank","text":"   "},
		{"id":"num","text":"x","completed":"yes"},
		42,
		{"id":"date","text":"bad date","dueDate":"someday"},
		{"id":"kind","text":"odd type","type":"chores"}
	]`)

	tasks, issues, err := DecodeTasks(data, time.UTC)
	require.NoError(t, err)

	ids := make([]string, len(tasks))
	for i, tk := range tasks {
		ids[i] = tk.ID
	}
	assert.Equal(t, []string{"ok", "date", "kind"}, ids)
	assert.Nil(t, tasks[1].DueDate)
	assert.Equal(t, task.DefaultType, tasks[2].Type)

	dropped := 0
	for _, issue := range issues {
		if issue.Dropped {
			dropped++
		}
	}
	assert.Equal(t, 4, dropped)
	assert.Len(t, issues, 6)
}

func TestDecodeTasks_NotAnArray(t *testing.T) {
	for _, in := range []string{`{}`, `"todos"`, ``} {
		_, _, err := DecodeTasks([]byte(in), time.UTC)
		assert.Error(t, err, "input %q", in)
	}

	tasks, _, err := DecodeTasks([]byte(`null`), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSaveTasks_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newCodec(t, nil)

	due := time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)
	want := []task.Task{
		{ID: "b", Text: "second", Type: task.TypeWork, DueDate: &due, Assignee: task.Ptr("Alice")},
		{ID: "a", Text: "first", Completed: true, Type: task.TypePersonal},
	}
	require.NoError(t, c.SaveTasks(ctx, want))

	got, err := c.LoadTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[1], got[1])
	assert.True(t, due.Equal(*got[0].DueDate))
	assert.Equal(t, "Alice", got[0].AssigneeName())
}

func TestSaveUsers_NilIsEmptyArray(t *testing.T) {
	ctx := context.Background()
	c, store := newCodec(t, nil)

	require.NoError(t, c.SaveUsers(ctx, nil))
	raw, err := store.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
}

func TestSaveIsolation(t *testing.T) {
	ctx := context.Background()
	store := &brokenKeys{Store: memory.New(), keys: map[string]bool{KeyTasks: true}}
	c := New(store, zerolog.Nop())

	require.ErrorIs(t, c.SaveTasks(ctx, []task.Task{{ID: "1", Text: "a"}}), errBroken)
	require.NoError(t, c.SaveUsers(ctx, []string{"Alice"}))

	users, err := c.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, users)
}

func TestLegacyBackground(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog color and image", func(t *testing.T) {
		c, store := newCodec(t, map[string]string{
			LegacyKeyColor: "#1E3A5F",
			LegacyKeyImage: pngURI,
		})

		st, err := c.LoadBackground(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Navy", st.Descriptor.Name)
		require.NotNil(t, st.UploadedImage)
		assert.Equal(t, pngURI, *st.UploadedImage)
		assert.True(t, c.LegacyPending())

		require.NoError(t, c.SaveBackground(ctx, st))
		assert.False(t, c.LegacyPending())

		keys, err := store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{KeyBackground}, keys)

		again, err := c.LoadBackground(ctx)
		require.NoError(t, err)
		assert.Equal(t, st, again)
	})

	t.Run("custom color", func(t *testing.T) {
		c, _ := newCodec(t, map[string]string{LegacyKeyColor: "#101010"})
		st, err := c.LoadBackground(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Custom", st.Descriptor.Name)
		assert.True(t, st.Descriptor.Dark)
		assert.Nil(t, st.UploadedImage)
	})

	t.Run("garbage falls back to default", func(t *testing.T) {
		c, _ := newCodec(t, map[string]string{LegacyKeyColor: "blue-ish", LegacyKeyImage: "nope"})
		st, err := c.LoadBackground(ctx)
		require.NoError(t, err)
		assert.Equal(t, background.Default, st.Descriptor)
		assert.Nil(t, st.UploadedImage)
		assert.True(t, c.LegacyPending())
	})

	t.Run("record wins over legacy keys", func(t *testing.T) {
		c, _ := newCodec(t, map[string]string{
			KeyBackground:  `{"backgroundDescriptor":{"kind":"gradient","name":"Ocean","value":"linear-gradient(135deg, #54A0FF 0%, #00D2D3 100%)","dark":false}}`,
			LegacyKeyColor: "#000000",
		})
		st, err := c.LoadBackground(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ocean", st.Descriptor.Name)
		assert.False(t, c.LegacyPending())
	})
}

func TestLoadBackground_DropsNonImageUpload(t *testing.T) {
	c, _ := newCodec(t, map[string]string{
		KeyBackground: `{"backgroundDescriptor":{"kind":"color","name":"White","value":"#FFFFFF","dark":false},"uploadedImage":"javascript:alert(1)"}`,
	})
	st, err := c.LoadBackground(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.UploadedImage)
}

func TestStale(t *testing.T) {
	ctx := context.Background()
	c, store := newCodec(t, nil)

	assert.True(t, c.Stale(ctx, KeyTasks), "unseen keys are stale")

	require.NoError(t, c.SaveTasks(ctx, nil))
	assert.False(t, c.Stale(ctx, KeyTasks), "own write")

	require.NoError(t, store.Set(ctx, KeyTasks, `[{"id":"x","text":"from elsewhere"}]`))
	assert.True(t, c.Stale(ctx, KeyTasks))

	_, err := c.LoadTasks(ctx)
	require.NoError(t, err)
	assert.False(t, c.Stale(ctx, KeyTasks))

	require.NoError(t, store.Delete(ctx, KeyTasks))
	assert.True(t, c.Stale(ctx, KeyTasks))
}

func TestEndToEnd_AddToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newCodec(t, nil)

	snap := c.Load(ctx)
	s := task.NewStore(nil)
	s.Replace(snap.Tasks)

	added, ok := s.Add("Buy milk", task.AddParams{})
	require.True(t, ok)
	require.NoError(t, c.SaveTasks(ctx, s.List()))

	_, ok = s.Toggle(added.ID)
	require.True(t, ok)
	require.NoError(t, c.SaveTasks(ctx, s.List()))

	reloaded := c.Load(ctx).Tasks
	require.Len(t, reloaded, 1)
	assert.Equal(t, task.Task{ID: added.ID, Text: "Buy milk", Completed: true, Type: task.TypePersonal}, reloaded[0])
}
