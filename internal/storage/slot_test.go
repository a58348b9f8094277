package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/liminalpurple/evastatus/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slotContract checks the behaviour every Slot implementation must share
func slotContract(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	_, err := slot.Get(ctx, "evaStatusSite_v1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, slot.Set(ctx, "evaStatusSite_v1", []byte(`{"walkCount":1}`)))
	got, err := slot.Get(ctx, "evaStatusSite_v1")
	require.NoError(t, err)
	assert.Equal(t, `{"walkCount":1}`, string(got))

	// Set replaces the whole value
	require.NoError(t, slot.Set(ctx, "evaStatusSite_v1", []byte(`{}`)))
	got, err = slot.Get(ctx, "evaStatusSite_v1")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	// Keys are independent
	_, err = slot.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, slot.Set(ctx, "", []byte("x")))
	assert.Error(t, slot.Set(ctx, "../escape", []byte("x")))
}

func TestMemorySlot(t *testing.T) {
	slotContract(t, NewMemorySlot())
}

func TestMemorySlot_CopiesValues(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()

	value := []byte("abc")
	require.NoError(t, slot.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileSlot(t *testing.T) {
	slotContract(t, NewFileSlot(filepath.Join(t.TempDir(), "nested", "data")))
}

func TestFileSlot_WritesJSONFileAndNoTempLeftovers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	slot := NewFileSlot(dir)

	require.NoError(t, slot.Set(ctx, "evaStatusSite_v1", []byte("{}")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "evaStatusSite_v1.json", entries[0].Name())
	assert.Equal(t, filepath.Join(dir, "evaStatusSite_v1.json"), slot.Path("evaStatusSite_v1"))
}

func TestSQLiteSlot(t *testing.T) {
	slot, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "evastatus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	slotContract(t, slot)
}

func TestSQLiteSlot_ReopenKeepsDataAndSchemaVersion(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "evastatus.db")

	slot, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, slot.Set(ctx, "k", []byte("v")))
	require.NoError(t, slot.Close())

	slot, err = OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	got, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	var current int
	require.NoError(t, slot.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current))
	assert.Equal(t, SchemaVersion, current)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestRedisSlot(t *testing.T) {
	mr := miniredis.RunT(t)
	slot, err := OpenRedis(context.Background(), &redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	slotContract(t, slot)
	assert.True(t, mr.Exists("evaStatusSite_v1"))
}

func TestOpenRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenRedis(context.Background(), &redis.Options{Addr: addr, MaxRetries: -1})
	assert.Error(t, err)
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.StorageConfig
		want any
	}{
		{"file", config.StorageConfig{Backend: BackendFile, DataDir: dir}, &FileSlot{}},
		{"default", config.StorageConfig{DataDir: dir}, &FileSlot{}},
		{"sqlite", config.StorageConfig{Backend: BackendSQLite, SQLitePath: filepath.Join(dir, "s.db")}, &SQLiteSlot{}},
		{"redis", config.StorageConfig{Backend: BackendRedis, RedisAddr: mr.Addr()}, &RedisSlot{}},
		{"memory", config.StorageConfig{Backend: BackendMemory}, &MemorySlot{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := Open(ctx, tt.cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = slot.Close() })
			assert.IsType(t, tt.want, slot)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.StorageConfig{Backend: "tape"})
	assert.Error(t, err)

	_, err = Open(ctx, config.StorageConfig{Backend: BackendFile})
	assert.Error(t, err)
}
