package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/famtree/cmd/famtree/internal/config"
	"github.com/recera/famtree/pkg/family"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 << 20, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.size))
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"})
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	l = newLogger(&buf, config.LogConfig{Level: "bogus", Format: "text"})
	l.Debug("hidden")
	l.Info("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, false))

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	assert.Error(t, runInit(dir, false))
	assert.NoError(t, runInit(dir, true))
}

func TestWatchDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","data":{"fn":"Jean","ln":"Marot"},"rels":{}}]`), 0644))

	people, err := family.Load(path)
	require.NoError(t, err)
	store := family.NewStore(people)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan family.Change, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchDataset(ctx, store, path, 20*time.Millisecond, func(c family.Change) { changes <- c })
	}()

	// let the watcher register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"1","data":{"fn":"Jean","ln":"Marot"},"rels":{}},
		{"id":"2","data":{"fn":"Ana","ln":"Marot"},"rels":{}}
	]`), 0644))

	select {
	case c := <-changes:
		assert.Equal(t, uint64(2), c.Revision)
		require.Len(t, c.Added, 1)
		assert.Equal(t, family.ID("2"), c.Added[0].ID)
		assert.Empty(t, c.Removed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}
	assert.Len(t, store.People(), 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
