package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func awaitReload(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload signal")
	}
}

func TestWatchConfigFile(t *testing.T) {
	setup := func(t *testing.T) (string, <-chan struct{}) {
		t.Helper()
		configPath := writeTestConfig(t)

		prev := cfgFile
		cfgFile = configPath
		t.Cleanup(func() { cfgFile = prev })

		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		reload, err := watchConfigFile(ctx, zerolog.Nop())
		require.NoError(t, err)
		return configPath, reload
	}

	t.Run("missing file disables watching", func(t *testing.T) {
		prev := cfgFile
		cfgFile = filepath.Join(t.TempDir(), "nonexistent.json")
		t.Cleanup(func() { cfgFile = prev })

		_, err := watchConfigFile(context.Background(), zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("signals on write", func(t *testing.T) {
		configPath, reload := setup(t)

		require.NoError(t, os.WriteFile(configPath, []byte(`{"mode": "local"}`), 0644))
		awaitReload(t, reload)
	})

	t.Run("survives rename replace", func(t *testing.T) {
		configPath, reload := setup(t)

		replace := func(body string) {
			tmp := configPath + ".tmp"
			require.NoError(t, os.WriteFile(tmp, []byte(body), 0644))
			require.NoError(t, os.Rename(tmp, configPath))
		}

		replace(`{"mode": "local"}`)
		awaitReload(t, reload)

		// A second atomic save must still be seen.
		replace(`{"mode": "platform"}`)
		awaitReload(t, reload)
	})

	t.Run("ignores sibling files", func(t *testing.T) {
		configPath, reload := setup(t)

		sibling := filepath.Join(filepath.Dir(configPath), "other.json")
		require.NoError(t, os.WriteFile(sibling, []byte("{}"), 0644))

		select {
		case <-reload:
			t.Fatal("sibling file triggered a reload")
		case <-time.After(200 * time.Millisecond):
		}
	})
}

func TestWatchStateSwap(t *testing.T) {
	first := &runtime{}
	state := &watchState{rt: first}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if state.current() == nil {
					t.Error("nil runtime observed")
					return
				}
			}
		}()
	}

	next := &runtime{}
	old := state.swap(next)
	wg.Wait()

	assert.Same(t, first, old)
	assert.Same(t, next, state.current())
}
