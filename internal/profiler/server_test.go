package profiler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/reorder"
	"github.com/hay-kot/pear/internal/core/task"
	"github.com/hay-kot/pear/internal/pear"
)

type fixedState pear.Snapshot

func (f fixedState) Snapshot() pear.Snapshot { return pear.Snapshot(f) }

func startServer(t *testing.T, src StateSource) *Server {
	t.Helper()
	server := New(0, src, zerolog.Nop())
	require.NoError(t, server.Start(context.Background()), "Start() error")
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})
	return server
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := New(0, fixedState{}, zerolog.Nop())
	require.NoError(t, server.Start(context.Background()))
	assert.NotEmpty(t, server.Addr())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(shutdownCtx))
}

func TestServer_PprofEndpoints(t *testing.T) {
	server := startServer(t, fixedState{})
	baseURL := "http://" + server.Addr()

	for _, endpoint := range []string{"/debug/pprof/", "/debug/pprof/cmdline", "/debug/pprof/symbol"} {
		t.Run(endpoint, func(t *testing.T) {
			resp, err := http.Get(baseURL + endpoint)
			require.NoError(t, err, "GET %s error", endpoint)
			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestServer_State(t *testing.T) {
	img := "data:image/png;base64,AAAA"
	server := startServer(t, fixedState{
		Loaded:     true,
		Tasks:      []task.Task{{ID: "a", Text: "secret"}, {ID: "b", Text: "x", Completed: true}},
		Remaining:  1,
		Users:      []string{"Alice"},
		Background: background.State{Descriptor: background.Default, UploadedImage: &img},
		Drag:       reorder.State{Phase: reorder.Dragging, Source: "a"},
	})

	resp, err := http.Get("http://" + server.Addr() + "/debug/state")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	var got stateDump
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, stateDump{
		Loaded:     true,
		Tasks:      2,
		Remaining:  1,
		Users:      1,
		Background: "color:White",
		Image:      true,
		Drag:       "dragging",
		DragSource: "a",
	}, got)
}
