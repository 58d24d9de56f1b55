package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conductor/internal/config"
)

func sleeperConfig() config.Config {
	return config.Config{Services: []config.ServiceConfig{
		{ID: "db", Command: "sleep", Args: []string{"30"}, Restart: "transient", AutoStart: true},
		{ID: "api", Command: "sleep", Args: []string{"30"}, Needs: []string{"db"},
			Restart: "transient", AutoStart: true},
	}}
}

func runningIDs(t *testing.T, a *App) map[string]bool {
	t.Helper()
	ids := map[string]bool{}
	for _, s := range a.Coordinator().Specs(context.Background()) {
		ids[s.ID] = true
	}
	return ids
}

func TestNewBuildsApp(t *testing.T) {
	a, err := New(config.Config{}, "")
	require.NoError(t, err)

	assert.NotNil(t, a.Coordinator())
	assert.NotNil(t, a.Catalog())

	// Nothing is running, so shutdown drains immediately.
	require.NoError(t, a.Shutdown(context.Background()))
}

func TestRunStartsAutoStartServices(t *testing.T) {
	a, err := New(sleeperConfig(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		ids := runningIDs(t, a)
		return ids["db"] && ids["api"]
	}, 5*time.Second, 20*time.Millisecond, "autoStart services did not come up")

	cancel()
	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	require.NoError(t, a.Shutdown(shutdownCtx))
	assert.Empty(t, runningIDs(t, a))
}

func TestRunFailsOnMissingBinary(t *testing.T) {
	cfg := config.Config{Services: []config.ServiceConfig{
		{ID: "ghost", Command: "/nonexistent/conductor-test-binary",
			Restart: "transient", AutoStart: true},
	}}
	a, err := New(cfg, "")
	require.NoError(t, err)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")

	require.NoError(t, a.Shutdown(context.Background()))
}

func TestShutdownDrainsNeedsFirst(t *testing.T) {
	a, err := New(sleeperConfig(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(runningIDs(t, a)) == 2
	}, 5*time.Second, 20*time.Millisecond)

	// While api runs, db is not stoppable; Shutdown has to take api down
	// first and still drain everything.
	ok, err := a.Coordinator().CanStop(context.Background(), mustCatalogSpec(t, a, "db"))
	require.NoError(t, err)
	assert.False(t, ok)

	cancel()
	<-runDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	require.NoError(t, a.Shutdown(shutdownCtx))
	assert.Empty(t, runningIDs(t, a))
}

func mustCatalogSpec(t *testing.T, a *App, id string) interface{} {
	t.Helper()
	s, err := a.Catalog().Spec(id)
	require.NoError(t, err)
	return s
}
