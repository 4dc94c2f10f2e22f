package sessions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/chronicle-engine/internal/services"
	"github.com/jwebster45206/chronicle-engine/internal/storage"
	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/prompts"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

type countingObserver struct {
	engine.NopObserver
	finished int
}

func (c *countingObserver) OnTurnFinished(engine.TurnResult) { c.finished++ }

func newManager(t *testing.T, mock *services.MockCompletionService) (*Manager, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	m := NewManager(Options{
		Store:      store,
		Completion: mock,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		ModelName:  "test-model",
	})
	return m, store
}

func TestManager_CreateGetDelete(t *testing.T) {
	m, store := newManager(t, services.NewMockCompletionService())
	ctx := context.Background()

	snap, id, err := m.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, snap.Messages, 1)
	assert.Contains(t, snap.Messages[0].Text(), "test-model")

	stored, err := store.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "test-model", stored.ModelName)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, snap.Messages[0].ID, got.Messages[0].ID)

	require.NoError(t, m.Delete(ctx, id))
	_, err = m.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestManager_SubmitPersists(t *testing.T) {
	mock := services.NewMockCompletionService(
		services.ToolResponse(world.ToolCall{ID: "c1", Function: world.FunctionCall{
			Name: "update_currency", Arguments: `{"gold_delta":7}`}}),
		services.TextResponse("You are richer."),
	)
	m, _ := newManager(t, mock)
	ctx := context.Background()

	_, id, err := m.Create(ctx)
	require.NoError(t, err)

	result, snap, err := m.Submit(ctx, id, "Sell the gem.")
	require.NoError(t, err)
	assert.Equal(t, "You are richer.", result.Narration)
	assert.Equal(t, 7, snap.Currency.Gold)

	// Reloaded from the store.
	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Currency.Gold)
	assert.False(t, got.Loading)
	assert.Len(t, got.Messages, 5)
}

func TestManager_SubmitFailureStillSaved(t *testing.T) {
	mock := services.NewMockCompletionService(services.MockResponse{Err: errors.New("provider down")})
	m, _ := newManager(t, mock)
	ctx := context.Background()

	_, id, err := m.Create(ctx)
	require.NoError(t, err)

	_, snap, err := m.Submit(ctx, id, "Hello?")
	require.Error(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "provider down", snap.Error)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "provider down", got.Error)
}

func TestManager_SubmitUnknownSession(t *testing.T) {
	m, _ := newManager(t, services.NewMockCompletionService())
	_, _, err := m.Submit(context.Background(), "missing", "Hi.")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestManager_LockedSession(t *testing.T) {
	m, store := newManager(t, services.NewMockCompletionService())
	ctx := context.Background()

	_, id, err := m.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AcquireTurnLock(ctx, id, "other-process", time.Minute))

	_, _, err = m.Submit(ctx, id, "Hi.")
	assert.ErrorIs(t, err, engine.ErrTurnInProgress)
	_, err = m.Update(ctx, id, func(e *engine.Engine) error { return e.SetCurrency(world.Currency{Gold: 1}) })
	assert.ErrorIs(t, err, engine.ErrTurnInProgress)
}

func TestManager_UpdateDuringTurn(t *testing.T) {
	release := make(chan struct{})
	mock := services.NewMockCompletionService()
	mock.StreamFunc = func(_ context.Context, _ prompts.Request, _ services.ChunkFunc) (*world.Message, error) {
		<-release
		msg := world.NewAssistantMessage("Finally.")
		return &msg, nil
	}
	m, _ := newManager(t, mock)
	ctx := context.Background()

	_, id, err := m.Create(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, _, err := m.Submit(ctx, id, "Wait.")
		done <- err
	}()
	// Reads see the live turn.
	require.Eventually(t, func() bool {
		s, err := m.Get(ctx, id)
		return err == nil && s.Loading
	}, time.Second, time.Millisecond)

	_, err = m.Update(ctx, id, func(e *engine.Engine) error { return e.SetCurrency(world.Currency{Gold: 1}) })
	assert.ErrorIs(t, err, engine.ErrTurnInProgress)

	snap, err := m.Update(ctx, id, func(e *engine.Engine) error {
		e.TogglePanel(world.PanelInventory)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, world.PanelInventory, snap.ActivePanel)
	assert.ErrorIs(t, m.Delete(ctx, id), engine.ErrTurnInProgress)

	close(release)
	require.NoError(t, <-done)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, world.PanelInventory, got.ActivePanel)
	assert.Equal(t, "Finally.", got.LastAssistantText())
}

func TestManager_UpdatePersists(t *testing.T) {
	m, _ := newManager(t, services.NewMockCompletionService())
	ctx := context.Background()

	_, id, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Update(ctx, id, func(e *engine.Engine) error { return e.UpdateWorldPrompt("A sunken temple.") })
	require.NoError(t, err)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A sunken temple.", got.WorldPrompt)

	_, err = m.Update(ctx, id, func(e *engine.Engine) error { return e.DeleteMemory("missing") })
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestManager_ObserversAttached(t *testing.T) {
	obs := &countingObserver{}
	store := storage.NewMemoryStore()
	m := NewManager(Options{
		Store:      store,
		Completion: services.NewMockCompletionService(services.TextResponse("Hi.")),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Observers:  []ObserverFunc{func(string) engine.Observer { return obs }},
	})
	ctx := context.Background()

	_, id, err := m.Create(ctx)
	require.NoError(t, err)
	_, _, err = m.Submit(ctx, id, "Hello.")
	require.NoError(t, err)
	assert.Equal(t, 1, obs.finished)
}
