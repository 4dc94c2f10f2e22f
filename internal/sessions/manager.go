package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/chronicle-engine/internal/logger"
	"github.com/jwebster45206/chronicle-engine/internal/services"
	"github.com/jwebster45206/chronicle-engine/internal/storage"
	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// DefaultLockTTL bounds how long a crashed process can hold a session.
const DefaultLockTTL = 5 * time.Minute

// ObserverFunc builds the observer attached to every engine a Manager
// creates, for example an event broadcaster for the session.
type ObserverFunc func(sessionID string) engine.Observer

// Options configures a Manager.
type Options struct {
	Store        storage.Store
	Completion   services.CompletionService
	Observers    []ObserverFunc
	Logger       *slog.Logger
	ModelName    string
	WorldPrompt  string
	HistoryLimit int
	LockTTL      time.Duration
}

// Manager hosts sessions on top of a Store. Each request loads the stored
// snapshot into an engine, operates on it, and saves the result. Engines
// that are mid-turn stay resident so reads observe their progress.
type Manager struct {
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	running map[string]*engine.Engine
}

// NewManager creates a session manager.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LockTTL == 0 {
		opts.LockTTL = DefaultLockTTL
	}
	return &Manager{
		opts:    opts,
		logger:  opts.Logger,
		running: make(map[string]*engine.Engine),
	}
}

func (m *Manager) newEngine(id string, snap *world.Snapshot) *engine.Engine {
	e := engine.New(engine.Config{
		SessionID:    id,
		Completion:   m.opts.Completion,
		Logger:       m.logger,
		WorldPrompt:  m.opts.WorldPrompt,
		ModelName:    m.opts.ModelName,
		HistoryLimit: m.opts.HistoryLimit,
	}, snap)
	for _, fn := range m.opts.Observers {
		if o := fn(id); o != nil {
			e.AddObserver(o)
		}
	}
	return e
}

// Create starts a new session and persists it.
func (m *Manager) Create(ctx context.Context) (*world.Snapshot, string, error) {
	id := uuid.NewString()
	e := m.newEngine(id, nil)
	if err := m.save(ctx, e); err != nil {
		return nil, "", err
	}
	logger.WithSessionID(m.logger, id).Info("Session created")
	return e.Snapshot(), id, nil
}

// Get returns the current snapshot of a session.
func (m *Manager) Get(ctx context.Context, id string) (*world.Snapshot, error) {
	if e := m.resident(id); e != nil {
		return e.Snapshot(), nil
	}
	s, err := m.opts.Store.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Snapshot, nil
}

// Delete removes a session. A session mid-turn cannot be deleted.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if m.resident(id) != nil {
		return engine.ErrTurnInProgress
	}
	if err := m.opts.Store.DeleteSession(ctx, id); err != nil {
		return err
	}
	logger.WithSessionID(m.logger, id).Info("Session deleted")
	return nil
}

// Submit runs one turn under the session's turn lock. The session is saved
// whether the turn succeeded or failed; a failed turn is recorded in the
// snapshot and also returned.
func (m *Manager) Submit(ctx context.Context, id, text string) (*engine.TurnResult, *world.Snapshot, error) {
	owner := uuid.NewString()
	if err := m.lock(ctx, id, owner); err != nil {
		return nil, nil, err
	}
	defer m.unlock(id, owner)

	e, err := m.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	m.running[id] = e
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.running, id)
		m.mu.Unlock()
	}()

	result, turnErr := e.Submit(ctx, text)
	if errors.Is(turnErr, engine.ErrEmptyInput) {
		return nil, nil, turnErr
	}

	// The turn has ended; persist even if the request was cancelled.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := m.save(saveCtx, e); err != nil {
		return result, nil, err
	}
	return result, e.Snapshot(), turnErr
}

// Update applies fn to the session's engine and saves the result. While a
// turn is running in this process fn runs against the live engine, which
// refuses world edits but accepts panel changes; the turn's own save
// persists them.
func (m *Manager) Update(ctx context.Context, id string, fn func(e *engine.Engine) error) (*world.Snapshot, error) {
	if e := m.resident(id); e != nil {
		if err := fn(e); err != nil {
			return nil, err
		}
		return e.Snapshot(), nil
	}

	owner := uuid.NewString()
	if err := m.lock(ctx, id, owner); err != nil {
		return nil, err
	}
	defer m.unlock(id, owner)

	e, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	if err := m.save(ctx, e); err != nil {
		return nil, err
	}
	return e.Snapshot(), nil
}

func (m *Manager) resident(id string) *engine.Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running[id]
}

func (m *Manager) load(ctx context.Context, id string) (*engine.Engine, error) {
	s, err := m.opts.Store.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.newEngine(id, s.Snapshot), nil
}

func (m *Manager) save(ctx context.Context, e *engine.Engine) error {
	s := &storage.Session{
		ID:        e.ID(),
		ModelName: m.opts.ModelName,
		Snapshot:  e.Snapshot(),
	}
	if prev, err := m.opts.Store.LoadSession(ctx, e.ID()); err == nil {
		s.CreatedAt = prev.CreatedAt
	}
	if err := m.opts.Store.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// lock maps a held store lock to ErrTurnInProgress, so callers see one
// conflict error whether the turn runs here or in another process.
func (m *Manager) lock(ctx context.Context, id, owner string) error {
	err := m.opts.Store.AcquireTurnLock(ctx, id, owner, m.opts.LockTTL)
	if errors.Is(err, storage.ErrLocked) {
		return fmt.Errorf("%w: %w", engine.ErrTurnInProgress, err)
	}
	return err
}

func (m *Manager) unlock(id, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.opts.Store.ReleaseTurnLock(ctx, id, owner); err != nil {
		logger.WithError(logger.WithSessionID(m.logger, id), err).Warn("Failed to release turn lock")
	}
}
