package tabs

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/filterbox/internal/debounce"
	"github.com/Iron-Ham/filterbox/internal/errors"
	"github.com/Iron-Ham/filterbox/internal/logging"
)

// DefaultSaveDelay is how long SaveTabs waits for further changes.
const DefaultSaveDelay = 1000 * time.Millisecond

// Save outcomes reported to a SaveObserver.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// SaveObserver records autosave results. metrics.Recorder implements it.
type SaveObserver interface {
	ObserveSave(mode, outcome string, elapsed time.Duration)
}

// Options configures a Service.
type Options struct {
	Mode SavingMode
	// Local is required for SavingLocal. It is also cleared on SignOut in
	// any mode.
	Local *LocalStore
	// Remote is required for SavingRemote.
	Remote *RemoteStore
	// SaveDelay defaults to DefaultSaveDelay.
	SaveDelay time.Duration
	Logger    *logging.Logger
	Observer  SaveObserver
}

// Service owns the open tabs and persists them.
type Service struct {
	mode     SavingMode
	local    *LocalStore
	remote   *RemoteStore
	logger   *logging.Logger
	observer SaveObserver
	saver    *debounce.Debouncer[[]Tab]

	mu   sync.Mutex
	tabs []Tab
}

// NewService validates opts and returns a service with no tabs loaded.
func NewService(opts Options) (*Service, error) {
	switch opts.Mode {
	case SavingNone:
	case SavingLocal:
		if opts.Local == nil {
			return nil, errors.NewValidationError("local saving requires a local store").WithField("tabs.store_dir")
		}
	case SavingRemote:
		if opts.Remote == nil {
			return nil, errors.NewValidationError("remote saving requires a remote store").WithField("tabs.remote_url")
		}
	default:
		return nil, errors.NewValidationError("unknown saving mode").WithField("tabs.saving_mode").WithValue(opts.Mode)
	}

	delay := opts.SaveDelay
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	s := &Service{
		mode:     opts.Mode,
		local:    opts.Local,
		remote:   opts.Remote,
		logger:   opts.Logger.WithComponent("tabs"),
		observer: opts.Observer,
	}
	s.saver = debounce.New(delay, s.write,
		debounce.WithLogger[[]Tab](s.logger),
		debounce.WithOnError[[]Tab](func(err error) {
			s.logger.Error("autosave failed",
				"mode", s.mode.String(),
				"retryable", errors.IsRetryable(err),
				"error", err.Error())
		}),
	)
	return s, nil
}

// Mode returns the saving mode.
func (s *Service) Mode() SavingMode { return s.mode }

// Load replaces the in-memory tabs with the persisted ones. A store with no
// saved tabs loads as empty.
func (s *Service) Load(ctx context.Context) ([]Tab, error) {
	var (
		loaded []Tab
		err    error
	)
	switch s.mode {
	case SavingLocal:
		loaded, err = s.loadLocal(ctx)
	case SavingRemote:
		loaded, err = s.remote.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tabs = slices.Clone(loaded)
	s.mu.Unlock()
	s.logger.Debug("tabs loaded", "mode", s.mode.String(), "count", len(loaded))
	return loaded, nil
}

func (s *Service) loadLocal(ctx context.Context) ([]Tab, error) {
	data, err := s.local.Get(ctx, TabDataKey)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeTabs(data)
}

func decodeTabs(data []byte) ([]Tab, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var tabs []Tab
	if err := json.Unmarshal(data, &tabs); err != nil {
		return nil, errors.NewPersistenceError("failed to decode tabs", err).
			WithMode(SavingLocal.String()).
			WithKey(TabDataKey)
	}
	return tabs, nil
}

// Tabs returns a copy of the open tabs.
func (s *Service) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tabs)
}

// SetTabs replaces the open tabs and schedules a save.
func (s *Service) SetTabs(tabs []Tab) {
	s.mu.Lock()
	s.tabs = slices.Clone(tabs)
	s.mu.Unlock()
	s.SaveTabs()
}

// OpenTab appends tab unless a tab with the same URI is already open, and
// reports whether it was added.
func (s *Service) OpenTab(tab Tab) bool {
	s.mu.Lock()
	if IndexOf(s.tabs, tab.URI) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.tabs = append(s.tabs, tab)
	s.mu.Unlock()
	s.SaveTabs()
	return true
}

// CloseTab removes the tab with uri and reports whether one was open.
func (s *Service) CloseTab(uri string) bool {
	s.mu.Lock()
	i := IndexOf(s.tabs, uri)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tabs = slices.Delete(s.tabs, i, i+1)
	s.mu.Unlock()
	s.SaveTabs()
	return true
}

// SaveTabs schedules a save of the current tabs. Calls within the save
// delay coalesce; only the last list is written. It does nothing when the
// mode is SavingNone.
func (s *Service) SaveTabs() {
	if s.mode == SavingNone {
		return
	}
	s.saver.Schedule(s.Tabs())
}

// Pending reports whether a save is waiting to run.
func (s *Service) Pending() bool {
	return s.saver.Pending()
}

func (s *Service) write(ctx context.Context, tabs []Tab) error {
	start := time.Now()
	var err error
	switch s.mode {
	case SavingLocal:
		var data []byte
		data, err = json.Marshal(tabs)
		if err == nil {
			err = s.local.Save(ctx, TabDataKey, data)
		}
	case SavingRemote:
		err = s.remote.Save(ctx, tabs)
	}

	outcome := OutcomeOK
	switch {
	case err == nil:
		s.logger.Debug("tabs saved", "mode", s.mode.String(), "count", len(tabs))
	case errors.IsCanceled(err):
		outcome = OutcomeCanceled
	default:
		outcome = OutcomeError
	}
	if s.observer != nil {
		s.observer.ObserveSave(s.mode.String(), outcome, time.Since(start))
	}
	return err
}

// Flush writes a pending save immediately, or waits for one already running.
func (s *Service) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// SignOut drops any pending save, deletes locally stored data and forgets
// the open tabs.
func (s *Service) SignOut(ctx context.Context) error {
	s.saver.Stop()
	s.saver.Wait()

	s.mu.Lock()
	s.tabs = nil
	s.mu.Unlock()

	if s.local == nil {
		return nil
	}
	if err := s.local.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Info("signed out, local tab data deleted")
	return nil
}

// Watch reports tabs saved to the local store by other processes until ctx
// is done. It requires a local store.
func (s *Service) Watch(ctx context.Context, fn func([]Tab)) error {
	if s.local == nil {
		return errors.NewValidationError("watching requires a local store").WithField("tabs.store_dir")
	}
	return s.local.Watch(ctx, TabDataKey, func(data []byte) {
		tabs, err := decodeTabs(data)
		if err != nil {
			s.logger.Warn("ignoring unreadable tab data", "error", err.Error())
			return
		}
		fn(tabs)
	})
}

// Close flushes any pending save, waits for a save already running and
// stops the autosaver.
func (s *Service) Close(ctx context.Context) error {
	err := s.saver.Flush(ctx)
	s.saver.Stop()
	s.saver.Wait()
	return err
}
