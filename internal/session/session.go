// Package session owns the auth capability handed to the remote
// client and the logout path that clears every local cache. Session
// state is always injected, never looked up ambiently.
package session

import (
	"errors"
	"os"
	"strings"
	"sync"

	"wiltd/internal/activity"
	"wiltd/internal/providers"
	"wiltd/internal/store"
	"wiltd/internal/structures"
)

var ErrNoToken = errors.New("no session token")

// FileTokenSource reads the bearer token from a file on disk, so an
// external login flow can rotate it without restarting the daemon.
type FileTokenSource struct {
	path string

	mu sync.Mutex
}

func NewFileTokenSource(conf *structures.Config) *FileTokenSource {
	return &FileTokenSource{path: conf.API.TokenPath}
}

func (s *FileTokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", ErrNoToken
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Forget removes the stored token.
func (s *FileTokenSource) Forget() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clearable is anything holding per-user cached state.
type Clearable interface {
	Clear() error
}

// Manager is the logout coordinator: it drops the token and clears all
// per-user caches exactly once per logout signal.
type Manager struct {
	token     *FileTokenSource
	clearable []Clearable
	cache     *activity.Cache
	logger    providers.Logger

	mu        sync.Mutex
	loggedOut bool
}

func NewManager(token *FileTokenSource, weeks *store.ArtistWeekStore, tracks *store.TrackPlayStore, listenLater *store.ListenLaterStore, profile *store.ProfileCache, cache *activity.Cache, logger providers.Logger) *Manager {
	return &Manager{
		token:     token,
		clearable: []Clearable{weeks, tracks, listenLater, profile},
		cache:     cache,
		logger:    logger,
	}
}

// LoggedOut implements feed.Delegate. Repeated signals from multiple
// remote surfaces collapse into one logout.
func (m *Manager) LoggedOut() {
	m.mu.Lock()
	if m.loggedOut {
		m.mu.Unlock()
		return
	}
	m.loggedOut = true
	m.mu.Unlock()

	m.logger.Warnf(providers.TypeApp, "Session invalidated by backend, clearing local caches")
	if err := m.token.Forget(); err != nil {
		m.logger.Errorf(providers.TypeApp, "Unable to remove token: %s", err)
	}
	for _, c := range m.clearable {
		if err := c.Clear(); err != nil {
			m.logger.Errorf(providers.TypeApp, "Cache clear failed: %s", err)
		}
	}
	// The blob cache drains its write queue before deleting, so the
	// files are genuinely gone when this returns.
	if err := m.cache.Clear(); err != nil {
		m.logger.Errorf(providers.TypeApp, "Activity cache clear failed: %s", err)
	}
}

// Active reports whether a logout has happened this session.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.loggedOut
}
