package testutil

import (
	"context"
	"sync"

	"wiltd/internal/models"
	"wiltd/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// LevelCount returns how many entries were recorded at the given level.
func (m *MockLogger) LevelCount(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
}

// MockCompressor implements activity.Compressor with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// FakeHistoryAPI implements api.HistoryAPI with injectable responses
// and records every call.
type FakeHistoryAPI struct {
	mu sync.Mutex

	TopArtistsPerWeekFn  func(from, to int64) ([]models.ArtistWeek, error)
	TopArtistFn          func(timeRange models.TimeRange, index int) (*models.TopArtistInfo, error)
	TopTrackFn           func(timeRange models.TimeRange, index int) (*models.TopTrackInfo, error)
	ArtistActivityFn     func(artistName string) ([]models.ActivityPoint, error)
	TrackHistoryBeforeFn func(limit int, before int64, artistQuery string) ([]models.TrackPlay, error)
	TrackHistoryAfterFn  func(limit int, after int64, artistQuery string) ([]models.TrackPlay, error)
	SearchArtistsFn      func(query string) ([]models.ArtistResult, error)

	TopArtistsCalls []WindowCall
	ActivityCalls   []string
	SearchCalls     []string
}

type WindowCall struct {
	From int64
	To   int64
}

func (f *FakeHistoryAPI) TopArtistsPerWeek(_ context.Context, from, to int64) ([]models.ArtistWeek, error) {
	f.mu.Lock()
	f.TopArtistsCalls = append(f.TopArtistsCalls, WindowCall{From: from, To: to})
	f.mu.Unlock()
	if f.TopArtistsPerWeekFn != nil {
		return f.TopArtistsPerWeekFn(from, to)
	}
	return nil, nil
}

func (f *FakeHistoryAPI) TopArtist(_ context.Context, timeRange models.TimeRange, index int) (*models.TopArtistInfo, error) {
	if f.TopArtistFn != nil {
		return f.TopArtistFn(timeRange, index)
	}
	return &models.TopArtistInfo{}, nil
}

func (f *FakeHistoryAPI) TopTrack(_ context.Context, timeRange models.TimeRange, index int) (*models.TopTrackInfo, error) {
	if f.TopTrackFn != nil {
		return f.TopTrackFn(timeRange, index)
	}
	return &models.TopTrackInfo{}, nil
}

func (f *FakeHistoryAPI) ArtistActivity(_ context.Context, artistName string) ([]models.ActivityPoint, error) {
	f.mu.Lock()
	f.ActivityCalls = append(f.ActivityCalls, artistName)
	f.mu.Unlock()
	if f.ArtistActivityFn != nil {
		return f.ArtistActivityFn(artistName)
	}
	return nil, nil
}

func (f *FakeHistoryAPI) TrackHistoryBefore(_ context.Context, limit int, before int64, artistQuery string) ([]models.TrackPlay, error) {
	if f.TrackHistoryBeforeFn != nil {
		return f.TrackHistoryBeforeFn(limit, before, artistQuery)
	}
	return nil, nil
}

func (f *FakeHistoryAPI) TrackHistoryAfter(_ context.Context, limit int, after int64, artistQuery string) ([]models.TrackPlay, error) {
	if f.TrackHistoryAfterFn != nil {
		return f.TrackHistoryAfterFn(limit, after, artistQuery)
	}
	return nil, nil
}

func (f *FakeHistoryAPI) SearchArtists(_ context.Context, query string) ([]models.ArtistResult, error) {
	f.mu.Lock()
	f.SearchCalls = append(f.SearchCalls, query)
	f.mu.Unlock()
	if f.SearchArtistsFn != nil {
		return f.SearchArtistsFn(query)
	}
	return nil, nil
}

// TopArtistsCallCount returns how many week windows were requested.
func (f *FakeHistoryAPI) TopArtistsCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.TopArtistsCalls)
}

// StaticToken implements api.TokenSource with a fixed value.
type StaticToken string

func (s StaticToken) Token() (string, error) {
	return string(s), nil
}
