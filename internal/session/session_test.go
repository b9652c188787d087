package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiltd/internal/activity"
	"wiltd/internal/models"
	"wiltd/internal/store"
	"wiltd/internal/structures"
	"wiltd/internal/testutil"
)

func newTokenSource(t *testing.T, contents string) *FileTokenSource {
	t.Helper()
	conf := &structures.Config{}
	conf.API.TokenPath = filepath.Join(t.TempDir(), "token")
	if contents != "" {
		require.NoError(t, os.WriteFile(conf.API.TokenPath, []byte(contents), 0600))
	}
	return NewFileTokenSource(conf)
}

func TestFileTokenSource_ReadsAndTrims(t *testing.T) {
	s := newTokenSource(t, "  abc123\n")

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestFileTokenSource_MissingFile(t *testing.T) {
	s := newTokenSource(t, "")

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileTokenSource_EmptyFile(t *testing.T) {
	s := newTokenSource(t, "\n")

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileTokenSource_ForgetRemovesToken(t *testing.T) {
	s := newTokenSource(t, "abc123")

	require.NoError(t, s.Forget())
	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	// Forgetting again is fine.
	require.NoError(t, s.Forget())
}

type fakeActivityAPI struct{}

func (fakeActivityAPI) ArtistActivity(_ context.Context, _ string) ([]models.ActivityPoint, error) {
	return nil, nil
}

func newManagerFixture(t *testing.T) (*Manager, *store.ArtistWeekStore, *FileTokenSource) {
	t.Helper()

	conf := &structures.Config{}
	conf.Store.Path = filepath.Join(t.TempDir(), "wilt.db")
	conf.Feed.ProfileTTL = 24 * time.Hour
	conf.Activity.Dir = t.TempDir()
	conf.Activity.TTL = 240 * time.Hour

	logger := &testutil.MockLogger{}
	db, err := store.NewDB(conf, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	weeks := store.NewArtistWeekStore(db)
	tracks := store.NewTrackPlayStore(db)
	listenLater := store.NewListenLaterStore(db)
	profile := store.NewProfileCache(db, conf, nil, logger)

	cache, err := activity.NewCache(conf, fakeActivityAPI{}, &testutil.MockCompressor{}, logger)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	token := newTokenSource(t, "abc123")
	return NewManager(token, weeks, tracks, listenLater, profile, cache, logger), weeks, token
}

func TestManagerLoggedOut_ClearsStoresAndToken(t *testing.T) {
	m, weeks, token := newManagerFixture(t)

	require.NoError(t, weeks.BatchUpsert([]models.ArtistWeek{{
		Week:   "08-2018",
		Artist: "Pinegrove",
		Plays:  20,
		Date:   time.Date(2018, 2, 19, 0, 0, 0, 0, time.UTC),
	}}))

	m.LoggedOut()

	count, err := weeks.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = token.Token()
	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, m.Active())
}

func TestManagerLoggedOut_SecondSignalIsNoop(t *testing.T) {
	m, weeks, _ := newManagerFixture(t)

	m.LoggedOut()

	// Data written after the logout survives a repeated signal.
	require.NoError(t, weeks.BatchUpsert([]models.ArtistWeek{{
		Week:   "08-2018",
		Artist: "Pinegrove",
		Plays:  20,
		Date:   time.Date(2018, 2, 19, 0, 0, 0, 0, time.UTC),
	}}))
	m.LoggedOut()

	count, err := weeks.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
