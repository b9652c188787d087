package store

import (
	"context"
	"database/sql"
	"time"

	json "github.com/goccy/go-json"

	"wiltd/internal/api"
	"wiltd/internal/models"
	"wiltd/internal/providers"
	"wiltd/internal/structures"
)

// ProfileAPI is the single-value lookup surface used by the profile
// cards. Both the remote client and ProfileCache implement it, so the
// cache slots in transparently in front of the network.
type ProfileAPI interface {
	TopArtist(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopArtistInfo, error)
	TopTrack(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopTrackInfo, error)
}

const (
	kindTopArtist = "top_artist"
	kindTopTrack  = "top_track"
)

// ProfileCache makes the profile lookups behave like a read-through
// cache with a fixed TTL. Values are never evicted proactively, only
// judged stale at read time. A failed cache write is logged and the
// freshly fetched value is still returned.
type ProfileCache struct {
	db     *DB
	remote ProfileAPI
	ttl    time.Duration
	logger providers.Logger
	now    func() time.Time
}

func NewProfileCache(db *DB, conf *structures.Config, remote ProfileAPI, logger providers.Logger) *ProfileCache {
	return &ProfileCache{
		db:     db,
		remote: remote,
		ttl:    conf.Feed.ProfileTTL,
		logger: logger,
		now:    time.Now,
	}
}

func (c *ProfileCache) TopArtist(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopArtistInfo, error) {
	var cached models.TopArtistInfo
	if c.lookup(kindTopArtist, timeRange, index, &cached) {
		return &cached, nil
	}

	artist, err := c.remote.TopArtist(ctx, timeRange, index)
	if err != nil {
		return nil, err
	}
	c.upsert(kindTopArtist, timeRange, index, artist)
	return artist, nil
}

func (c *ProfileCache) TopTrack(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopTrackInfo, error) {
	var cached models.TopTrackInfo
	if c.lookup(kindTopTrack, timeRange, index, &cached) {
		return &cached, nil
	}

	track, err := c.remote.TopTrack(ctx, timeRange, index)
	if err != nil {
		return nil, err
	}
	c.upsert(kindTopTrack, timeRange, index, track)
	return track, nil
}

// lookup reports whether a fresh value exists and decodes it into out.
// Any read problem counts as a miss; the remote call will repair it.
func (c *ProfileCache) lookup(kind string, timeRange models.TimeRange, index int, out interface{}) bool {
	const query = `
		SELECT payload, last_updated
		FROM profile_values
		WHERE kind = ? AND time_range = ? AND idx = ?`

	var payload string
	var lastUpdated int64
	err := c.db.conn.QueryRow(query, kind, string(timeRange), index).Scan(&payload, &lastUpdated)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		c.logger.Warnf(providers.TypeSync, "Profile cache read failed: %s", err)
		return false
	}
	if c.now().Sub(time.Unix(lastUpdated, 0)) >= c.ttl {
		return false
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		c.logger.Warnf(providers.TypeSync, "Profile cache payload corrupt: %s", err)
		return false
	}
	return true
}

// upsert is best-effort: a write failure must not fail the read that
// triggered it.
func (c *ProfileCache) upsert(kind string, timeRange models.TimeRange, index int, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warnf(providers.TypeSync, "Profile cache encode failed: %s", err)
		return
	}

	const upsert = `
		INSERT INTO profile_values (kind, time_range, idx, payload, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, time_range, idx) DO UPDATE SET
			payload      = excluded.payload,
			last_updated = excluded.last_updated`

	_, err = c.db.conn.Exec(upsert, kind, string(timeRange), index, string(payload), c.now().Unix())
	if err != nil {
		c.logger.Warnf(providers.TypeSync, "Profile cache write failed: %s", err)
	}
}

// Clear removes all cached profile values. Used on logout.
func (c *ProfileCache) Clear() error {
	if _, err := c.db.conn.Exec("DELETE FROM profile_values"); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}

var _ ProfileAPI = (*apiProfileAdapter)(nil)

// apiProfileAdapter narrows the full remote client to the ProfileAPI
// surface.
type apiProfileAdapter struct {
	api api.HistoryAPI
}

func NewProfileAPIAdapter(client api.HistoryAPI) ProfileAPI {
	return &apiProfileAdapter{api: client}
}

func (a *apiProfileAdapter) TopArtist(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopArtistInfo, error) {
	return a.api.TopArtist(ctx, timeRange, index)
}

func (a *apiProfileAdapter) TopTrack(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopTrackInfo, error) {
	return a.api.TopTrack(ctx, timeRange, index)
}
