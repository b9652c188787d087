package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"wiltd/internal/models"
	"wiltd/internal/providers"
	"wiltd/internal/structures"
)

// HistoryAPI is the remote surface consumed by the pagers and caches.
// Every method may fail with ErrSessionInvalid, which callers must
// route to a logout action.
type HistoryAPI interface {
	TopArtistsPerWeek(ctx context.Context, from, to int64) ([]models.ArtistWeek, error)
	TopArtist(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopArtistInfo, error)
	TopTrack(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopTrackInfo, error)
	ArtistActivity(ctx context.Context, artistName string) ([]models.ActivityPoint, error)
	TrackHistoryBefore(ctx context.Context, limit int, before int64, artistQuery string) ([]models.TrackPlay, error)
	TrackHistoryAfter(ctx context.Context, limit int, after int64, artistQuery string) ([]models.TrackPlay, error)
	SearchArtists(ctx context.Context, query string) ([]models.ArtistResult, error)
}

// TokenSource supplies the bearer token for the current session.
// A missing token is reported by the backend as 401 and surfaces as
// ErrSessionInvalid.
type TokenSource interface {
	Token() (string, error)
}

const (
	dateLayout = "2006-01-02"
)

type Client struct {
	baseURL string
	token   TokenSource
	http    *http.Client
	logger  providers.Logger
}

func NewClient(conf *structures.Config, token TokenSource, logger providers.Logger) *Client {
	return &Client{
		baseURL: conf.API.BaseURL,
		token:   token,
		http:    &http.Client{Timeout: conf.API.Timeout},
		logger:  logger,
	}
}

// artistWeekWire is the strict schema for one aggregated week. Pointer
// fields detect missing keys so a malformed row fails the whole page.
type artistWeekWire struct {
	Week        *string `json:"week"`
	TopArtist   *string `json:"top_artist"`
	Count       *int64  `json:"count"`
	Date        *string `json:"date"`
	ImageURL    string  `json:"imageUrl"`
	ExternalURL string  `json:"externalUrl"`
}

func (w *artistWeekWire) toModel() (models.ArtistWeek, error) {
	if w.Week == nil || w.TopArtist == nil || w.Count == nil || w.Date == nil {
		return models.ArtistWeek{}, fmt.Errorf("missing required field in week row")
	}
	date, err := time.ParseInLocation(dateLayout, *w.Date, time.UTC)
	if err != nil {
		return models.ArtistWeek{}, fmt.Errorf("bad date %q: %w", *w.Date, err)
	}
	return models.ArtistWeek{
		Week:        *w.Week,
		Artist:      *w.TopArtist,
		Plays:       *w.Count,
		Date:        date,
		ImageURL:    w.ImageURL,
		ExternalURL: w.ExternalURL,
	}, nil
}

func (c *Client) TopArtistsPerWeek(ctx context.Context, from, to int64) ([]models.ArtistWeek, error) {
	const op = "topArtistsPerWeek"
	params := url.Values{
		"start": {strconv.FormatInt(from, 10)},
		"end":   {strconv.FormatInt(to, 10)},
	}
	var wire []artistWeekWire
	if err := c.get(ctx, op, "/history/weeks", params, &wire); err != nil {
		return nil, err
	}
	weeks := make([]models.ArtistWeek, 0, len(wire))
	for i := range wire {
		week, err := wire[i].toModel()
		if err != nil {
			return nil, &ParseError{Op: op, Err: err}
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

type topArtistWire struct {
	Name       *string `json:"name"`
	Count      *int64  `json:"count"`
	LastPlayed *string `json:"lastPlayed"`
	ImageURL   string  `json:"imageUrl"`
}

func (c *Client) TopArtist(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopArtistInfo, error) {
	const op = "topArtist"
	params := url.Values{
		"timeRange": {string(timeRange)},
		"index":     {strconv.Itoa(index)},
	}
	var wire topArtistWire
	if err := c.get(ctx, op, "/profile/topArtist", params, &wire); err != nil {
		return nil, err
	}
	if wire.Name == nil || wire.Count == nil {
		return nil, &ParseError{Op: op, Err: fmt.Errorf("missing required field")}
	}
	lastPlayed, err := parseOptionalTime(wire.LastPlayed)
	if err != nil {
		return nil, &ParseError{Op: op, Err: err}
	}
	return &models.TopArtistInfo{
		Name:       *wire.Name,
		Plays:      *wire.Count,
		LastPlayed: lastPlayed,
		ImageURL:   wire.ImageURL,
	}, nil
}

type topTrackWire struct {
	Name            *string `json:"name"`
	TotalPlayTimeMs *int64  `json:"totalPlayTimeMs"`
	LastPlayed      *string `json:"lastPlayed"`
	ImageURL        string  `json:"imageUrl"`
}

func (c *Client) TopTrack(ctx context.Context, timeRange models.TimeRange, index int) (*models.TopTrackInfo, error) {
	const op = "topTrack"
	params := url.Values{
		"timeRange": {string(timeRange)},
		"index":     {strconv.Itoa(index)},
	}
	var wire topTrackWire
	if err := c.get(ctx, op, "/profile/topTrack", params, &wire); err != nil {
		return nil, err
	}
	if wire.Name == nil || wire.TotalPlayTimeMs == nil {
		return nil, &ParseError{Op: op, Err: fmt.Errorf("missing required field")}
	}
	lastPlayed, err := parseOptionalTime(wire.LastPlayed)
	if err != nil {
		return nil, &ParseError{Op: op, Err: err}
	}
	return &models.TopTrackInfo{
		Name:          *wire.Name,
		TotalPlayTime: time.Duration(*wire.TotalPlayTimeMs) * time.Millisecond,
		LastPlayed:    lastPlayed,
		ImageURL:      wire.ImageURL,
	}, nil
}

type activityPointWire struct {
	Date  *string `json:"date"`
	Plays *int    `json:"numberOfPlays"`
}

func (c *Client) ArtistActivity(ctx context.Context, artistName string) ([]models.ActivityPoint, error) {
	const op = "artistActivity"
	params := url.Values{"artist": {artistName}}
	var wire []activityPointWire
	if err := c.get(ctx, op, "/artist/activity", params, &wire); err != nil {
		return nil, err
	}
	points := make([]models.ActivityPoint, 0, len(wire))
	for _, p := range wire {
		if p.Date == nil || p.Plays == nil {
			return nil, &ParseError{Op: op, Err: fmt.Errorf("missing required field in activity row")}
		}
		date, err := time.Parse(time.RFC3339, *p.Date)
		if err != nil {
			return nil, &ParseError{Op: op, Err: fmt.Errorf("bad date %q: %w", *p.Date, err)}
		}
		points = append(points, models.ActivityPoint{Date: date.UTC(), Plays: *p.Plays})
	}
	return points, nil
}

type trackPlayWire struct {
	TrackID     *string `json:"trackId"`
	Song        *string `json:"song"`
	Artist      *string `json:"artist"`
	Date        *string `json:"date"`
	ImageURL    string  `json:"imageUrl"`
	ExternalURL string  `json:"externalUrl"`
}

func (c *Client) TrackHistoryBefore(ctx context.Context, limit int, before int64, artistQuery string) ([]models.TrackPlay, error) {
	return c.trackHistory(ctx, limit, "before", before, artistQuery)
}

func (c *Client) TrackHistoryAfter(ctx context.Context, limit int, after int64, artistQuery string) ([]models.TrackPlay, error) {
	return c.trackHistory(ctx, limit, "after", after, artistQuery)
}

func (c *Client) trackHistory(ctx context.Context, limit int, cursorName string, cursor int64, artistQuery string) ([]models.TrackPlay, error) {
	const op = "trackHistory"
	params := url.Values{
		"limit":    {strconv.Itoa(limit)},
		cursorName: {strconv.FormatInt(cursor, 10)},
	}
	if artistQuery != "" {
		params.Set("artist", artistQuery)
	}
	var wire []trackPlayWire
	if err := c.get(ctx, op, "/history/tracks", params, &wire); err != nil {
		return nil, err
	}
	plays := make([]models.TrackPlay, 0, len(wire))
	for _, p := range wire {
		if p.TrackID == nil || p.Song == nil || p.Artist == nil || p.Date == nil {
			return nil, &ParseError{Op: op, Err: fmt.Errorf("missing required field in track row")}
		}
		date, err := time.Parse(time.RFC3339, *p.Date)
		if err != nil {
			return nil, &ParseError{Op: op, Err: fmt.Errorf("bad date %q: %w", *p.Date, err)}
		}
		plays = append(plays, models.TrackPlay{
			TrackID:     *p.TrackID,
			Song:        *p.Song,
			Artist:      *p.Artist,
			Date:        date.UTC(),
			ImageURL:    p.ImageURL,
			ExternalURL: p.ExternalURL,
		})
	}
	return plays, nil
}

func (c *Client) SearchArtists(ctx context.Context, query string) ([]models.ArtistResult, error) {
	const op = "searchArtists"
	params := url.Values{"q": {query}}
	var results []models.ArtistResult
	if err := c.get(ctx, op, "/search/artists", params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// get performs one authenticated GET and decodes the body into out.
// Session problems short-circuit to ErrSessionInvalid before any
// decode is attempted.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	token, err := c.token.Token()
	if err != nil {
		return ErrSessionInvalid
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrSessionInvalid
	case resp.StatusCode != http.StatusOK:
		return &NetworkError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Op: op, Err: err}
	}
	return nil
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", *s, err)
	}
	utc := t.UTC()
	return &utc, nil
}
