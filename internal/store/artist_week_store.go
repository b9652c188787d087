package store

import (
	"database/sql"
	"sync"
	"time"

	"wiltd/internal/models"
)

// ArtistWeekDao is the feed's entity store: one row per calendar week,
// upserted by week key, read newest first.
type ArtistWeekDao interface {
	Items() ([]models.ArtistWeek, error)
	Latest() (*models.ArtistWeek, error)
	Earliest() (*models.ArtistWeek, error)
	BatchUpsert(items []models.ArtistWeek) error
	Count() (int, error)
	Clear() error
	SetOnChange(fn func())
}

type ArtistWeekStore struct {
	db *DB

	mu       sync.Mutex
	onChange func()
}

func NewArtistWeekStore(db *DB) *ArtistWeekStore {
	return &ArtistWeekStore{db: db}
}

// SetOnChange registers a callback fired after every successful
// commit. Delivery is at-least-once and not debounced.
func (s *ArtistWeekStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *ArtistWeekStore) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// BatchUpsert merges a page of weeks in one transaction. A failing row
// does not abort the rest of the batch: whatever applied cleanly is
// still committed and the first row error is surfaced afterwards.
func (s *ArtistWeekStore) BatchUpsert(items []models.ArtistWeek) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return &PersistenceError{Op: "batchUpsert", Err: err}
	}

	const upsert = `
		INSERT INTO artist_weeks (week, artist, plays, date, image_url, external_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(week) DO UPDATE SET
			artist       = excluded.artist,
			plays        = excluded.plays,
			date         = excluded.date,
			image_url    = excluded.image_url,
			external_url = excluded.external_url`

	var firstErr error
	for _, item := range items {
		_, err := tx.Exec(
			upsert,
			item.Week,
			item.Artist,
			item.Plays,
			item.Date.UTC().Unix(),
			item.ImageURL,
			item.ExternalURL,
		)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Commit independently of per-row errors so that the rows that did
	// apply are not lost.
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "batchUpsert", Err: err}
	}
	s.notify()

	if firstErr != nil {
		return &PersistenceError{Op: "batchUpsert", Err: firstErr}
	}
	return nil
}

func (s *ArtistWeekStore) Items() ([]models.ArtistWeek, error) {
	const query = `
		SELECT week, artist, plays, date, image_url, external_url
		FROM artist_weeks
		ORDER BY date DESC`

	rows, err := s.db.conn.Query(query)
	if err != nil {
		return nil, &PersistenceError{Op: "items", Err: err}
	}
	defer rows.Close()

	var items []models.ArtistWeek
	for rows.Next() {
		item, err := scanArtistWeek(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "items", Err: err}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "items", Err: err}
	}
	return items, nil
}

func (s *ArtistWeekStore) Latest() (*models.ArtistWeek, error) {
	return s.edge("DESC")
}

func (s *ArtistWeekStore) Earliest() (*models.ArtistWeek, error) {
	return s.edge("ASC")
}

func (s *ArtistWeekStore) edge(order string) (*models.ArtistWeek, error) {
	query := `
		SELECT week, artist, plays, date, image_url, external_url
		FROM artist_weeks
		ORDER BY date ` + order + `
		LIMIT 1`

	row := s.db.conn.QueryRow(query)
	item, err := scanArtistWeek(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "edge", Err: err}
	}
	return &item, nil
}

func (s *ArtistWeekStore) Count() (int, error) {
	var count int
	if err := s.db.conn.QueryRow("SELECT COUNT(*) FROM artist_weeks").Scan(&count); err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return count, nil
}

func (s *ArtistWeekStore) Clear() error {
	if _, err := s.db.conn.Exec("DELETE FROM artist_weeks"); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	s.notify()
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArtistWeek(row rowScanner) (models.ArtistWeek, error) {
	var item models.ArtistWeek
	var date int64
	err := row.Scan(&item.Week, &item.Artist, &item.Plays, &date, &item.ImageURL, &item.ExternalURL)
	if err != nil {
		return models.ArtistWeek{}, err
	}
	item.Date = time.Unix(date, 0).UTC()
	return item, nil
}
