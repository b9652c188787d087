package store

import (
	"database/sql"
	"sync"
	"time"

	"wiltd/internal/models"
)

// TrackPlayDao stores immutable per-song play events. Inserts skip
// rows whose (trackID, date) key already exists; nothing is ever
// overwritten.
type TrackPlayDao interface {
	Items() ([]models.TrackPlay, error)
	Latest() (*models.TrackPlay, error)
	Earliest() (*models.TrackPlay, error)
	BatchInsertIfAbsent(items []models.TrackPlay) error
	Count() (int, error)
	Clear() error
	SetOnChange(fn func())
}

type TrackPlayStore struct {
	db *DB

	mu       sync.Mutex
	onChange func()
}

func NewTrackPlayStore(db *DB) *TrackPlayStore {
	return &TrackPlayStore{db: db}
}

func (s *TrackPlayStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *TrackPlayStore) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// BatchInsertIfAbsent inserts a page of play events in one
// transaction, silently skipping keys that are already present. Same
// commit discipline as the week store: partial failures don't abort
// the batch.
func (s *TrackPlayStore) BatchInsertIfAbsent(items []models.TrackPlay) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return &PersistenceError{Op: "batchInsertIfAbsent", Err: err}
	}

	const insert = `
		INSERT OR IGNORE INTO track_plays (track_id, date, song, artist, image_url, external_url)
		VALUES (?, ?, ?, ?, ?, ?)`

	var firstErr error
	for _, item := range items {
		_, err := tx.Exec(
			insert,
			item.TrackID,
			item.Date.UTC().Unix(),
			item.Song,
			item.Artist,
			item.ImageURL,
			item.ExternalURL,
		)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "batchInsertIfAbsent", Err: err}
	}
	s.notify()

	if firstErr != nil {
		return &PersistenceError{Op: "batchInsertIfAbsent", Err: firstErr}
	}
	return nil
}

func (s *TrackPlayStore) Items() ([]models.TrackPlay, error) {
	const query = `
		SELECT track_id, date, song, artist, image_url, external_url
		FROM track_plays
		ORDER BY date DESC`

	rows, err := s.db.conn.Query(query)
	if err != nil {
		return nil, &PersistenceError{Op: "items", Err: err}
	}
	defer rows.Close()

	var items []models.TrackPlay
	for rows.Next() {
		item, err := scanTrackPlay(rows)
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

func (s *TrackPlayStore) Latest() (*models.TrackPlay, error) {
	return s.edge("DESC")
}

func (s *TrackPlayStore) Earliest() (*models.TrackPlay, error) {
	return s.edge("ASC")
}

func (s *TrackPlayStore) edge(order string) (*models.TrackPlay, error) {
	query := `
		SELECT track_id, date, song, artist, image_url, external_url
		FROM track_plays
		ORDER BY date ` + order + `
		LIMIT 1`

	row := s.db.conn.QueryRow(query)
	item, err := scanTrackPlay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "edge", Err: err}
	}
	return &item, nil
}

func (s *TrackPlayStore) Count() (int, error) {
	var count int
	if err := s.db.conn.QueryRow("SELECT COUNT(*) FROM track_plays").Scan(&count); err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return count, nil
}

func (s *TrackPlayStore) Clear() error {
	if _, err := s.db.conn.Exec("DELETE FROM track_plays"); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	s.notify()
	return nil
}

func scanTrackPlay(row rowScanner) (models.TrackPlay, error) {
	var item models.TrackPlay
	var date int64
	err := row.Scan(&item.TrackID, &date, &item.Song, &item.Artist, &item.ImageURL, &item.ExternalURL)
	if err != nil {
		return models.TrackPlay{}, err
	}
	item.Date = time.Unix(date, 0).UTC()
	return item, nil
}
