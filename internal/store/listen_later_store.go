package store

import (
	"sync"

	"wiltd/internal/models"
)

// ListenLaterDao is the flagged-artists side table joined into the
// feed. Name is the natural key.
type ListenLaterDao interface {
	Items() ([]models.ListenLaterArtist, error)
	Insert(item models.ListenLaterArtist) error
	Contains(name string) (bool, error)
	Delete(name string) error
	Clear() error
	SetOnChange(fn func())
}

type ListenLaterStore struct {
	db *DB

	mu       sync.Mutex
	onChange func()
}

func NewListenLaterStore(db *DB) *ListenLaterStore {
	return &ListenLaterStore{db: db}
}

func (s *ListenLaterStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *ListenLaterStore) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *ListenLaterStore) Insert(item models.ListenLaterArtist) error {
	const upsert = `
		INSERT INTO listen_later (name, external_url, image_url)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			external_url = excluded.external_url,
			image_url    = excluded.image_url`

	if _, err := s.db.conn.Exec(upsert, item.Name, item.ExternalURL, item.ImageURL); err != nil {
		return &PersistenceError{Op: "insert", Err: err}
	}
	s.notify()
	return nil
}

func (s *ListenLaterStore) Contains(name string) (bool, error) {
	var count int
	err := s.db.conn.QueryRow("SELECT COUNT(*) FROM listen_later WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, &PersistenceError{Op: "contains", Err: err}
	}
	return count > 0, nil
}

func (s *ListenLaterStore) Delete(name string) error {
	if _, err := s.db.conn.Exec("DELETE FROM listen_later WHERE name = ?", name); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	s.notify()
	return nil
}

func (s *ListenLaterStore) Items() ([]models.ListenLaterArtist, error) {
	const query = `
		SELECT name, external_url, image_url
		FROM listen_later
		ORDER BY name ASC`

	rows, err := s.db.conn.Query(query)
	if err != nil {
		return nil, &PersistenceError{Op: "items", Err: err}
	}
	defer rows.Close()

	var items []models.ListenLaterArtist
	for rows.Next() {
		var item models.ListenLaterArtist
		if err := rows.Scan(&item.Name, &item.ExternalURL, &item.ImageURL); err != nil {
			return nil, &PersistenceError{Op: "items", Err: err}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "items", Err: err}
	}
	return items, nil
}

func (s *ListenLaterStore) Clear() error {
	if _, err := s.db.conn.Exec("DELETE FROM listen_later"); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	s.notify()
	return nil
}
