package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiltd/internal/models"
)

func TestListenLaterStore_InsertContainsDelete(t *testing.T) {
	s := NewListenLaterStore(newTestDB(t))

	require.NoError(t, s.Insert(models.ListenLaterArtist{Name: "Pinegrove"}))

	ok, err := s.Contains("Pinegrove")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Contains("Bon Iver")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete("Pinegrove"))
	ok, err = s.Contains("Pinegrove")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListenLaterStore_InsertIsUpsertByName(t *testing.T) {
	s := NewListenLaterStore(newTestDB(t))

	require.NoError(t, s.Insert(models.ListenLaterArtist{Name: "Pinegrove", ImageURL: "old.jpg"}))
	require.NoError(t, s.Insert(models.ListenLaterArtist{Name: "Pinegrove", ImageURL: "new.jpg"}))

	items, err := s.Items()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new.jpg", items[0].ImageURL)
}

func TestListenLaterStore_ItemsSortedByName(t *testing.T) {
	s := NewListenLaterStore(newTestDB(t))

	require.NoError(t, s.Insert(models.ListenLaterArtist{Name: "Wilco"}))
	require.NoError(t, s.Insert(models.ListenLaterArtist{Name: "Big Thief"}))

	items, err := s.Items()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Big Thief", items[0].Name)
	assert.Equal(t, "Wilco", items[1].Name)
}

func TestListenLaterStore_DeleteMissingIsNoError(t *testing.T) {
	s := NewListenLaterStore(newTestDB(t))

	require.NoError(t, s.Delete("Nobody"))
}

func TestListenLaterStore_NotifiesOnMutation(t *testing.T) {
	s := NewListenLaterStore(newTestDB(t))

	notifications := 0
	s.SetOnChange(func() { notifications++ })

	require.NoError(t, s.Insert(models.ListenLaterArtist{Name: "Pinegrove"}))
	require.NoError(t, s.Delete("Pinegrove"))
	require.NoError(t, s.Clear())

	assert.Equal(t, 3, notifications)
}
