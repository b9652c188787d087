// Package activity caches per-artist play-count time series as
// compressed blobs, one file per artist. Failures are never cached:
// a bad fetch leaves whatever blob was there before untouched.
package activity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"wiltd/internal/models"
	"wiltd/internal/providers"
	"wiltd/internal/queue"
	"wiltd/internal/structures"
)

// ActivityAPI is the remote lookup the cache reads through to.
type ActivityAPI interface {
	ArtistActivity(ctx context.Context, artistName string) ([]models.ActivityPoint, error)
}

const blobSuffix = ".series.zst"

// blobEnvelope is the on-disk format: the fetch timestamp travels with
// the points so staleness survives file copies.
type blobEnvelope struct {
	FetchedAt int64                  `json:"fetched_at"`
	Points    []models.ActivityPoint `json:"points"`
}

// Cache is the per-artist series cache. All file reads and writes go
// through one serial queue so Clear can drain pending writes before
// deleting, giving a true "empty after this returns" guarantee.
type Cache struct {
	dir        string
	ttl        time.Duration
	remote     ActivityAPI
	compressor Compressor
	logger     providers.Logger
	queue      *queue.Serial
	now        func() time.Time
}

func NewCache(conf *structures.Config, remote ActivityAPI, compressor Compressor, logger providers.Logger) (*Cache, error) {
	if err := os.MkdirAll(conf.Activity.Dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create activity cache dir: %w", err)
	}
	return &Cache{
		dir:        conf.Activity.Dir,
		ttl:        conf.Activity.TTL,
		remote:     remote,
		compressor: compressor,
		logger:     logger,
		queue:      queue.NewSerial(),
		now:        time.Now,
	}, nil
}

// blobPath hashes the artist name so free-form identities can't build
// hostile file paths.
func (c *Cache) blobPath(artistName string) string {
	sum := sha256.Sum256([]byte(artistName))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+blobSuffix)
}

// Get returns the cached series when it is newer than the TTL,
// otherwise fetches from the remote API. A successful fetch is written
// back on the queue; a write failure is logged and swallowed since the
// fetched value is still good for this response.
func (c *Cache) Get(ctx context.Context, artistName string) ([]models.ActivityPoint, error) {
	var cached []models.ActivityPoint
	c.queue.Sync(func() {
		cached = c.readFresh(artistName)
	})
	if cached != nil {
		return cached, nil
	}

	points, err := c.remote.ArtistActivity(ctx, artistName)
	if err != nil {
		// Never cache a failure.
		return nil, err
	}

	envelope := blobEnvelope{FetchedAt: c.now().Unix(), Points: points}
	c.queue.Async(func() {
		if err := c.write(artistName, envelope); err != nil {
			c.logger.Warnf(providers.TypeSync, "Activity blob write failed for %q: %s", artistName, err)
		}
	})
	return points, nil
}

// readFresh returns nil on miss, stale blob, or any decode problem.
func (c *Cache) readFresh(artistName string) []models.ActivityPoint {
	data, err := os.ReadFile(c.blobPath(artistName))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warnf(providers.TypeSync, "Activity blob read failed for %q: %s", artistName, err)
		}
		return nil
	}

	decompressed, err := c.compressor.Decompress(data)
	if err != nil {
		c.logger.Warnf(providers.TypeSync, "Activity blob decompress failed for %q: %s", artistName, err)
		return nil
	}

	var envelope blobEnvelope
	if err := json.Unmarshal(decompressed, &envelope); err != nil {
		c.logger.Warnf(providers.TypeSync, "Activity blob corrupt for %q: %s", artistName, err)
		return nil
	}
	if c.now().Sub(time.Unix(envelope.FetchedAt, 0)) >= c.ttl {
		return nil
	}
	if envelope.Points == nil {
		envelope.Points = []models.ActivityPoint{}
	}
	return envelope.Points
}

// write serializes and atomically replaces the blob for one artist.
func (c *Cache) write(artistName string, envelope blobEnvelope) error {
	jsonData, err := json.Marshal(&envelope)
	if err != nil {
		return err
	}
	compressed, err := c.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	path := c.blobPath(artistName)
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, compressed, 0644); err != nil {
		return err
	}
	return os.Rename(tmpFile, path)
}

// Clear removes every blob. It blocks until pending writes have
// drained, so the cache is genuinely empty when it returns.
func (c *Cache) Clear() error {
	var clearErr error
	c.queue.Sync(func() {
		entries, err := os.ReadDir(c.dir)
		if err != nil {
			clearErr = err
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil && clearErr == nil {
				clearErr = err
			}
		}
	})
	return clearErr
}

// SweepExpired deletes blobs older than the TTL. Runs on the scheduler
// so a mostly-idle daemon doesn't accumulate dead series forever.
func (c *Cache) SweepExpired() (int, error) {
	removed := 0
	var sweepErr error
	c.queue.Sync(func() {
		entries, err := os.ReadDir(c.dir)
		if err != nil {
			sweepErr = err
			return
		}
		cutoff := c.now().Add(-c.ttl)
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) == ".tmp" {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if err := os.Remove(filepath.Join(c.dir, entry.Name())); err == nil {
					removed++
				}
			}
		}
	})
	return removed, sweepErr
}

// Close stops the write queue after pending jobs finish.
func (c *Cache) Close() {
	c.queue.Close()
	c.compressor.Close()
}
