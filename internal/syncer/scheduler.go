package syncer

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"wiltd/internal/activity"
	"wiltd/internal/providers"
	"wiltd/internal/store"
	"wiltd/internal/structures"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

// Scheduler runs the periodic housekeeping: sweeping expired activity
// blobs and checkpointing the database WAL.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	db      *store.DB
	cache   *activity.Cache
	weeks   store.ArtistWeekDao
	tracks  store.TrackPlayDao
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	sweepInterval := s.config.Activity.SweepInterval

	s.cron.AddFunc(gron.Every(sweepInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		removed, err := s.cache.SweepExpired()
		if err != nil {
			s.logger.Errorf(providers.TypeSync, "Error while sweeping activity cache: %s", err)
			return
		}
		s.logger.Infof(providers.TypeSync, "Swept %d expired activity blobs", removed)
	})

	s.cron.AddFunc(gron.Every(time.Hour), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.db.Checkpoint(); err != nil {
			s.logger.Errorf(providers.TypeSync, "Error while checkpointing database: %s", err)
			return
		}
		s.updateRecordGauges()
		s.logger.Infof(providers.TypeSync, "Checkpointed database")
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore primes the record gauges from whatever survived the restart.
func (s *Scheduler) Restore() error {
	s.updateRecordGauges()
	return nil
}

// Persist flushes the WAL so a following shutdown loses nothing.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeSync, "Checkpointing database before shutdown...")
	err := s.db.Checkpoint()
	if err != nil {
		s.logger.Errorf(providers.TypeSync, "Error while checkpointing database: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) updateRecordGauges() {
	if n, err := s.weeks.Count(); err == nil {
		s.metrics.SetRecordsTotal("artist_weeks", n)
	}
	if n, err := s.tracks.Count(); err == nil {
		s.metrics.SetRecordsTotal("track_plays", n)
	}
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, db *store.DB, cache *activity.Cache, weeks store.ArtistWeekDao, tracks store.TrackPlayDao) SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		metrics: metrics,
		db:      db,
		cache:   cache,
		weeks:   weeks,
		tracks:  tracks,
	}
}
