package engine

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agentflow/onboard/internal/archive"
	"github.com/agentflow/onboard/internal/config"
	"github.com/agentflow/onboard/internal/events"
	"github.com/agentflow/onboard/pkg/api"
	"github.com/agentflow/onboard/pkg/log"
)

// ArchiveWorker monitors memory pressure and age to move completed wizards
// out of the event store and into blob storage
type ArchiveWorker struct {
	engine      *Engine
	archiver    *archive.BlobArchiver
	redisClient *redis.Client
	config      *config.Config
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewArchiveWorker creates a worker that monitors the wizard Redis for
// memory pressure and archives completed wizards accordingly
func NewArchiveWorker(
	e *Engine, archiver *archive.BlobArchiver, cfg *config.Config,
) *ArchiveWorker {
	ctx, cancel := context.WithCancel(context.Background())

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.WizardStore.Addr,
		Password: cfg.WizardStore.Password,
		DB:       cfg.WizardStore.DB,
	})

	return &ArchiveWorker{
		engine:      e,
		archiver:    archiver,
		redisClient: client,
		config:      cfg,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins the archiving monitoring loop
func (w *ArchiveWorker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop gracefully shuts down the archiving worker
func (w *ArchiveWorker) Stop() {
	w.cancel()
	w.wg.Wait()
	_ = w.redisClient.Close()
}

func (w *ArchiveWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Archive.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.checkAndArchive()
		}
	}
}

func (w *ArchiveWorker) checkAndArchive() {
	pressureRatio := w.checkMemoryPressure()
	memoryPressure := pressureRatio > 0
	now := time.Now()

	maxAge := w.adjustMaxAge(pressureRatio)
	wizardIDs := w.selectWizards(now, maxAge, memoryPressure)
	for _, wizardID := range wizardIDs {
		w.archiveWizard(wizardID)
	}
}

func (w *ArchiveWorker) checkMemoryPressure() float64 {
	info, err := w.redisClient.Info(w.ctx, "memory").Result()
	if err != nil {
		slog.Warn("Failed to get Redis memory info", log.Error(err))
		return 0
	}

	usedMemory, maxMemory := parseMemoryInfo(info)
	if maxMemory == 0 {
		return 0
	}

	usedPercent := (float64(usedMemory) / float64(maxMemory)) * 100
	if usedPercent < w.config.Archive.MemoryPercent {
		return 0
	}
	return usedPercent / 100
}

func (w *ArchiveWorker) adjustMaxAge(pressureRatio float64) time.Duration {
	if pressureRatio <= 0 {
		return w.config.Archive.MaxAge
	}

	scaled := time.Duration(float64(w.config.Archive.MaxAge) *
		math.Pow(1-pressureRatio, 2))
	if scaled < time.Minute {
		scaled = time.Minute
	}
	return scaled
}

func (w *ArchiveWorker) selectWizards(
	now time.Time, maxAge time.Duration, memoryPressure bool,
) []api.WizardID {
	engState, err := w.engine.GetEngineState(w.ctx)
	if err != nil {
		slog.Warn("Failed to read engine state for archiving",
			log.Error(err))
		return nil
	}

	var wizardIDs []api.WizardID
	for _, info := range engState.Completed {
		if info == nil {
			continue
		}

		if memoryPressure {
			wizardIDs = append(wizardIDs, info.ID)
			slog.Info("Wizard scheduled for archiving",
				log.WizardID(info.ID),
				slog.String("reason", "memory pressure"))
			break
		}
		if now.Sub(info.CompletedAt) > maxAge {
			wizardIDs = append(wizardIDs, info.ID)
			slog.Info("Wizard scheduled for archiving",
				log.WizardID(info.ID),
				slog.String("reason", "max age exceeded"))
		}
	}
	return wizardIDs
}

func (w *ArchiveWorker) archiveWizard(wizardID api.WizardID) {
	st, err := w.engine.GetWizardState(w.ctx, wizardID)
	if err != nil {
		slog.Warn("Failed to load wizard for archiving",
			log.WizardID(wizardID), log.Error(err))
		return
	}

	key := string(wizardID) + "-" + uuid.NewString()
	if err := w.archiver.Put(w.ctx, key, st); err != nil {
		slog.Warn("Failed to write wizard snapshot",
			log.WizardID(wizardID), log.Error(err))
		return
	}

	err = w.engine.execWizard(w.ctx, wizardID,
		func(st *api.WizardState, ag *WizardAggregator) error {
			if st.Status == api.WizardArchived {
				return nil
			}
			return events.Raise(ag, api.EventTypeWizardArchived,
				api.WizardArchivedEvent{
					WizardID:   wizardID,
					ArchiveKey: key,
				})
		},
	)
	if err != nil {
		slog.Warn("Failed to mark wizard archived",
			log.WizardID(wizardID), log.Error(err))
		return
	}

	slog.Info("Wizard archived",
		log.WizardID(wizardID),
		log.Status(api.WizardArchived),
		slog.String("archive_key", key))
}

func parseMemoryInfo(info string) (used, max int64) {
	lines := strings.SplitSeq(info, "\n")
	for line := range lines {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "used_memory:"); ok {
			used, _ = strconv.ParseInt(after, 10, 64)
		} else if after, ok := strings.CutPrefix(line, "maxmemory:"); ok {
			max, _ = strconv.ParseInt(after, 10, 64)
		}
	}
	return
}
