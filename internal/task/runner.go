// Package task drives the scheduled distress recalculation across the
// full farm population.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/farmwatch/farmwatch/internal/alert"
	"github.com/farmwatch/farmwatch/internal/archive"
	"github.com/farmwatch/farmwatch/pkg/distress"
)

// DefaultBatchSize is how many farms are fetched per page during a run.
const DefaultBatchSize = 200

// Runner recalculates every active farm's distress score, persists the
// results, and raises alerts on level transitions into the top bands.
type Runner struct {
	svc      *distress.Service
	farms    distress.FarmRepository
	history  distress.HistoryStore
	archiver *archive.Archiver
	notifier alert.Notifier

	batchSize int
	now       func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithArchiver enables snapshot archiving after each farm is scored.
func WithArchiver(a *archive.Archiver) RunnerOption {
	return func(r *Runner) { r.archiver = a }
}

// WithNotifier enables distress transition alerts.
func WithNotifier(n alert.Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// WithBatchSize overrides the page size used when walking the farm list.
func WithBatchSize(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(svc *distress.Service, farms distress.FarmRepository, history distress.HistoryStore, opts ...RunnerOption) *Runner {
	r := &Runner{
		svc:       svc,
		farms:     farms,
		history:   history,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunReport summarizes one recalculation pass.
type RunReport struct {
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Errors    int           `json:"errors"`
	Critical  int           `json:"critical"`
	High      int           `json:"high"`
	Duration  time.Duration `json:"duration"`
}

// RunDaily walks every active+approved farm, recalculates its distress
// score, writes the cached fields and a history entry, and archives the
// assessment. Per-farm failures are logged and counted; the run keeps
// going. calculatedBy tags the history entries with the trigger origin.
func (r *Runner) RunDaily(ctx context.Context, calculatedBy string) (*RunReport, error) {
	start := r.now()
	report := &RunReport{}

	for offset := 0; ; offset += r.batchSize {
		batch, err := r.farms.ListFarmsBatch(ctx, offset, r.batchSize)
		if err != nil {
			return report, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			farm := &batch[i]
			report.Total++
			if err := r.recalculate(ctx, farm, calculatedBy); err != nil {
				log.Printf("recalculate farm %s: %v", farm.ID, err)
				report.Errors++
				continue
			}
			report.Processed++

			// tally from the freshly written level, never a stale one
			switch farm.DistressLevel {
			case distress.LevelCritical:
				report.Critical++
			case distress.LevelHigh:
				report.High++
			}
		}

		if len(batch) < r.batchSize {
			break
		}
	}

	report.Duration = r.now().Sub(start)
	return report, nil
}

// recalculate scores one farm and persists everything. The farm's cached
// level fields are updated in place so the caller can tally transitions.
func (r *Runner) recalculate(ctx context.Context, farm *distress.Farm, calculatedBy string) error {
	previous := farm.DistressLevel

	assessment := r.svc.Assess(ctx, farm)
	cache := r.svc.CacheFields(ctx, farm.ID, assessment)

	if err := r.farms.UpdateDistressCache(ctx, farm.ID, cache); err != nil {
		return err
	}
	farm.DistressScore = cache.Score
	farm.DistressLevel = cache.Level

	entryID := uuid.NewString()
	snapshot, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("marshal assessment for farm %s: %w", farm.ID, err)
	}
	err = r.history.Append(ctx, distress.HistoryEntry{
		ID:           entryID,
		FarmID:       farm.ID,
		CalculatedAt: assessment.CalculatedAt,
		Score:        assessment.Score,
		Level:        assessment.Level,
		CalculatedBy: calculatedBy,
		Snapshot:     snapshot,
	})
	if err != nil {
		return err
	}

	if r.archiver != nil {
		if _, err := r.archiver.Archive(ctx, assessment, entryID); err != nil {
			log.Printf("archive assessment for farm %s: %v", farm.ID, err)
		}
	}

	r.maybeAlert(ctx, farm, assessment, previous)
	return nil
}

// maybeAlert raises a best-effort notification when a farm enters the
// critical or high band from a lower one.
func (r *Runner) maybeAlert(ctx context.Context, farm *distress.Farm, assessment *distress.Assessment, previous distress.Level) {
	if r.notifier == nil {
		return
	}
	level := assessment.Level
	if level != distress.LevelCritical && level != distress.LevelHigh {
		return
	}
	if level == previous {
		return
	}
	if previous == distress.LevelCritical && level == distress.LevelHigh {
		// moving down from critical is an improvement, not an alert
		return
	}

	err := r.notifier.Notify(ctx, alert.Event{
		FarmID:        farm.ID,
		FarmName:      farm.Name,
		Region:        farm.Region,
		District:      farm.District,
		Score:         assessment.Score,
		Level:         level,
		PreviousLevel: previous,
		CalculatedAt:  assessment.CalculatedAt,
	})
	if err != nil {
		log.Printf("alert for farm %s: %v", farm.ID, err)
	}
}

// ScheduleDaily blocks, running a recalculation at the given UTC hour every
// day until the context is cancelled.
func (r *Runner) ScheduleDaily(ctx context.Context, hour int) {
	for {
		next := nextRunAt(r.now().UTC(), hour)
		timer := time.NewTimer(next.Sub(r.now().UTC()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		report, err := r.RunDaily(ctx, distress.CalculatedBySystemDaily)
		if err != nil {
			log.Printf("daily recalculation failed: %v", err)
			continue
		}
		log.Printf("daily recalculation: %d/%d farms scored (%d errors, %d critical, %d high) in %s",
			report.Processed, report.Total, report.Errors, report.Critical, report.High, report.Duration)
	}
}

// nextRunAt returns the next occurrence of the given hour after now.
func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
