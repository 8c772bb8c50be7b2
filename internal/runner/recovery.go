package runner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"showrunner/internal/logging"
	"showrunner/internal/notifications"
	"showrunner/internal/render"
	"showrunner/internal/store"
)

// RecoverOrphans reconciles artifacts whose completion confirmation was
// lost: it scans the render output directory for files matching the naming
// pattern of generating or failed shots and a recent-enough timestamp, and
// re-associates them. Idempotent: recovered shots become completed and drop
// out of the next scan.
func (r *Runner) RecoverOrphans(ctx context.Context) (int, error) {
	candidates, err := r.store.ShotsByStatus(ctx, store.ShotGenerating)
	if err != nil {
		return 0, err
	}
	failed, err := r.store.ShotsByStatus(ctx, store.ShotFailed)
	if err != nil {
		return 0, err
	}
	candidates = append(candidates, failed...)
	if len(candidates) == 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-r.orphanWindow)
	recovered := 0

	for _, shot := range candidates {
		if shot.OutputPath != "" {
			continue
		}
		artifact, mtime, found, err := newestArtifact(r.outputDir, render.OutputPrefixForShot(shot.ID), cutoff)
		if err != nil {
			return recovered, err
		}
		if !found {
			continue
		}

		duration := time.Duration(0)
		if shot.GenerationStartedAt != nil {
			duration = mtime.Sub(*shot.GenerationStartedAt)
			if duration < 0 {
				duration = 0
			}
		}

		adopted, err := r.store.MarkRecovered(ctx, shot.ID, artifact, duration)
		if err != nil {
			return recovered, err
		}
		if !adopted {
			continue
		}
		recovered++

		r.logger.Info("orphaned artifact recovered",
			logging.String(logging.FieldEventType, "orphan_recovered"),
			logging.Int64(logging.FieldShotID, shot.ID),
			logging.String("artifact", artifact),
		)
		if err := r.notifier.Publish(ctx, notifications.EventOrphanRecovered, notifications.Payload{
			"shotID":   shot.ID,
			"artifact": filepath.Base(artifact),
		}); err != nil {
			r.logger.Debug("recovery notification failed", logging.Error(err))
		}
	}
	return recovered, nil
}

// newestArtifact finds the most recent file under dir whose name starts with
// prefix and whose mtime is after cutoff.
func newestArtifact(dir, prefix string, cutoff time.Time) (string, time.Time, bool, error) {
	var (
		bestPath  string
		bestMtime time.Time
	)
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return filepath.SkipAll
			}
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if !strings.HasPrefix(entry.Name(), prefix) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		mtime := info.ModTime()
		if mtime.Before(cutoff) {
			return nil
		}
		if mtime.After(bestMtime) {
			bestPath = path
			bestMtime = mtime
		}
		return nil
	})
	if err != nil {
		return "", time.Time{}, false, err
	}
	return bestPath, bestMtime, bestPath != "", nil
}
