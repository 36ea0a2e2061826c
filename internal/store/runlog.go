package store

import (
	"context"
	"encoding/json"
	"time"

	"tcgindex/internal/infrastructure"
)

// StartRun opens an audit row for a batch run and returns its ID.
// Audit failures are logged and swallowed: the run itself matters
// more than its paper trail.
func (s *Store) StartRun(ctx context.Context, runType string) int64 {
	row := RunLog{
		RunID:     infrastructure.GetRunID(ctx),
		RunType:   runType,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.logger.WarnContext(ctx, "could not open run log", "run_type", runType, "error", err)
		return 0
	}
	return row.ID
}

// FinishRun closes an audit row. A zero ID (failed StartRun) is a
// no-op. Details are stored as JSON when provided.
func (s *Store) FinishRun(ctx context.Context, id int64, status string, processed, failed int, runErr error, details map[string]any) {
	if id == 0 {
		return
	}
	now := time.Now().UTC()
	updates := map[string]any{
		"status":            status,
		"records_processed": processed,
		"records_failed":    failed,
		"finished_at":       now,
	}
	if runErr != nil {
		updates["error_message"] = runErr.Error()
	}
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			updates["details"] = string(raw)
		}
	}
	err := s.db.WithContext(ctx).Model(&RunLog{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		s.logger.WarnContext(ctx, "could not close run log", "id", id, "error", err)
	}
}
