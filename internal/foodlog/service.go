package foodlog

import (
	"context"
	"fmt"
	"log/slog"

	"nutriscan/internal/backend"
	"nutriscan/internal/config"
	"nutriscan/internal/logging"
	"nutriscan/internal/nutrition"
)

// Remote is the slice of the backend client the logging flow needs.
type Remote interface {
	LogFood(ctx context.Context, userID string, foodData map[string]any) error
	Dashboard(ctx context.Context, userID string) (*backend.Dashboard, error)
}

// ImageSaver persists captured images locally.
type ImageSaver interface {
	Save(ctx context.Context, dataURI string) (string, error)
}

// JoinWriter records the timestamp join between remote entries and local
// assets.
type JoinWriter interface {
	MapImage(timestamp, imageID string) error
	MapSwaps(timestamp string, swaps []string) error
}

// Outcome reports what a confirmed log actually persisted. The remote write
// is the only hard requirement; everything else is best-effort and reported
// here instead of failing the flow.
type Outcome struct {
	ImageID     string
	JoinKey     string
	ImageLinked bool
	SwapsLinked bool
}

// Service runs the confirm-log flow: persist the capture image locally,
// write the entry to the remote log, then key both local assets to the
// newest remote history timestamp so the history view can reunite them.
type Service struct {
	remote Remote
	images ImageSaver
	index  JoinWriter
	userID string
	logger *slog.Logger
}

// NewService wires the logging flow from its collaborators.
func NewService(cfg *config.Config, remote Remote, images ImageSaver, index JoinWriter, logger *slog.Logger) *Service {
	return &Service{
		remote: remote,
		images: images,
		index:  index,
		userID: cfg.Backend.UserID,
		logger: logging.NewComponentLogger(logger, "foodlog"),
	}
}

// Confirm logs the record remotely and reconciles local assets against the
// newest remote history entry. Only the remote log write can fail the call;
// image storage and reconciliation degrade to an imageless history entry.
//
// The join key is the timestamp of history[0] immediately after the log
// call. A concurrent session logging at the same moment can steal that slot;
// the index is best-effort by contract, so a stolen key just means this
// entry renders without its image.
func (s *Service) Confirm(ctx context.Context, record nutrition.Record) (*Outcome, error) {
	outcome := &Outcome{}

	if record.ImageURI != "" {
		id, err := s.images.Save(ctx, record.ImageURI)
		if err != nil {
			s.logger.Warn("image save failed; entry will log without an image",
				logging.Error(err),
				logging.String(logging.FieldImpact, "history entry will render imageless"))
		} else {
			outcome.ImageID = id
		}
	}

	if err := s.remote.LogFood(ctx, s.userID, LogPayload(record)); err != nil {
		return nil, fmt.Errorf("log food remotely: %w", err)
	}

	s.logger.Info("food logged",
		logging.String(logging.FieldEventType, "food_logged"),
		logging.String("food", record.Name),
		logging.Float64("calories", record.Calories))

	dash, err := s.remote.Dashboard(ctx, s.userID)
	if err != nil {
		s.logger.Warn("dashboard refetch failed; skipping reconciliation",
			logging.Error(err),
			logging.String(logging.FieldImpact, "entry will render without local assets"))
		return outcome, nil
	}
	if len(dash.History) == 0 {
		s.logger.Warn("dashboard returned no history after log; skipping reconciliation")
		return outcome, nil
	}

	outcome.JoinKey = dash.History[0].Time

	if outcome.ImageID != "" {
		if err := s.index.MapImage(outcome.JoinKey, outcome.ImageID); err != nil {
			s.logger.Warn("image reconciliation write failed",
				logging.Error(err),
				logging.String("timestamp", outcome.JoinKey))
		} else {
			outcome.ImageLinked = true
		}
	}
	if len(record.Swaps) > 0 {
		if err := s.index.MapSwaps(outcome.JoinKey, record.Swaps); err != nil {
			s.logger.Warn("swaps reconciliation write failed",
				logging.Error(err),
				logging.String("timestamp", outcome.JoinKey))
		} else {
			outcome.SwapsLinked = true
		}
	}

	return outcome, nil
}

// LogPayload is the subset of a canonical record the remote log accepts.
func LogPayload(record nutrition.Record) map[string]any {
	payload := map[string]any{
		"food_name": record.Name,
		"calories":  record.Calories,
		"macros": map[string]any{
			"protein": record.Protein,
			"sugar":   record.Sugar,
			"fiber":   record.Fiber,
		},
	}
	if len(record.Tags) > 0 {
		payload["tags"] = record.Tags
	}
	return payload
}
