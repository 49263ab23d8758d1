//go:generate mockgen -source=$GOFILE -package=$GOPACKAGE -destination=./mock/$GOFILE

package historyrecorder

import (
	"context"

	"go.uber.org/zap"

	loggerpkg "github.com/hitesh22rana/historian/internal/pkg/logger"
)

// Service provides history recorder related operations.
type Service interface {
	Run(ctx context.Context) error
}

// HistoryRecorder represents the history recorder.
type HistoryRecorder struct {
	logger *zap.Logger
	svc    Service
}

// New creates a new history recorder.
func New(ctx context.Context, svc Service) *HistoryRecorder {
	return &HistoryRecorder{
		logger: loggerpkg.FromContext(ctx),
		svc:    svc,
	}
}

// Run starts the history recorder.
func (h *HistoryRecorder) Run(ctx context.Context) error {
	err := h.svc.Run(ctx)
	if err != nil {
		h.logger.Error("error occurred while running the history recorder", zap.Error(err))
	} else {
		h.logger.Info("history recorder exited cleanly")
	}

	return nil
}
