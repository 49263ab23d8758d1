//go:generate mockgen -source=$GOFILE -package=$GOPACKAGE -destination=./mock/$GOFILE

package historyrecorder

import (
	"context"
)

// Repository provides history recorder related operations.
type Repository interface {
	Run(ctx context.Context) error
}

// Service provides history recorder related operations.
type Service struct {
	repo Repository
}

// New creates a new history recorder service.
func New(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Run starts the history recorder.
func (s *Service) Run(ctx context.Context) (err error) {
	err = s.repo.Run(ctx)
	if err != nil {
		return err
	}

	return nil
}
