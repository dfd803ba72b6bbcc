package attractions

import (
	"context"
	"errors"
	"fmt"

	"ms-park-access/internal/logger"
	"ms-park-access/internal/models"
)

// ErrInvalidAttraction means the create request failed input validation.
var ErrInvalidAttraction = errors.New("name, capacity and avg_ride_minutes are required")

// AttractionDBLayer is the catalog store.
type AttractionDBLayer interface {
	ListAttractions(ctx context.Context) ([]models.Attraction, error)
	GetAttractionByID(ctx context.Context, id int64) (*models.Attraction, error)
	CreateAttraction(ctx context.Context, attraction *models.Attraction) error
	UpdateAttraction(ctx context.Context, id int64, update models.AttractionUpdate) error
	DeleteAttraction(ctx context.Context, id int64) error
}

type AttractionService struct {
	DB     AttractionDBLayer
	Logger *logger.Logger
}

func NewAttractionService(db AttractionDBLayer, log *logger.Logger) *AttractionService {
	return &AttractionService{DB: db, Logger: log}
}

func (s *AttractionService) ListAttractions(ctx context.Context) ([]models.Attraction, error) {
	return s.DB.ListAttractions(ctx)
}

func (s *AttractionService) GetAttraction(ctx context.Context, id int64) (*models.Attraction, error) {
	return s.DB.GetAttractionByID(ctx, id)
}

func (s *AttractionService) CreateAttraction(ctx context.Context, attraction models.Attraction) (*models.Attraction, error) {
	if attraction.Name == "" || attraction.Capacity <= 0 || attraction.AvgRideMinutes <= 0 {
		return nil, ErrInvalidAttraction
	}
	if attraction.Status == "" {
		attraction.Status = "operational"
	}

	if err := s.DB.CreateAttraction(ctx, &attraction); err != nil {
		return nil, err
	}

	s.Logger.Info("ATTRACTION", fmt.Sprintf("Created attraction %d (%s)", attraction.ID, attraction.Name))
	return &attraction, nil
}

func (s *AttractionService) UpdateAttraction(ctx context.Context, id int64, update models.AttractionUpdate) error {
	return s.DB.UpdateAttraction(ctx, id, update)
}

func (s *AttractionService) DeleteAttraction(ctx context.Context, id int64) error {
	return s.DB.DeleteAttraction(ctx, id)
}
