package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

type repository interface {
	SearchParts(ctx context.Context, fragment string) ([]Part, error)
	GetPart(ctx context.Context, id int64) (Part, error)
	CreatePart(ctx context.Context, p Part) (Part, error)
	UpdatePart(ctx context.Context, p Part) (Part, error)
	DeletePart(ctx context.Context, id int64) error

	SearchTravel(ctx context.Context, fragment string) ([]Travel, error)
	CreateTravel(ctx context.Context, t Travel) (Travel, error)
	UpdateTravel(ctx context.Context, t Travel) (Travel, error)
	DeleteTravel(ctx context.Context, id int64) error
}

// Service validates catalog input before it reaches storage.
type Service struct {
	repo repository
	log  *zap.Logger
}

// NewService constructs a catalog service.
func NewService(repo repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// SearchParts matches parts by a case-insensitive name fragment.
func (s *Service) SearchParts(ctx context.Context, name string) ([]Part, error) {
	return s.repo.SearchParts(ctx, strings.TrimSpace(name))
}

// GetPart returns a single part.
func (s *Service) GetPart(ctx context.Context, id int64) (Part, error) {
	return s.repo.GetPart(ctx, id)
}

// CreatePart adds a part to the catalog.
func (s *Service) CreatePart(ctx context.Context, p Part) (Part, error) {
	p, err := normalizePart(p)
	if err != nil {
		return Part{}, err
	}
	created, err := s.repo.CreatePart(ctx, p)
	if err != nil {
		return Part{}, err
	}
	s.log.Info("part added", zap.Int64("part_id", created.ID), zap.String("part_name", created.Name))
	return created, nil
}

// UpdatePart replaces every field of the part identified by p.ID.
func (s *Service) UpdatePart(ctx context.Context, p Part) (Part, error) {
	p, err := normalizePart(p)
	if err != nil {
		return Part{}, err
	}
	return s.repo.UpdatePart(ctx, p)
}

// DeletePart removes a part.
func (s *Service) DeletePart(ctx context.Context, id int64) error {
	if err := s.repo.DeletePart(ctx, id); err != nil {
		return err
	}
	s.log.Info("part deleted", zap.Int64("part_id", id))
	return nil
}

// SearchTravel matches travel entries by a case-insensitive location fragment.
func (s *Service) SearchTravel(ctx context.Context, location string) ([]Travel, error) {
	return s.repo.SearchTravel(ctx, strings.TrimSpace(location))
}

// CreateTravel records the travel time for a new location.
func (s *Service) CreateTravel(ctx context.Context, t Travel) (Travel, error) {
	t, err := normalizeTravel(t)
	if err != nil {
		return Travel{}, err
	}
	return s.repo.CreateTravel(ctx, t)
}

// UpdateTravel replaces the travel entry identified by t.ID.
func (s *Service) UpdateTravel(ctx context.Context, t Travel) (Travel, error) {
	t, err := normalizeTravel(t)
	if err != nil {
		return Travel{}, err
	}
	return s.repo.UpdateTravel(ctx, t)
}

// DeleteTravel removes a travel entry.
func (s *Service) DeleteTravel(ctx context.Context, id int64) error {
	return s.repo.DeleteTravel(ctx, id)
}

func normalizePart(p Part) (Part, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Number = strings.TrimSpace(p.Number)
	p.PictureRef = strings.TrimSpace(p.PictureRef)
	if p.Name == "" {
		return Part{}, fmt.Errorf("%w: part_name is required", ErrInvalidInput)
	}
	if !validAmount(p.UnitCost) || !validAmount(p.UnitPrice) {
		return Part{}, fmt.Errorf("%w: unit_cost and unit_price must be non-negative numbers", ErrInvalidInput)
	}
	return p, nil
}

func normalizeTravel(t Travel) (Travel, error) {
	t.Location = strings.TrimSpace(t.Location)
	if t.Location == "" {
		return Travel{}, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if !validAmount(t.Hours) {
		return Travel{}, fmt.Errorf("%w: travel_time_hours must be a non-negative number", ErrInvalidInput)
	}
	return t, nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
