package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("service not found")

type Catalog struct {
	repo Repository
}

func New(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

func (c *Catalog) Create(ctx context.Context, s *Service) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if s.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if s.IsDoctorExclusive && s.ExclusiveDoctorID == nil {
		return fmt.Errorf("exclusive service requires exclusive_doctor_id")
	}
	return c.repo.Create(ctx, s)
}

func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (*Service, error) {
	return c.repo.GetByID(ctx, id)
}

func (c *Catalog) Update(ctx context.Context, s *Service) error {
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if s.IsDoctorExclusive && s.ExclusiveDoctorID == nil {
		return fmt.Errorf("exclusive service requires exclusive_doctor_id")
	}
	return c.repo.Update(ctx, s)
}

func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	return c.repo.Delete(ctx, id)
}

func (c *Catalog) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Service, int, error) {
	return c.repo.List(ctx, activeOnly, limit, offset)
}
