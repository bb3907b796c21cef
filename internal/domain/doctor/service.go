package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("doctor not found")

type Directory struct {
	repo Repository
}

func New(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) Create(ctx context.Context, doc *Doctor) error {
	if doc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if doc.Email == "" {
		return fmt.Errorf("email is required")
	}
	return d.repo.Create(ctx, doc)
}

func (d *Directory) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return d.repo.GetByID(ctx, id)
}

func (d *Directory) Update(ctx context.Context, doc *Doctor) error {
	return d.repo.Update(ctx, doc)
}

func (d *Directory) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return d.repo.List(ctx, limit, offset)
}
