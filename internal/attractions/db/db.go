package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-park-access/internal/models"
)

// ErrNotFound means no attraction with the given id is stored.
var ErrNotFound = errors.New("attraction not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListAttractions(ctx context.Context) ([]models.Attraction, error) {
	attractions := make([]models.Attraction, 0)
	err := d.Bun.NewSelect().
		Model(&attractions).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return attractions, nil
}

func (d *DB) GetAttractionByID(ctx context.Context, id int64) (*models.Attraction, error) {
	var attraction models.Attraction
	err := d.Bun.NewSelect().
		Model(&attraction).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attraction, nil
}

// CreateAttraction inserts the attraction and fills in the generated id.
func (d *DB) CreateAttraction(ctx context.Context, attraction *models.Attraction) error {
	_, err := d.Bun.NewInsert().Model(attraction).Exec(ctx)
	return err
}

// UpdateAttraction applies the non-nil fields of the update; stored values
// are kept for the rest.
func (d *DB) UpdateAttraction(ctx context.Context, id int64, update models.AttractionUpdate) error {
	if update == (models.AttractionUpdate{}) {
		_, err := d.GetAttractionByID(ctx, id)
		return err
	}

	q := d.Bun.NewUpdate().
		Model((*models.Attraction)(nil)).
		Where("id = ?", id)

	if update.Name != nil {
		q = q.Set("name = ?", *update.Name)
	}
	if update.Description != nil {
		q = q.Set("description = ?", *update.Description)
	}
	if update.Capacity != nil {
		q = q.Set("capacity = ?", *update.Capacity)
	}
	if update.AvgRideMinutes != nil {
		q = q.Set("avg_ride_minutes = ?", *update.AvgRideMinutes)
	}
	if update.Status != nil {
		q = q.Set("status = ?", *update.Status)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) DeleteAttraction(ctx context.Context, id int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Attraction)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
