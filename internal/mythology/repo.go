package mythology

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// ListSummaries returns id/name/theme_color for every mythology, name-ordered.
func (r *Repo) ListSummaries(ctx context.Context) ([]Summary, error) {
	var out []Summary
	if err := r.db.WithContext(ctx).
		Model(&Mythology{}).
		Select("id", "name", "theme_color").
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListWithGods returns every mythology with its gods preloaded (one level,
// name-ordered on both sides).
func (r *Repo) ListWithGods(ctx context.Context) ([]Mythology, error) {
	var out []Mythology
	if err := r.db.WithContext(ctx).
		Preload("Gods", func(db *gorm.DB) *gorm.DB {
			return db.Order("gods.name ASC")
		}).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Mythology, error) {
	var m Mythology
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) GetByName(ctx context.Context, name string) (*Mythology, error) {
	var m Mythology
	if err := r.db.WithContext(ctx).First(&m, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) GodsByMythology(ctx context.Context, mythologyID string) ([]God, error) {
	var out []God
	if err := r.db.WithContext(ctx).
		Where("mythology_id = ?", mythologyID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GodByID(ctx context.Context, id string) (*God, error) {
	var g God
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repo) GodByName(ctx context.Context, name string) (*God, error) {
	var g God
	if err := r.db.WithContext(ctx).First(&g, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &g, nil
}
