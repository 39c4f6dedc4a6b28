package repository

import (
	"context"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"

	"gorm.io/gorm/clause"
)

func (r *Repository) CreateGalleryImage(ctx context.Context, g *ds.GalleryImage) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(g).Error
}

func (r *Repository) ListGalleryImages(ctx context.Context) ([]ds.GalleryImage, error) {
	var list []ds.GalleryImage
	err := r.db.WithContext(ctx).Preload("Uploader").
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}
