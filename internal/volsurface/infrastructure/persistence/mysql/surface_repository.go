package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/volsurface/internal/volsurface/domain"
	"gorm.io/gorm"
)

type surfaceRepository struct {
	db *gorm.DB
}

// NewSurfaceRepository 创建并返回一个新的 surfaceRepository 实例。
func NewSurfaceRepository(db *gorm.DB) domain.SurfaceRepository {
	return &surfaceRepository{db: db}
}

func (r *surfaceRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

func (r *surfaceRepository) Save(ctx context.Context, record *domain.SurfaceRecord) error {
	model, err := toSurfaceModel(record)
	if err != nil || model == nil {
		return err
	}
	db := r.getDB(ctx).WithContext(ctx)
	if err := db.Create(model).Error; err != nil {
		return err
	}
	record.CreatedAt = model.CreatedAt
	return nil
}

func (r *surfaceRepository) GetByID(ctx context.Context, id string) (*domain.SurfaceRecord, error) {
	var model SurfaceModel
	err := r.getDB(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toSurfaceRecord(&model)
}

func (r *surfaceRepository) GetLatest(ctx context.Context) (*domain.SurfaceRecord, error) {
	var model SurfaceModel
	err := r.getDB(ctx).WithContext(ctx).
		Order("computed_at desc").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toSurfaceRecord(&model)
}

func (r *surfaceRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
