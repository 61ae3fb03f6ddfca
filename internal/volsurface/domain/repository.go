package domain

import "context"

// SurfaceRepository 曲面快照仓储接口
type SurfaceRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Save(ctx context.Context, record *SurfaceRecord) error
	GetByID(ctx context.Context, id string) (*SurfaceRecord, error)
	GetLatest(ctx context.Context) (*SurfaceRecord, error)
}

// SurfaceCache 曲面读缓存接口，未命中返回 (nil, nil)
type SurfaceCache interface {
	Save(ctx context.Context, record *SurfaceRecord) error
	Get(ctx context.Context, id string) (*SurfaceRecord, error)
	GetLatest(ctx context.Context) (*SurfaceRecord, error)
}
