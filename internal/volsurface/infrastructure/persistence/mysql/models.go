package mysql

import (
	"encoding/json"
	"time"

	"github.com/wyfcoding/volsurface/internal/volsurface/domain"
)

// SurfaceModel 波动率曲面快照数据库模型。
// 网格与单元格以 JSON 存储：曲面作为整体读写，不需要按格查询。
type SurfaceModel struct {
	ID           string    `gorm:"column:id;type:varchar(32);primaryKey"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	Spot         float64   `gorm:"column:spot;type:decimal(20,8);not null"`
	Rate         float64   `gorm:"column:rate;type:decimal(12,8)"`
	V0           float64   `gorm:"column:v0;type:decimal(12,8)"`
	Kappa        float64   `gorm:"column:kappa;type:decimal(12,8)"`
	Theta        float64   `gorm:"column:theta;type:decimal(12,8)"`
	Sigma        float64   `gorm:"column:sigma;type:decimal(12,8)"`
	Rho          float64   `gorm:"column:rho;type:decimal(12,8)"`
	Paths        int       `gorm:"column:paths;type:int;not null"`
	Steps        int       `gorm:"column:steps;type:int;not null"`
	Seed         uint64    `gorm:"column:seed;type:bigint unsigned"`
	Surface      string    `gorm:"column:surface;type:mediumtext;not null"`
	InvalidCells int       `gorm:"column:invalid_cells;type:int"`
	ClampedCells int       `gorm:"column:clamped_cells;type:int"`
	ComputedAt   int64     `gorm:"column:computed_at;type:bigint;index;not null"`
}

func (SurfaceModel) TableName() string { return "vol_surfaces" }

// mapping helpers

func toSurfaceModel(record *domain.SurfaceRecord) (*SurfaceModel, error) {
	if record == nil {
		return nil, nil
	}
	payload, err := json.Marshal(record.Surface)
	if err != nil {
		return nil, err
	}
	return &SurfaceModel{
		ID:           record.ID,
		Spot:         record.Params.S0,
		Rate:         record.Params.R,
		V0:           record.Params.V0,
		Kappa:        record.Params.Kappa,
		Theta:        record.Params.Theta,
		Sigma:        record.Params.Sigma,
		Rho:          record.Params.Rho,
		Paths:        record.Config.Paths,
		Steps:        record.Config.Steps,
		Seed:         record.Surface.Seed,
		Surface:      string(payload),
		InvalidCells: record.Surface.InvalidCells,
		ClampedCells: record.Surface.ClampedCells,
		ComputedAt:   record.ComputedAt,
	}, nil
}

func toSurfaceRecord(m *SurfaceModel) (*domain.SurfaceRecord, error) {
	if m == nil {
		return nil, nil
	}
	var surface domain.Surface
	if err := json.Unmarshal([]byte(m.Surface), &surface); err != nil {
		return nil, err
	}
	return &domain.SurfaceRecord{
		ID: m.ID,
		Params: domain.HestonParams{
			S0:    m.Spot,
			R:     m.Rate,
			V0:    m.V0,
			Kappa: m.Kappa,
			Theta: m.Theta,
			Sigma: m.Sigma,
			Rho:   m.Rho,
		},
		Config:     domain.SimConfig{Paths: m.Paths, Steps: m.Steps},
		Surface:    &surface,
		CreatedAt:  m.CreatedAt,
		ComputedAt: m.ComputedAt,
	}, nil
}
