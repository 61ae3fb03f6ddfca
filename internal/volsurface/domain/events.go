package domain

import "time"

const (
	SurfaceComputedEventType = "VolSurfaceComputed"
)

// SurfaceComputedEvent 曲面计算完成事件
type SurfaceComputedEvent struct {
	SurfaceID    string       `json:"surface_id"`
	Params       HestonParams `json:"params"`
	Paths        int          `json:"paths"`
	Steps        int          `json:"steps"`
	Seed         uint64       `json:"seed"`
	Expiries     int          `json:"expiries"`
	Strikes      int          `json:"strikes"`
	InvalidCells int          `json:"invalid_cells"`
	ClampedCells int          `json:"clamped_cells"`
	ComputedAt   int64        `json:"computed_at"`
	OccurredOn   time.Time    `json:"occurred_on"`
}
