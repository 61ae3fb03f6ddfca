package application

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/volsurface/internal/volsurface/domain"
)

// ComputeSurfaceCommand 曲面计算命令
type ComputeSurfaceCommand struct {
	Spot     float64   `json:"spot"`
	Rate     float64   `json:"rate"`
	V0       float64   `json:"v0"`
	Kappa    float64   `json:"kappa"`
	Theta    float64   `json:"theta"`
	VolOfVol float64   `json:"vol_of_vol"`
	Rho      float64   `json:"rho"`
	Expiries []float64 `json:"expiries"`
	Strikes  []float64 `json:"strikes"`
	Paths    int       `json:"paths"`
	Steps    int       `json:"steps"`
	Seed     uint64    `json:"seed"`
}

// CellDTO 曲面单元格 DTO
type CellDTO struct {
	Price   float64 `json:"price"`
	IV      float64 `json:"iv"`
	Valid   bool    `json:"valid"`
	Clamped bool    `json:"clamped"`
}

// SurfaceDTO 曲面 DTO
type SurfaceDTO struct {
	ID           string                  `json:"id"`
	Params       domain.HestonParams     `json:"params"`
	Paths        int                     `json:"paths"`
	Steps        int                     `json:"steps"`
	Seed         uint64                  `json:"seed"`
	Expiries     []float64               `json:"expiries"`
	Strikes      []float64               `json:"strikes"`
	Cells        [][]CellDTO             `json:"cells"`
	Diagnostics  []domain.CellDiagnostic `json:"diagnostics,omitempty"`
	InvalidCells int                     `json:"invalid_cells"`
	ClampedCells int                     `json:"clamped_cells"`
	ComputedAt   int64                   `json:"computed_at"`
}

// ReportRow 报表行：行权价、剩余天数、价格（4 位小数）、
// 隐含波动率百分比（2 位小数）或无效标记
type ReportRow struct {
	Strike string `json:"strike"`
	Days   int    `json:"days"`
	Price  string `json:"price"`
	IV     string `json:"iv"`
}

// InvalidMarker 报表中无效单元格的字面标记
const InvalidMarker = "invalid"

// BuildReport 按网格顺序（到期外层、行权内层）展开曲面为报表行
func BuildReport(surface *domain.Surface) []ReportRow {
	rows := make([]ReportRow, 0, len(surface.Expiries)*len(surface.Strikes))
	for i, t := range surface.Expiries {
		days := int(math.Round(t * 365))
		for j, k := range surface.Strikes {
			cell := surface.Cells[i][j]
			iv := InvalidMarker
			if cell.Valid {
				iv = decimal.NewFromFloat(cell.IV * 100).StringFixed(2) + "%"
			}
			rows = append(rows, ReportRow{
				Strike: decimal.NewFromFloat(k).StringFixed(2),
				Days:   days,
				Price:  decimal.NewFromFloat(cell.Price).StringFixed(4),
				IV:     iv,
			})
		}
	}
	return rows
}

func toSurfaceDTO(record *domain.SurfaceRecord) *SurfaceDTO {
	surface := record.Surface
	cells := make([][]CellDTO, len(surface.Cells))
	for i, row := range surface.Cells {
		cells[i] = make([]CellDTO, len(row))
		for j, cell := range row {
			cells[i][j] = CellDTO{Price: cell.Price, IV: cell.IV, Valid: cell.Valid, Clamped: cell.Clamped}
		}
	}
	return &SurfaceDTO{
		ID:           record.ID,
		Params:       record.Params,
		Paths:        record.Config.Paths,
		Steps:        record.Config.Steps,
		Seed:         surface.Seed,
		Expiries:     surface.Expiries,
		Strikes:      surface.Strikes,
		Cells:        cells,
		Diagnostics:  surface.Diagnostics,
		InvalidCells: surface.InvalidCells,
		ClampedCells: surface.ClampedCells,
		ComputedAt:   record.ComputedAt,
	}
}
