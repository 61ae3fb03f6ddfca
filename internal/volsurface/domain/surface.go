package domain

import (
	"errors"
	"time"
)

// 单元格无效原因
const (
	InvalidPriceOutOfRange = "price_out_of_range" // 模拟价格超出 [1e-6, S0]
	InvalidUnbracketed     = "unbracketed"        // 反解区间内无根
	InvalidNearZeroVol     = "near_zero_vol"      // 反解结果 <= 1e-4，数值上无意义
)

const (
	minValidPrice = 1e-6
	minValidVol   = 1e-4
)

// Cell 曲面单元格：一个 (到期, 行权) 对的模拟价格与隐含波动率
type Cell struct {
	Price   float64 `json:"price"`
	IV      float64 `json:"iv"`
	Valid   bool    `json:"valid"`
	Clamped bool    `json:"clamped"`
}

// CellDiagnostic 无效单元格的诊断记录
type CellDiagnostic struct {
	Strike   float64 `json:"strike"`
	Maturity float64 `json:"maturity"`
	Price    float64 `json:"price"`
	Reason   string  `json:"reason"`
}

// Surface 隐含波动率曲面。Cells[expiryIdx][strikeIdx]，与网格顺序一致，
// 构建完成后只读。
type Surface struct {
	Expiries     []float64        `json:"expiries"`
	Strikes      []float64        `json:"strikes"`
	Cells        [][]Cell         `json:"cells"`
	Diagnostics  []CellDiagnostic `json:"diagnostics,omitempty"`
	ClampedCells int              `json:"clamped_cells"`
	InvalidCells int              `json:"invalid_cells"`
	Seed         uint64           `json:"seed"`
}

// SurfaceBuilder 逐格遍历网格（到期外层、行权内层），调用模拟器定价并
// 反解隐含波动率。各格相互独立，单格失败只标记该格，构建必定完成。
type SurfaceBuilder struct {
	sim *Simulator
}

// NewSurfaceBuilder 创建曲面构建器
func NewSurfaceBuilder(sim *Simulator) *SurfaceBuilder {
	return &SurfaceBuilder{sim: sim}
}

// Build 构建完整曲面。参数与网格在任何模拟开始前校验，快速失败。
func (b *SurfaceBuilder) Build(params HestonParams, grid Grid) (*Surface, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	surface := &Surface{
		Expiries: grid.Expiries,
		Strikes:  grid.Strikes,
		Cells:    make([][]Cell, len(grid.Expiries)),
		Seed:     b.sim.Seed(),
	}

	for i, maturity := range grid.Expiries {
		row := make([]Cell, len(grid.Strikes))
		for j, strike := range grid.Strikes {
			row[j] = b.buildCell(surface, params, strike, maturity)
		}
		surface.Cells[i] = row
	}
	return surface, nil
}

func (b *SurfaceBuilder) buildCell(surface *Surface, params HestonParams, strike, maturity float64) Cell {
	price, clamped := b.sim.Price(params, strike, maturity)
	if clamped {
		surface.ClampedCells++
	}
	cell := Cell{Price: price, Clamped: clamped}

	// 有效性闸门：价格不在任何看涨期权的合理区间内时直接判无效，
	// 不尝试反解
	if price < minValidPrice || price > params.S0 {
		b.invalidate(surface, &cell, strike, maturity, InvalidPriceOutOfRange)
		return cell
	}

	iv, err := ImpliedVol(price, params.S0, strike, maturity, params.R)
	if errors.Is(err, ErrUnbracketed) {
		b.invalidate(surface, &cell, strike, maturity, InvalidUnbracketed)
		return cell
	}
	// 接近零的反解结果视为数值噪声而非真实的近零波动率
	if iv <= minValidVol {
		b.invalidate(surface, &cell, strike, maturity, InvalidNearZeroVol)
		return cell
	}

	cell.IV = iv
	cell.Valid = true
	return cell
}

func (b *SurfaceBuilder) invalidate(surface *Surface, cell *Cell, strike, maturity float64, reason string) {
	surface.InvalidCells++
	surface.Diagnostics = append(surface.Diagnostics, CellDiagnostic{
		Strike:   strike,
		Maturity: maturity,
		Price:    cell.Price,
		Reason:   reason,
	})
}

// SurfaceRecord 持久化的曲面快照实体
type SurfaceRecord struct {
	ID         string       `json:"id"`
	Params     HestonParams `json:"params"`
	Config     SimConfig    `json:"config"`
	Surface    *Surface     `json:"surface"`
	CreatedAt  time.Time    `json:"created_at"`
	ComputedAt int64        `json:"computed_at"`
}
