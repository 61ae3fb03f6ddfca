package domain

import (
	"errors"
	"testing"
)

func validParams() HestonParams {
	return HestonParams{S0: 500, R: 0.01, V0: 0.04, Kappa: 2, Theta: 0.04, Sigma: 0.5, Rho: -0.7}
}

func TestSurfaceBuilderFullGrid(t *testing.T) {
	builder := NewSurfaceBuilder(NewSimulator(SimConfig{Paths: 5000, Steps: 50}, 21))
	grid := Grid{
		Expiries: []float64{30.0 / 365.0, 0.25},
		Strikes:  []float64{450, 500, 550},
	}

	surface, err := builder.Build(validParams(), grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(surface.Cells) != len(grid.Expiries) {
		t.Fatalf("expiry rows = %d, want %d", len(surface.Cells), len(grid.Expiries))
	}
	for i, row := range surface.Cells {
		if len(row) != len(grid.Strikes) {
			t.Fatalf("row %d strikes = %d, want %d", i, len(row), len(grid.Strikes))
		}
		for j, cell := range row {
			if !cell.Valid {
				t.Errorf("cell (%d,%d) unexpectedly invalid, price=%v", i, j, cell.Price)
			}
			if cell.Valid && (cell.IV <= minValidVol || cell.IV > volUpper) {
				t.Errorf("cell (%d,%d) IV %v outside (1e-4, 5.0]", i, j, cell.IV)
			}
		}
	}
	// 网格顺序必须原样保留
	for i := range grid.Expiries {
		if surface.Expiries[i] != grid.Expiries[i] {
			t.Errorf("expiry order changed at %d", i)
		}
	}
	for j := range grid.Strikes {
		if surface.Strikes[j] != grid.Strikes[j] {
			t.Errorf("strike order changed at %d", j)
		}
	}
}

func TestSurfaceBuilderPathologicalCell(t *testing.T) {
	// 网格中混入病态格 (T=1e-8, K=1e9)：构建必须完成，
	// 病态格标记无效，其余格正常计算
	builder := NewSurfaceBuilder(NewSimulator(SimConfig{Paths: 2000, Steps: 20}, 3))
	grid := Grid{
		Expiries: []float64{30.0 / 365.0, 1e-8},
		Strikes:  []float64{500, 1e9},
	}

	surface, err := builder.Build(validParams(), grid)
	if err != nil {
		t.Fatalf("build aborted: %v", err)
	}

	if !surface.Cells[0][0].Valid {
		t.Errorf("healthy ATM cell invalid, price=%v", surface.Cells[0][0].Price)
	}
	// T=1e-8 对 ATM 行权价仍是一个合法（极小时间价值）的格
	if !surface.Cells[1][0].Valid {
		t.Errorf("tiny-maturity ATM cell invalid, price=%v", surface.Cells[1][0].Price)
	}
	for _, idx := range [][2]int{{0, 1}, {1, 1}} {
		if surface.Cells[idx[0]][idx[1]].Valid {
			t.Errorf("pathological cell (%d,%d) should be invalid", idx[0], idx[1])
		}
	}
	if surface.InvalidCells != 2 {
		t.Errorf("InvalidCells = %d, want 2", surface.InvalidCells)
	}
	if len(surface.Diagnostics) != 2 {
		t.Errorf("diagnostics = %d records, want 2", len(surface.Diagnostics))
	}
	for _, d := range surface.Diagnostics {
		if d.Reason == "" {
			t.Error("diagnostic without reason")
		}
	}
}

func TestSurfaceBuilderRejectsDegenerateInput(t *testing.T) {
	builder := NewSurfaceBuilder(NewSimulator(SimConfig{Paths: 100, Steps: 5}, 1))

	cases := []struct {
		name   string
		params HestonParams
		grid   Grid
	}{
		{"empty strikes", validParams(), Grid{Expiries: []float64{0.5}, Strikes: nil}},
		{"empty expiries", validParams(), Grid{Expiries: nil, Strikes: []float64{100}}},
		{"zero expiry", validParams(), Grid{Expiries: []float64{0}, Strikes: []float64{100}}},
		{"negative strike", validParams(), Grid{Expiries: []float64{0.5}, Strikes: []float64{-10}}},
		{"bad rho", HestonParams{S0: 100, Kappa: 1, Rho: 2}, Grid{Expiries: []float64{0.5}, Strikes: []float64{100}}},
		{"zero spot", HestonParams{Kappa: 1}, Grid{Expiries: []float64{0.5}, Strikes: []float64{100}}},
	}
	for _, c := range cases {
		if _, err := builder.Build(c.params, c.grid); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", c.name, err)
		}
	}
}

func TestSimConfigValidate(t *testing.T) {
	if err := (SimConfig{Paths: 0, Steps: 10}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero paths: err = %v, want ErrInvalidInput", err)
	}
	if err := (SimConfig{Paths: 10, Steps: -1}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative steps: err = %v, want ErrInvalidInput", err)
	}
	if err := (SimConfig{Paths: 10, Steps: 10}).Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
