package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/wyfcoding/volsurface/internal/volsurface/application"
	"github.com/wyfcoding/volsurface/internal/volsurface/domain"
)

// surfacereport 在进程内运行曲面计算核心并打印报表，
// 不依赖数据库与消息队列。
func main() {
	var (
		spot     = flag.Float64("spot", 500, "underlying spot price")
		rate     = flag.Float64("rate", 0.01, "risk-free rate (annualized, continuous)")
		v0       = flag.Float64("v0", 0.04, "initial variance")
		kappa    = flag.Float64("kappa", 2.0, "variance mean reversion speed")
		theta    = flag.Float64("theta", 0.04, "long-run variance")
		volOfVol = flag.Float64("vol-of-vol", 0.5, "volatility of variance")
		rho      = flag.Float64("rho", -0.7, "spot/variance correlation")
		expiries = flag.String("expiries", "0.0822,0.25,0.5", "comma-separated expiries in year fractions")
		strikes  = flag.String("strikes", "400,450,500,550,600", "comma-separated strikes")
		paths    = flag.Int("paths", 50000, "Monte Carlo paths")
		steps    = flag.Int("steps", 100, "time discretization steps")
		seed     = flag.Uint64("seed", 42, "random seed (0 = derive from time)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	expiryList, err := parseFloats(*expiries)
	if err != nil {
		logger.Error("invalid expiries", "error", err)
		os.Exit(1)
	}
	strikeList, err := parseFloats(*strikes)
	if err != nil {
		logger.Error("invalid strikes", "error", err)
		os.Exit(1)
	}

	params := domain.HestonParams{
		S0:    *spot,
		R:     *rate,
		V0:    *v0,
		Kappa: *kappa,
		Theta: *theta,
		Sigma: *volOfVol,
		Rho:   *rho,
	}
	cfg := domain.SimConfig{Paths: *paths, Steps: *steps}
	grid := domain.Grid{Expiries: expiryList, Strikes: strikeList}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid simulation config", "error", err)
		os.Exit(1)
	}

	builder := domain.NewSurfaceBuilder(domain.NewSimulator(cfg, *seed))
	surface, err := builder.Build(params, grid)
	if err != nil {
		logger.Error("failed to build surface", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Strike\tDays\tPrice\tIV\t")
	for _, row := range application.BuildReport(surface) {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t\n", row.Strike, row.Days, row.Price, row.IV)
	}
	w.Flush()

	if surface.InvalidCells > 0 || surface.ClampedCells > 0 {
		logger.Info("surface diagnostics",
			"invalid_cells", surface.InvalidCells,
			"clamped_cells", surface.ClampedCells,
			"seed", surface.Seed,
		)
	}
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
