package application

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/volsurface/internal/volsurface/domain"
)

// VolSurfaceService 曲面计算应用服务。
// 负责参数校验、调用领域层构建曲面、持久化与事件发布，
// 并把钳制/无效诊断暴露为指标。
type VolSurfaceService struct {
	repo      domain.SurfaceRepository
	cache     domain.SurfaceCache
	publisher messagequeue.EventPublisher

	cellsTotal   *prometheus.CounterVec
	clampedTotal prometheus.Counter
	buildSeconds prometheus.Observer
}

// NewVolSurfaceService 创建应用服务。cache、publisher 与 m 允许为 nil（测试场景）。
func NewVolSurfaceService(repo domain.SurfaceRepository, cache domain.SurfaceCache, publisher messagequeue.EventPublisher, m *metrics.Metrics) *VolSurfaceService {
	s := &VolSurfaceService{repo: repo, cache: cache, publisher: publisher}
	if m != nil {
		s.cellsTotal = m.NewCounterVec(&prometheus.CounterOpts{
			Name: "volsurface_cells_total",
			Help: "Total number of surface cells computed, by validity",
		}, []string{"status"})
		// 服务名已由指标注册表区分，无标签维度；注册表只暴露 Vec 构造器，
		// 零标签 Vec 的唯一 child 即普通 Counter/Observer
		s.clampedTotal = m.NewCounterVec(&prometheus.CounterOpts{
			Name: "volsurface_price_clamped_total",
			Help: "Simulated prices clamped into the no-arbitrage band",
		}, nil).WithLabelValues()
		s.buildSeconds = m.NewHistogramVec(&prometheus.HistogramOpts{
			Name:    "volsurface_build_duration_seconds",
			Help:    "Surface build latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, nil).WithLabelValues()
	}
	return s
}

// ComputeSurface 计算并持久化一张隐含波动率曲面
func (s *VolSurfaceService) ComputeSurface(ctx context.Context, cmd ComputeSurfaceCommand) (*SurfaceDTO, error) {
	params := domain.HestonParams{
		S0:    cmd.Spot,
		R:     cmd.Rate,
		V0:    cmd.V0,
		Kappa: cmd.Kappa,
		Theta: cmd.Theta,
		Sigma: cmd.VolOfVol,
		Rho:   cmd.Rho,
	}
	cfg := domain.SimConfig{Paths: cmd.Paths, Steps: cmd.Steps}
	grid := domain.Grid{Expiries: cmd.Expiries, Strikes: cmd.Strikes}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	builder := domain.NewSurfaceBuilder(domain.NewSimulator(cfg, cmd.Seed))
	surface, err := builder.Build(params, grid)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	s.observe(surface, elapsed)

	record := &domain.SurfaceRecord{
		ID:         fmt.Sprintf("%d", idgen.GenID()),
		Params:     params,
		Config:     cfg,
		Surface:    surface,
		ComputedAt: time.Now().Unix(),
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Save(txCtx, record); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		event := domain.SurfaceComputedEvent{
			SurfaceID:    record.ID,
			Params:       params,
			Paths:        cfg.Paths,
			Steps:        cfg.Steps,
			Seed:         surface.Seed,
			Expiries:     len(surface.Expiries),
			Strikes:      len(surface.Strikes),
			InvalidCells: surface.InvalidCells,
			ClampedCells: surface.ClampedCells,
			ComputedAt:   record.ComputedAt,
			OccurredOn:   time.Now(),
		}
		return s.publisher.PublishInTx(txCtx, contextx.GetTx(txCtx), domain.SurfaceComputedEventType, record.ID, event)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, record); err != nil {
			logging.Warn(ctx, "failed to cache vol surface", "surface_id", record.ID, "error", err)
		}
	}

	logging.Info(ctx, "vol surface computed",
		"surface_id", record.ID,
		"expiries", len(surface.Expiries),
		"strikes", len(surface.Strikes),
		"invalid_cells", surface.InvalidCells,
		"clamped_cells", surface.ClampedCells,
		"seed", surface.Seed,
		"elapsed", elapsed.String(),
	)
	return toSurfaceDTO(record), nil
}

// GetSurface 按 ID 查询曲面，未找到时返回 (nil, nil)
func (s *VolSurfaceService) GetSurface(ctx context.Context, id string) (*SurfaceDTO, error) {
	if s.cache != nil {
		if record, err := s.cache.Get(ctx, id); err == nil && record != nil {
			return toSurfaceDTO(record), nil
		}
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil || record == nil {
		return nil, err
	}
	return toSurfaceDTO(record), nil
}

// GetLatestSurface 查询最近一次计算的曲面
func (s *VolSurfaceService) GetLatestSurface(ctx context.Context) (*SurfaceDTO, error) {
	if s.cache != nil {
		if record, err := s.cache.GetLatest(ctx); err == nil && record != nil {
			return toSurfaceDTO(record), nil
		}
	}
	record, err := s.repo.GetLatest(ctx)
	if err != nil || record == nil {
		return nil, err
	}
	return toSurfaceDTO(record), nil
}

// GetReport 生成指定曲面的报表行
func (s *VolSurfaceService) GetReport(ctx context.Context, id string) ([]ReportRow, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return BuildReport(record.Surface), nil
}

func (s *VolSurfaceService) observe(surface *domain.Surface, elapsed time.Duration) {
	if s.cellsTotal == nil {
		return
	}
	total := len(surface.Expiries) * len(surface.Strikes)
	s.cellsTotal.WithLabelValues("valid").Add(float64(total - surface.InvalidCells))
	s.cellsTotal.WithLabelValues("invalid").Add(float64(surface.InvalidCells))
	s.clampedTotal.Add(float64(surface.ClampedCells))
	s.buildSeconds.Observe(elapsed.Seconds())
}
