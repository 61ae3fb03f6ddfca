package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/volsurface/internal/volsurface/application"
	"github.com/wyfcoding/volsurface/internal/volsurface/domain"
)

// VolSurfaceHandler HTTP 处理器
// 负责处理波动率曲面相关的 HTTP 请求
type VolSurfaceHandler struct {
	app *application.VolSurfaceService
}

// NewVolSurfaceHandler 创建 HTTP 处理器实例
func NewVolSurfaceHandler(app *application.VolSurfaceService) *VolSurfaceHandler {
	return &VolSurfaceHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *VolSurfaceHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/volsurface")
	{
		api.POST("/compute", h.ComputeSurface)
		api.GET("/latest", h.GetLatestSurface)
		api.GET("/:id", h.GetSurface)
		api.GET("/:id/report", h.GetReport)
	}
}

// ComputeSurfaceRequest 曲面计算请求
type ComputeSurfaceRequest struct {
	Spot     float64   `json:"spot" binding:"required"`
	Rate     float64   `json:"rate"`
	V0       float64   `json:"v0"`
	Kappa    float64   `json:"kappa" binding:"required"`
	Theta    float64   `json:"theta"`
	VolOfVol float64   `json:"vol_of_vol"`
	Rho      float64   `json:"rho"`
	Expiries []float64 `json:"expiries" binding:"required"`
	Strikes  []float64 `json:"strikes" binding:"required"`
	Paths    int       `json:"paths" binding:"required"`
	Steps    int       `json:"steps" binding:"required"`
	Seed     uint64    `json:"seed"`
}

// ComputeSurface 计算隐含波动率曲面
func (h *VolSurfaceHandler) ComputeSurface(c *gin.Context) {
	var req ComputeSurfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := application.ComputeSurfaceCommand{
		Spot:     req.Spot,
		Rate:     req.Rate,
		V0:       req.V0,
		Kappa:    req.Kappa,
		Theta:    req.Theta,
		VolOfVol: req.VolOfVol,
		Rho:      req.Rho,
		Expiries: req.Expiries,
		Strikes:  req.Strikes,
		Paths:    req.Paths,
		Steps:    req.Steps,
		Seed:     req.Seed,
	}

	dto, err := h.app.ComputeSurface(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "failed to compute vol surface", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, dto)
}

// GetSurface 查询曲面
func (h *VolSurfaceHandler) GetSurface(c *gin.Context) {
	dto, err := h.app.GetSurface(c.Request.Context(), c.Param("id"))
	if err != nil {
		logging.Error(c.Request.Context(), "failed to load vol surface", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if dto == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "surface not found", "")
		return
	}
	response.Success(c, dto)
}

// GetLatestSurface 查询最近一次计算的曲面
func (h *VolSurfaceHandler) GetLatestSurface(c *gin.Context) {
	dto, err := h.app.GetLatestSurface(c.Request.Context())
	if err != nil {
		logging.Error(c.Request.Context(), "failed to load latest vol surface", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if dto == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "no surface computed yet", "")
		return
	}
	response.Success(c, dto)
}

// GetReport 生成曲面报表
func (h *VolSurfaceHandler) GetReport(c *gin.Context) {
	rows, err := h.app.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		logging.Error(c.Request.Context(), "failed to build surface report", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if rows == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "surface not found", "")
		return
	}
	response.Success(c, gin.H{"rows": rows})
}
