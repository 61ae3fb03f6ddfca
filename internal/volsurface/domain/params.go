package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput 输入参数非法（调用方契约违反，快速失败）
var ErrInvalidInput = errors.New("invalid input")

// HestonParams Heston 随机波动率模型参数
// 所有定价调用以只读方式传入，不会被修改
type HestonParams struct {
	S0    float64 `json:"s0"`    // 标的初始价格
	R     float64 `json:"r"`     // 无风险利率（连续复利，年化）
	V0    float64 `json:"v0"`    // 初始方差
	Kappa float64 `json:"kappa"` // 方差均值回复速度
	Theta float64 `json:"theta"` // 长期方差水平
	Sigma float64 `json:"sigma"` // 波动率的波动率 (vol-of-vol)
	Rho   float64 `json:"rho"`   // 价格与方差布朗运动的相关系数
}

// Validate 校验模型参数取值域
func (p HestonParams) Validate() error {
	switch {
	case !(p.S0 > 0) || math.IsInf(p.S0, 0):
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidInput, p.S0)
	case math.IsNaN(p.R) || math.IsInf(p.R, 0):
		return fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidInput, p.R)
	case p.V0 < 0 || math.IsNaN(p.V0):
		return fmt.Errorf("%w: initial variance must be non-negative, got %v", ErrInvalidInput, p.V0)
	case !(p.Kappa > 0):
		return fmt.Errorf("%w: mean reversion speed must be positive, got %v", ErrInvalidInput, p.Kappa)
	case p.Theta < 0 || math.IsNaN(p.Theta):
		return fmt.Errorf("%w: long-run variance must be non-negative, got %v", ErrInvalidInput, p.Theta)
	case p.Sigma < 0 || math.IsNaN(p.Sigma):
		return fmt.Errorf("%w: vol-of-vol must be non-negative, got %v", ErrInvalidInput, p.Sigma)
	case p.Rho < -1 || p.Rho > 1 || math.IsNaN(p.Rho):
		return fmt.Errorf("%w: correlation must be in [-1, 1], got %v", ErrInvalidInput, p.Rho)
	}
	return nil
}

// SimConfig 蒙特卡洛离散化配置，独立于模型参数
type SimConfig struct {
	Paths int `json:"paths"` // 模拟路径数
	Steps int `json:"steps"` // 时间离散步数
}

// Validate 校验模拟配置
func (c SimConfig) Validate() error {
	if c.Paths <= 0 {
		return fmt.Errorf("%w: paths must be positive, got %d", ErrInvalidInput, c.Paths)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidInput, c.Steps)
	}
	return nil
}

// Grid 行权价 × 到期日网格（有序），到期日为年化时间
type Grid struct {
	Expiries []float64 `json:"expiries"`
	Strikes  []float64 `json:"strikes"`
}

// Validate 在网格构造边界快速失败：非正的 T 或 K 是调用方契约违反，
// 不允许流入模拟器
func (g Grid) Validate() error {
	if len(g.Expiries) == 0 {
		return fmt.Errorf("%w: empty expiry grid", ErrInvalidInput)
	}
	if len(g.Strikes) == 0 {
		return fmt.Errorf("%w: empty strike grid", ErrInvalidInput)
	}
	for i, t := range g.Expiries {
		if !(t > 0) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: expiry[%d] must be positive, got %v", ErrInvalidInput, i, t)
		}
	}
	for i, k := range g.Strikes {
		if !(k > 0) || math.IsInf(k, 0) {
			return fmt.Errorf("%w: strike[%d] must be positive, got %v", ErrInvalidInput, i, k)
		}
	}
	return nil
}
