package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BSCallPrice 计算欧式看涨期权的 Black-Scholes 闭式价格。
// sigma<=0 或 T<=0 时退化为内在价值 max(S-K, 0)，避免 d1/d2 除零。
// 纯函数：对 sigma>0, T>0 恒有定义，且对 sigma 严格单调递增，
// 这是隐含波动率反解收敛的前提。
func BSCallPrice(s, k, t, r, sigma float64) float64 {
	if sigma <= 0 || t <= 0 {
		return math.Max(s-k, 0)
	}
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	return s*distuv.UnitNormal.CDF(d1) - k*math.Exp(-r*t)*distuv.UnitNormal.CDF(d2)
}
