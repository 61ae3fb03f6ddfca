package domain

import (
	"errors"
	"math"
)

// 反解区间与精度。BSCallPrice 对 sigma 单调，因此只要目标价格严格位于
// (内在价值, S0) 无套利带内，[volLower, volUpper] 上必存在唯一根。
const (
	volLower   = 1e-6
	volUpper   = 5.0
	volTol     = 1e-6
	volMaxIter = 100
)

// ErrUnbracketed 目标价格位于或越过理论边界，[volLower, volUpper] 内无根。
// 模拟器已做无套利钳制，这里只剩浮点边界相等的残余情形；调用方记录诊断
// 并将该格标记为无效，绝不中断整个曲面的构建。
var ErrUnbracketed = errors.New("implied volatility not bracketed")

// ImpliedVol 反解 Black-Scholes 隐含波动率：在 [1e-6, 5.0] 上用 Brent 法
// 求 BSCallPrice(sigma) = price 的根，sigma 绝对容差 1e-6。
func ImpliedVol(price, s, k, t, r float64) (float64, error) {
	f := func(sigma float64) float64 {
		return BSCallPrice(s, k, t, r, sigma) - price
	}

	a, b := volLower, volUpper
	fa, fb := f(a), f(b)
	if fa*fb > 0 {
		return 0, ErrUnbracketed
	}

	// Brent: 逆二次插值/割线混合，退化时回退二分，括号内必收敛
	c, fc := a, fa
	d := b - a
	e := d
	const eps = 2.22e-16

	for iter := 0; iter < volMaxIter; iter++ {
		if fb*fc > 0 {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2*eps*math.Abs(b) + 0.5*volTol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			s0 := fb / fa
			if a == c {
				p = 2 * xm * s0
				q = 1 - s0
			} else {
				q0 := fa / fc
				r0 := fb / fc
				p = s0 * (2*xm*q0*(q0-r0) - (b-a)*(r0-1))
				q = (q0 - 1) * (r0 - 1) * (s0 - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
	}
	return b, nil
}
