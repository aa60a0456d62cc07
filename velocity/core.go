package velocity

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// snsCore carries the joint capabilities and per-cycle state shared by all
// five engines.
type snsCore struct {
	n          int
	loopPeriod float64

	lower    []float64
	upper    []float64
	maxVel   []float64
	maxAccel []float64

	usePosLimits bool

	// joint velocities from the previous successful solve, used for
	// acceleration shaping; nil until the first solve
	prevVel []float64
}

func newCore(n int, loopPeriod float64) snsCore {
	return snsCore{n: n, loopPeriod: loopPeriod, usePosLimits: true}
}

func (c *snsCore) SetJointsCapabilities(lower, upper, maxVelocity, maxAcceleration []float64) error {
	for _, s := range [][]float64{lower, upper, maxVelocity, maxAcceleration} {
		if len(s) != c.n {
			return errors.Errorf("joint capability arrays must have length %d", c.n)
		}
	}
	c.lower = append([]float64(nil), lower...)
	c.upper = append([]float64(nil), upper...)
	c.maxVel = append([]float64(nil), maxVelocity...)
	c.maxAccel = append([]float64(nil), maxAcceleration...)
	c.prevVel = nil
	return nil
}

func (c *snsCore) UsePositionLimits(use bool) {
	c.usePosLimits = use
}

// shapeBounds computes the per-cycle joint velocity box at configuration q
// from the velocity limit, the acceleration limit against the previous
// cycle's solution, and (when enabled) the position limits.
func (c *snsCore) shapeBounds(q *mat.VecDense) (lo, hi []float64) {
	lo = make([]float64, c.n)
	hi = make([]float64, c.n)
	for i := 0; i < c.n; i++ {
		vmax := math.Inf(1)
		if len(c.maxVel) == c.n && c.maxVel[i] > 0 {
			vmax = c.maxVel[i]
		}
		lo[i], hi[i] = -vmax, vmax
		if len(c.maxAccel) == c.n && c.maxAccel[i] > 0 && c.prevVel != nil {
			dv := c.maxAccel[i] * c.loopPeriod
			lo[i] = math.Max(lo[i], c.prevVel[i]-dv)
			hi[i] = math.Min(hi[i], c.prevVel[i]+dv)
		}
		if c.usePosLimits && len(c.lower) == c.n && c.upper[i] > c.lower[i] {
			lo[i] = math.Max(lo[i], (c.lower[i]-q.AtVec(i))/c.loopPeriod)
			hi[i] = math.Min(hi[i], (c.upper[i]-q.AtVec(i))/c.loopPeriod)
		}
	}
	return lo, hi
}
