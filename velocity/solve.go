package velocity

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// violations smaller than this are treated as numeric noise
	boundTol = 1e-9
	// singular values below this fraction of the largest are truncated
	pinvTol = 1e-10
)

// solveOpts differentiates the five engines around the shared saturation loop.
type solveOpts struct {
	// optimal keeps exploring saturation sets and returns the solution with
	// the largest task scale factor rather than the first feasible one.
	optimal bool
	// scaleMargin withholds this fraction of each joint's velocity box from
	// lower-priority tasks, preserving authority for the primary task.
	scaleMargin float64
	// reduced drops saturated columns from the task Jacobian instead of
	// masking them, solving a smaller least-squares problem per iteration.
	reduced bool
}

// solveStack resolves the prioritized task stack at configuration q.
func (c *snsCore) solveStack(tasks []Task, q *mat.VecDense, opts solveOpts) (*mat.VecDense, int) {
	if q == nil || q.Len() != c.n || len(tasks) == 0 {
		return nil, StatusBadInput
	}
	for _, t := range tasks {
		if t.Jacobian == nil || t.Desired == nil {
			return nil, StatusBadInput
		}
		rows, cols := t.Jacobian.Dims()
		if cols != c.n || t.Desired.Len() != rows {
			return nil, StatusBadInput
		}
	}

	lo, hi := c.shapeBounds(q)
	qdot := make([]float64, c.n)
	proj := eye(c.n)

	for ti, task := range tasks {
		rows, _ := task.Jacobian.Dims()
		rhs := mat.NewVecDense(rows, nil)
		rhs.MulVec(task.Jacobian, mat.NewVecDense(c.n, qdot))
		rhs.SubVec(task.Desired, rhs)

		boxLo, boxHi := lo, hi
		if ti > 0 && opts.scaleMargin > 0 {
			boxLo = scaleSlice(lo, 1-opts.scaleMargin)
			boxHi = scaleSlice(hi, 1-opts.scaleMargin)
		}

		// Saturating individual joints is only sound for the primary task;
		// lower-priority tasks are scaled instead so they cannot push a
		// joint outside the primary task's nullspace.
		dq, st := c.solveTask(task.Jacobian, rhs, proj, qdot, boxLo, boxHi, opts, ti == 0)
		if st < 0 {
			if ti == 0 {
				return nil, st
			}
			// lower-priority objectives are best effort
			continue
		}
		for i := range qdot {
			qdot[i] += dq[i]
		}

		if ti == len(tasks)-1 {
			break
		}
		// contract the projector with the nullspace of this task
		var jp mat.Dense
		jp.Mul(task.Jacobian, proj)
		pinvJP, err := pinv(&jp)
		if err != nil {
			if ti == 0 {
				return nil, StatusNoSolution
			}
			break
		}
		var step mat.Dense
		step.Mul(pinvJP, &jp)
		proj.Sub(proj, &step)
	}

	c.prevVel = append([]float64(nil), qdot...)
	return mat.NewVecDense(c.n, qdot), StatusOK
}

// solveTask finds this task's joint-velocity contribution on top of base,
// keeping base+contribution inside [lo,hi]. proj restricts the solution to
// the nullspace of all higher-priority tasks.
func (c *snsCore) solveTask(
	jacobian *mat.Dense,
	rhs *mat.VecDense,
	proj *mat.Dense,
	base, lo, hi []float64,
	opts solveOpts,
	saturable bool,
) ([]float64, int) {
	var jp mat.Dense
	jp.Mul(jacobian, proj)

	saturated := make([]bool, c.n)
	satVel := make([]float64, c.n)
	bestScale := -1.0
	var bestDq []float64

	for iter := 0; iter <= c.n; iter++ {
		free, err := c.taskLeastSquares(&jp, jacobian, rhs, satVel, saturated, opts.reduced)
		if err != nil {
			break
		}
		cand := make([]float64, c.n)
		for i := range cand {
			cand[i] = satVel[i] + free[i]
		}

		worst := -1
		worstExcess := boundTol
		for i := 0; i < c.n; i++ {
			if saturated[i] {
				continue
			}
			total := base[i] + cand[i]
			if ex := math.Max(total-hi[i], lo[i]-total); ex > worstExcess {
				worst, worstExcess = i, ex
			}
		}
		if worst < 0 {
			return cand, StatusOK
		}

		if s, feasible := taskScalingFactor(free, base, satVel, lo, hi); feasible && s > bestScale {
			bestScale = s
			bestDq = make([]float64, c.n)
			for i := range bestDq {
				bestDq[i] = satVel[i] + s*free[i]
			}
			if !opts.optimal && !saturable {
				// first feasible scaling wins for non-optimal engines
				return bestDq, StatusOK
			}
		}
		if !saturable {
			// lower-priority tasks may only be scaled
			break
		}
		// pin the worst joint at the violated bound and re-solve
		saturated[worst] = true
		total := base[worst] + cand[worst]
		if total > hi[worst] {
			satVel[worst] = hi[worst] - base[worst]
		} else {
			satVel[worst] = lo[worst] - base[worst]
		}
	}

	if bestScale >= 0 {
		return bestDq, StatusOK
	}
	return nil, StatusNoSolution
}

// taskLeastSquares solves for the free-joint velocities realizing rhs after
// discounting the saturated joints' contribution. In reduced mode the
// saturated columns are removed before factorization; otherwise they are
// zeroed in place.
func (c *snsCore) taskLeastSquares(
	jp, jacobian *mat.Dense,
	rhs *mat.VecDense,
	satVel []float64,
	saturated []bool,
	reduced bool,
) ([]float64, error) {
	rows, _ := jacobian.Dims()
	resid := mat.NewVecDense(rows, nil)
	resid.MulVec(jacobian, mat.NewVecDense(c.n, satVel))
	resid.SubVec(rhs, resid)

	if reduced {
		freeIdx := make([]int, 0, c.n)
		for i := 0; i < c.n; i++ {
			if !saturated[i] {
				freeIdx = append(freeIdx, i)
			}
		}
		if len(freeIdx) == 0 {
			return make([]float64, c.n), nil
		}
		red := mat.NewDense(rows, len(freeIdx), nil)
		for k, i := range freeIdx {
			for r := 0; r < rows; r++ {
				red.Set(r, k, jp.At(r, i))
			}
		}
		pinvRed, err := pinv(red)
		if err != nil {
			return nil, err
		}
		sol := mat.NewVecDense(len(freeIdx), nil)
		sol.MulVec(pinvRed, resid)
		free := make([]float64, c.n)
		for k, i := range freeIdx {
			free[i] = sol.AtVec(k)
		}
		return free, nil
	}

	masked := mat.DenseCopyOf(jp)
	for i := 0; i < c.n; i++ {
		if !saturated[i] {
			continue
		}
		for r := 0; r < rows; r++ {
			masked.Set(r, i, 0)
		}
	}
	pinvMasked, err := pinv(masked)
	if err != nil {
		return nil, err
	}
	sol := mat.NewVecDense(c.n, nil)
	sol.MulVec(pinvMasked, resid)
	free := make([]float64, c.n)
	for i := range free {
		free[i] = sol.AtVec(i)
	}
	return free, nil
}

// taskScalingFactor returns the largest s in [0,1] keeping
// base+satVel+s*free inside [lo,hi] for every joint, and whether any such s
// exists.
func taskScalingFactor(free, base, satVel, lo, hi []float64) (float64, bool) {
	s := 1.0
	for i := range free {
		b := base[i] + satVel[i]
		if math.Abs(free[i]) < boundTol {
			if b > hi[i]+boundTol || b < lo[i]-boundTol {
				return 0, false
			}
			continue
		}
		sHi := (hi[i] - b) / free[i]
		sLo := (lo[i] - b) / free[i]
		if sLo > sHi {
			sLo, sHi = sHi, sLo
		}
		if sHi < 0 {
			return 0, false
		}
		if sHi < s {
			s = sHi
		}
	}
	if s < 0 {
		return 0, false
	}
	return s, true
}

// pinv computes the Moore-Penrose pseudoinverse via thin SVD, truncating
// singular values below pinvTol of the largest.
func pinv(m *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		return nil, errors.New("svd factorization failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	vals := svd.Values(nil)

	k := len(vals)
	sInv := mat.NewDense(k, k, nil)
	if k > 0 && vals[0] > 0 {
		tol := vals[0] * pinvTol
		for i, s := range vals {
			if s > tol {
				sInv.Set(i, i, 1/s)
			}
		}
	}
	var tmp, out mat.Dense
	tmp.Mul(&v, sInv)
	out.Mul(&tmp, u.T())
	return &out, nil
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func scaleSlice(s []float64, f float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v * f
	}
	return out
}
