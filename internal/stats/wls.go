package stats

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WLSResult holds the fitted coefficients of a weighted least squares
// regression together with their standard errors and two-sided p-values.
// Slices are indexed by design-matrix column.
type WLSResult struct {
	Coefficients []float64
	StdErrors    []float64
	PValues      []float64
	NObs         int
	DF           int // residual degrees of freedom
}

// WLS fits y = Xb by weighted least squares. X is row-major n×k (one row
// per observation, including the intercept column if wanted), weights are
// per-observation. Solved by QR on the sqrt-weight-scaled system; the
// coefficient covariance is s²(XᵀWX)⁻¹ with s² the weighted residual
// variance.
func WLS(x [][]float64, y, weights []float64) (*WLSResult, error) {
	n := len(x)
	if n == 0 {
		return nil, eris.New("stats: wls with no observations")
	}
	if len(y) != n || len(weights) != n {
		return nil, eris.Errorf("stats: wls dimension mismatch: %d rows, %d outcomes, %d weights", n, len(y), len(weights))
	}
	k := len(x[0])
	if k == 0 {
		return nil, eris.New("stats: wls with no regressors")
	}
	if n <= k {
		return nil, eris.Errorf("stats: wls needs more observations (%d) than regressors (%d)", n, k)
	}

	// Scale rows by sqrt(w): min_b ||W^{1/2}(y - Xb)||².
	xs := mat.NewDense(n, k, nil)
	ys := mat.NewVecDense(n, nil)
	for i, row := range x {
		if len(row) != k {
			return nil, eris.Errorf("stats: wls ragged design matrix at row %d", i)
		}
		if weights[i] < 0 {
			return nil, eris.Errorf("stats: wls negative weight at row %d", i)
		}
		sw := math.Sqrt(weights[i])
		for j, v := range row {
			xs.Set(i, j, sw*v)
		}
		ys.SetVec(i, sw*y[i])
	}

	var qr mat.QR
	qr.Factorize(xs)

	beta := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(beta, false, ys); err != nil {
		return nil, eris.Wrap(err, "stats: wls solve (singular design matrix?)")
	}

	// Weighted residual variance.
	var fitted mat.VecDense
	fitted.MulVec(xs, beta)
	var rss float64
	for i := 0; i < n; i++ {
		r := ys.AtVec(i) - fitted.AtVec(i)
		rss += r * r
	}
	df := n - k
	sigma2 := rss / float64(df)

	// (XᵀWX)⁻¹ from the scaled matrix.
	var xtx mat.Dense
	xtx.Mul(xs.T(), xs)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, eris.Wrap(err, "stats: wls covariance inverse")
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}

	res := &WLSResult{
		Coefficients: make([]float64, k),
		StdErrors:    make([]float64, k),
		PValues:      make([]float64, k),
		NObs:         n,
		DF:           df,
	}
	for j := 0; j < k; j++ {
		res.Coefficients[j] = beta.AtVec(j)
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		res.StdErrors[j] = se
		if se > 0 {
			t := math.Abs(beta.AtVec(j) / se)
			res.PValues[j] = 2 * tDist.Survival(t)
		} else {
			res.PValues[j] = math.NaN()
		}
	}
	return res, nil
}
