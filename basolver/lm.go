package basolver

import (
	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/simonfuhrmann/surfrecon/internal/logx"
)

// RunOption configures Run beyond Options (currently just the logger, kept
// separate so Options stays a plain serializable value type).
type RunOption func(*runConfig)

type runConfig struct {
	log *logx.Logger
}

// WithLogger installs a structured logger for LM/CG progress reporting.
func WithLogger(l *logx.Logger) RunOption {
	return func(c *runConfig) { c.log = l }
}

// Run executes the Levenberg-Marquardt loop described in §4.6: at each
// iteration, assemble the analytic Jacobian, Schur-reduce and
// CG-solve the damped normal equations, tentatively apply the step, and
// accept it only if the MSE improved (growing lambda and retrying
// otherwise), exactly the original's accept/reject policy.
func Run(cameras []Camera, points []Point3D, obs []Observation, opts Options, runOpts ...RunOption) ([]Camera, []Point3D, Status, error) {
	const op = "basolver.Run"
	cfg := runConfig{log: logx.Discard()}
	for _, o := range runOpts {
		o(&cfg)
	}

	if len(cameras) == 0 || len(points) == 0 || len(obs) == 0 {
		return nil, nil, Status{}, errs.Invalid(op, "cameras, points, and observations must be non-empty")
	}

	cams := append([]Camera(nil), cameras...)
	pts := append([]Point3D(nil), points...)

	f := ComputeResiduals(cams, pts, obs)
	status := Status{InitialMSE: ComputeMSE(f)}
	status.FinalMSE = status.InitialMSE

	lambda := 1e-3
	const lambdaUp, lambdaDown = 10.0, 10.0

	for iter := 0; iter < opts.LMMaxIterations; iter++ {
		idx := paramIndex(cams, pts, opts)
		if idx.totalCols() == 0 {
			break
		}

		camJac, ptJac, err := computeJacobian(cams, pts, obs, opts, idx)
		if err != nil {
			return nil, nil, status, err
		}
		if idx.numPtCols == 0 {
			ptJac = nil
		}

		deltaCam, deltaPt, cgIters, err := schurReduce(camJac, ptJac, f, lambda, opts)
		if err != nil {
			cfg.log.Warn(op, "normal-equation solve failed, growing lambda", map[string]any{"iter": iter, "err": err.Error()})
			lambda *= lambdaUp
			status.NumLMUnsuccessfulIters++
			continue
		}
		status.NumCGIterations += cgIters

		delta := assembleDelta(idx, deltaCam, deltaPt)
		candCams, candPts := ApplyDelta(cams, pts, delta, opts)
		candF := ComputeResiduals(candCams, candPts, obs)
		candMSE := ComputeMSE(candF)

		status.NumLMIterations++
		if candMSE < status.FinalMSE {
			improvement := status.FinalMSE - candMSE
			cams, pts, f = candCams, candPts, candF
			status.FinalMSE = candMSE
			status.NumLMSuccessfulIters++
			lambda /= lambdaDown
			cfg.log.Debug(op, "LM step accepted", map[string]any{"iter": iter, "mse": candMSE})
			if improvement < opts.LMDeltaThreshold || candMSE < opts.LMMSEThreshold {
				break
			}
		} else {
			status.NumLMUnsuccessfulIters++
			lambda *= lambdaUp
			cfg.log.Debug(op, "LM step rejected", map[string]any{"iter": iter, "mse": candMSE})
		}

		if iter+1 >= opts.LMMinIterations && status.FinalMSE < opts.LMMSEThreshold {
			break
		}
	}

	return cams, pts, status, nil
}

func assembleDelta(idx paramIndexMap, deltaCam, deltaPt []float64) []float64 {
	out := make([]float64, idx.totalCols())
	copy(out, deltaCam)
	copy(out[idx.numCamCols:], deltaPt)
	return out
}
