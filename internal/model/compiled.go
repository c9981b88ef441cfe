package model

import (
	"math"

	"cropcast/internal/agro"
)

// gbtEngine is an artifact's tree ensemble compiled into flat node arrays.
// Compilation happens once at load; Predict walks the arrays without
// allocating.
type gbtEngine struct {
	crop    agro.Crop
	schema  []string
	bias    float64
	shrink  float64
	zscore  float64
	relBand float64 // unused for gbt, interval comes from tree spread

	// One flattened node pool; roots[i] is the index of tree i's root.
	roots     []int32
	feature   []int32
	threshold []float64
	left      []int32
	right     []int32
	value     []float64
}

// compileGBT flattens the artifact trees into a single node pool.
func compileGBT(a *Artifact, confidenceLevel float64) *gbtEngine {
	e := &gbtEngine{
		crop:   agro.Crop(agro.Normalize(a.Crop)),
		schema: a.Features,
		bias:   a.Bias,
		shrink: a.Shrinkage,
		zscore: zscoreFor(confidenceLevel),
	}
	if e.shrink == 0 {
		e.shrink = 1.0 // v2 artifacts predate shrinkage
	}

	for _, tree := range a.Trees {
		base := int32(len(e.feature))
		e.roots = append(e.roots, base)
		for _, n := range tree.Nodes {
			e.feature = append(e.feature, int32(n.Feature))
			e.threshold = append(e.threshold, n.Threshold)
			if n.Left == -1 {
				e.left = append(e.left, -1)
				e.right = append(e.right, -1)
			} else {
				e.left = append(e.left, base+int32(n.Left))
				e.right = append(e.right, base+int32(n.Right))
			}
			e.value = append(e.value, n.Value)
		}
	}
	return e
}

func (e *gbtEngine) Crop() agro.Crop { return e.crop }
func (e *gbtEngine) Kind() string    { return KindGBTEnsemble }

func (e *gbtEngine) Predict(f Features) Prediction {
	vec := f.vector(e.schema)

	sum := 0.0
	sumSq := 0.0
	for _, root := range e.roots {
		out := e.walk(root, vec)
		sum += out
		sumSq += out * out
	}

	n := float64(len(e.roots))
	mean := sum / n
	yield := e.bias + e.shrink*sum

	// Tree-output spread drives the interval width. A degenerate ensemble
	// (all trees agreeing) still reports a minimal band.
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	half := e.zscore * math.Sqrt(variance) * e.shrink * math.Sqrt(n)
	if half < 0.05*yield {
		half = 0.05 * yield
	}

	return clampYield(Prediction{
		YieldTPerHa: yield,
		Lower:       yield - half,
		Upper:       yield + half,
	})
}

func (e *gbtEngine) walk(idx int32, vec []float64) float64 {
	for e.left[idx] != -1 {
		if vec[e.feature[idx]] < e.threshold[idx] {
			idx = e.left[idx]
		} else {
			idx = e.right[idx]
		}
	}
	return e.value[idx]
}

// linearEngine serves a linear artifact.
type linearEngine struct {
	crop      agro.Crop
	schema    []string
	intercept float64
	coefs     []float64
	relBand   float64
}

func compileLinear(a *Artifact, fallbackRelBand float64) *linearEngine {
	band := a.RelBand
	if band == 0 {
		band = fallbackRelBand
	}
	return &linearEngine{
		crop:      agro.Crop(agro.Normalize(a.Crop)),
		schema:    a.Features,
		intercept: a.Intercept,
		coefs:     a.Coefficients,
		relBand:   band,
	}
}

func (e *linearEngine) Crop() agro.Crop { return e.crop }
func (e *linearEngine) Kind() string    { return KindLinear }

func (e *linearEngine) Predict(f Features) Prediction {
	vec := f.vector(e.schema)
	yield := e.intercept
	for i, c := range e.coefs {
		yield += c * vec[i]
	}
	half := yield * e.relBand
	return clampYield(Prediction{
		YieldTPerHa: yield,
		Lower:       yield - half,
		Upper:       yield + half,
	})
}

// zscoreFor maps the configured confidence level to a normal quantile.
// Only the levels we actually configure are tabulated.
func zscoreFor(level float64) float64 {
	switch {
	case level >= 0.99:
		return 2.576
	case level >= 0.95:
		return 1.960
	case level >= 0.90:
		return 1.645
	case level >= 0.80:
		return 1.282
	default:
		return 1.0
	}
}
