package umap

import (
	"math"
	"math/rand/v2"
)

// gradClip bounds each gradient coordinate during layout optimisation.
const gradClip = 4.0

func clip(v float64) float64 {
	return math.Max(-gradClip, math.Min(gradClip, v))
}

// makeEpochsPerSample returns, per edge, how many epochs pass between
// samples of that edge. The heaviest edge is sampled every epoch; edges
// too light to be sampled at all get -1.
func makeEpochsPerSample(weights []float64, nEpochs int) []float64 {
	var maxW float64
	for _, w := range weights {
		maxW = math.Max(maxW, w)
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		nSamples := float64(nEpochs) * (w / maxW)
		if nSamples > 0 {
			out[i] = float64(nEpochs) / nSamples
		} else {
			out[i] = -1
		}
	}
	return out
}

// layoutParams carries the fixed inputs of optimizeLayout.
type layoutParams struct {
	a, b               float64
	gamma              float64 // repulsion strength
	initialAlpha       float64 // learning rate
	negativeSampleRate float64
	nEpochs            int
}

// optimizeLayout runs stochastic gradient descent on the embedding,
// attracting the endpoints of sampled graph edges and repelling randomly
// drawn negative samples. emb is updated in place.
func optimizeLayout(emb [][]float64, edges []Edge, p layoutParams, rng *rand.Rand, onEpoch func(epoch int)) {
	n := len(emb)
	if n == 0 || len(edges) == 0 {
		return
	}
	dim := len(emb[0])

	weights := make([]float64, len(edges))
	for i, e := range edges {
		weights[i] = e.Weight
	}
	epochsPerSample := makeEpochsPerSample(weights, p.nEpochs)
	epochsPerNegativeSample := make([]float64, len(edges))
	epochOfNextSample := make([]float64, len(edges))
	epochOfNextNegativeSample := make([]float64, len(edges))
	for i, eps := range epochsPerSample {
		epochsPerNegativeSample[i] = eps / p.negativeSampleRate
		epochOfNextSample[i] = eps
		epochOfNextNegativeSample[i] = epochsPerNegativeSample[i]
	}

	alpha := p.initialAlpha
	for epoch := 0; epoch < p.nEpochs; epoch++ {
		for i, e := range edges {
			if epochsPerSample[i] <= 0 || epochOfNextSample[i] > float64(epoch) {
				continue
			}
			current := emb[e.Head]
			other := emb[e.Tail]

			distSq := euclideanSumOfSquares(current, other)
			var gradCoeff float64
			if distSq > 0 {
				gradCoeff = -2 * p.a * p.b * math.Pow(distSq, p.b-1)
				gradCoeff /= p.a*math.Pow(distSq, p.b) + 1
			}
			for d := 0; d < dim; d++ {
				g := clip(gradCoeff * (current[d] - other[d]))
				current[d] += g * alpha
				other[d] -= g * alpha
			}
			epochOfNextSample[i] += epochsPerSample[i]

			nNeg := 0
			if p.negativeSampleRate > 0 {
				nNeg = int((float64(epoch) - epochOfNextNegativeSample[i]) / epochsPerNegativeSample[i])
			}
			for s := 0; s < nNeg; s++ {
				k := rng.IntN(n)
				if k == e.Head {
					continue
				}
				other := emb[k]
				distSq := euclideanSumOfSquares(current, other)
				var gradCoeff float64
				if distSq > 0 {
					gradCoeff = 2 * p.gamma * p.b
					gradCoeff /= (0.001 + distSq) * (p.a*math.Pow(distSq, p.b) + 1)
				}
				for d := 0; d < dim; d++ {
					g := gradClip
					if gradCoeff > 0 {
						g = clip(gradCoeff * (current[d] - other[d]))
					}
					current[d] += g * alpha
				}
			}
			if nNeg > 0 {
				epochOfNextNegativeSample[i] += float64(nNeg) * epochsPerNegativeSample[i]
			}
		}

		alpha = p.initialAlpha * (1 - float64(epoch)/float64(p.nEpochs))
		if onEpoch != nil {
			onEpoch(epoch)
		}
	}
}
