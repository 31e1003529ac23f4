package vae

import (
	"math"
	"math/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// layer is one dense transform: x·w + b.
type layer struct {
	w, b *G.Node
}

// params groups the eight dense layers of the model.
//
// generXLogSigma mirrors the recognition log-variance head. Its weights
// are allocated and serialized for symmetry but play no part in the
// loss or in any output, so it is left out of trainable().
type params struct {
	recogH1        layer
	recogH2        layer
	recogZMean     layer
	recogZLogSigma layer

	generH1        layer
	generH2        layer
	generXMean     layer
	generXLogSigma layer
}

func (p *params) all() []layer {
	return []layer{
		p.recogH1, p.recogH2, p.recogZMean, p.recogZLogSigma,
		p.generH1, p.generH2, p.generXMean, p.generXLogSigma,
	}
}

func (p *params) trainable() []layer {
	return []layer{
		p.recogH1, p.recogH2, p.recogZMean, p.recogZLogSigma,
		p.generH1, p.generH2, p.generXMean,
	}
}

// nodes flattens layers into a G.Nodes, weight before bias per layer.
// Order is fixed: gob encoding and the solver cache both rely on it.
func nodes(ls []layer) G.Nodes {
	retVal := make(G.Nodes, 0, 2*len(ls))
	for _, l := range ls {
		retVal = append(retVal, l.w, l.b)
	}
	return retVal
}

// glorotU returns an InitWFn filling a weight matrix uniformly from
// [-b, b] with b = gain·sqrt(6/(fanin+fanout)).
//
// Gorgonia ships its own GlorotU but it cannot be fed an explicit RNG,
// and the whole point here is that a Config.Seed reproduces the draws.
func glorotU(rng *rand.Rand, gain float64) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, fanOut := s[0], s[len(s)-1]
		bound := gain * math.Sqrt(6.0/float64(fanIn+fanOut))
		size := tensor.Shape(s).TotalSize()
		switch dt {
		case tensor.Float64:
			retVal := make([]float64, size)
			for i := range retVal {
				retVal[i] = rng.Float64()*(2*bound) - bound
			}
			return retVal
		case tensor.Float32:
			retVal := make([]float32, size)
			for i := range retVal {
				retVal[i] = float32(rng.Float64()*(2*bound) - bound)
			}
			return retVal
		}
		panic("glorotU only handles float32 and float64")
	}
}
