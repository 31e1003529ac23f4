package vae

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// PartialFit runs one Adam step against the batch cost and returns the
// cost before the step. The cost is for monitoring only.
func (v *VAE) PartialFit(xs *tensor.Dense) (float32, error) {
	if err := v.checkBatch(xs); err != nil {
		return 0, err
	}
	if err := v.runOnce(xs, v.sampleNoise()); err != nil {
		return 0, err
	}
	cost := scalarF32(v.costVal)
	if err := v.solver.Step(G.NodesToValueGrads(nodes(v.params.trainable()))); err != nil {
		v.vm.Reset()
		return 0, errors.WithStack(err)
	}
	v.vm.Reset()
	return cost, nil
}

// Transform embeds a batch into latent space by returning the posterior
// means. No sampling is involved, so the result is a deterministic
// function of xs and the current parameters.
func (v *VAE) Transform(xs *tensor.Dense) (*tensor.Dense, error) {
	if err := v.checkBatch(xs); err != nil {
		return nil, err
	}
	if err := v.runOnce(xs, v.zeroNoise()); err != nil {
		return nil, err
	}
	retVal := v.zMeanVal.(*tensor.Dense).Clone().(*tensor.Dense)
	v.vm.Reset()
	return retVal, nil
}

// Reconstruct round-trips a batch through the recognition network, a
// fresh latent sample and the generator network.
func (v *VAE) Reconstruct(xs *tensor.Dense) (*tensor.Dense, error) {
	if err := v.checkBatch(xs); err != nil {
		return nil, err
	}
	if err := v.runOnce(xs, v.sampleNoise()); err != nil {
		return nil, err
	}
	retVal := v.reconstrVal.(*tensor.Dense).Clone().(*tensor.Dense)
	v.vm.Reset()
	return retVal, nil
}

// Generate decodes latent codes into reconstruction means. A nil z
// draws a single code from the standard-normal prior. Only the
// generator subgraph runs, so z's batch dimension need not match the
// configured batch size.
func (v *VAE) Generate(z *tensor.Dense) (*tensor.Dense, error) {
	if v.g == nil {
		return nil, errors.New("uninitialized model: call Init first")
	}
	if z == nil {
		backing := make([]float32, v.LatentDims)
		for i := range backing {
			backing[i] = float32(v.rng.NormFloat64())
		}
		z = tensor.New(tensor.WithShape(1, v.LatentDims), tensor.WithBacking(backing))
	}
	if z.Dims() != 2 || z.Shape()[1] != v.LatentDims {
		return nil, errors.Errorf("latent shape %v does not match (batch, %d)", z.Shape(), v.LatentDims)
	}

	g := G.NewGraph()
	zn := G.NewMatrix(g, Float, G.WithShape(z.Shape()[0], v.LatentDims), G.WithName("Z"))

	var m maebe
	act := v.activation()
	h := m.activate(m.dense(zn, v.params.generH1, "GenerH1"), act)
	h = m.activate(m.dense(h, v.params.generH2, "GenerH2"), act)
	out := m.sigmoid(m.dense(h, v.params.generXMean, "XMean"))
	if m.err != nil {
		return nil, m.err
	}

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	G.Let(zn, z)
	if err := vm.RunAll(); err != nil {
		return nil, errors.WithStack(err)
	}
	return out.Value().(*tensor.Dense).Clone().(*tensor.Dense), nil
}

func (v *VAE) runOnce(xs, eps *tensor.Dense) error {
	if v.vm == nil {
		return errors.New("uninitialized model: call Init first")
	}
	G.Let(v.x, xs)
	G.Let(v.eps, eps)
	if err := v.vm.RunAll(); err != nil {
		v.vm.Reset()
		return errors.WithStack(err)
	}
	return nil
}

func (v *VAE) checkBatch(xs *tensor.Dense) error {
	if xs == nil {
		return errors.New("nil input batch")
	}
	if xs.Dims() != 2 || xs.Shape()[0] != v.BatchSize || xs.Shape()[1] != v.InputDims {
		return errors.Errorf("input shape %v does not match (%d, %d)", xs.Shape(), v.BatchSize, v.InputDims)
	}
	return nil
}

func (v *VAE) sampleNoise() *tensor.Dense {
	backing := make([]float32, v.BatchSize*v.LatentDims)
	for i := range backing {
		backing[i] = float32(v.rng.NormFloat64())
	}
	return tensor.New(tensor.WithShape(v.BatchSize, v.LatentDims), tensor.WithBacking(backing))
}

func (v *VAE) zeroNoise() *tensor.Dense {
	return tensor.New(tensor.WithShape(v.BatchSize, v.LatentDims), tensor.Of(Float))
}

func scalarF32(v G.Value) float32 {
	switch data := v.Data().(type) {
	case float32:
		return data
	case []float32:
		return data[0]
	}
	panic(errors.Errorf("cannot extract a float32 from %T", v))
}
