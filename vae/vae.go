// Package vae implements a variational autoencoder on top of Gorgonia.
//
// The model is a Gaussian recognition network and a Bernoulli generator
// network trained end to end on the negative evidence lower bound. The
// sampling step uses the reparameterization trick, so the whole thing
// is differentiable and Gorgonia's solver does the rest.
package vae

import (
	"bytes"
	"encoding/gob"
	"math/rand"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// logGuard keeps the reconstruction term away from log(0).
const logGuard = 1e-10

// VAE is the whole autoencoder. The graph is built once by Init for a
// fixed batch dimension; PartialFit, Transform and Reconstruct all run
// on it, while Generate spins up a throwaway generator-only graph so
// its batch dimension is free.
//
// A VAE is meant for a single owner. Nothing in here is safe for
// concurrent use.
type VAE struct {
	Config
	params params

	g   *G.ExprGraph
	x   *G.Node // input batch
	eps *G.Node // standard-normal noise for the reparameterized sample

	zMean       *G.Node
	zLogSigmaSq *G.Node
	xReconstr   *G.Node

	zMeanVal    G.Value // posterior means, captured per run
	reconstrVal G.Value // reconstruction means, captured per run
	costVal     G.Value // batch cost, for training recording

	vm     G.VM
	solver G.Solver
	rng    *rand.Rand
}

// New returns a new, uninitialized *VAE.
func New(conf Config) *VAE {
	return &VAE{
		Config: conf,
	}
}

// Init builds the computation graph and the training machinery. It must
// be called before any other method.
func (v *VAE) Init() error {
	if !v.IsValid() {
		return errors.Errorf("invalid configuration %+v", v.Config)
	}
	v.reset()
	v.g = G.NewGraph()
	v.rng = rand.New(rand.NewSource(v.Seed))

	var m maebe
	v.fwd(&m)
	v.bwd(&m)
	if m.err != nil {
		return m.err
	}

	trainables := nodes(v.params.trainable())
	v.vm = G.NewTapeMachine(v.g, G.BindDualValues(trainables...))
	v.solver = G.NewAdamSolver(G.WithLearnRate(v.LearnRate), G.WithBatchSize(float64(v.BatchSize)))
	return nil
}

func (v *VAE) fwd(m *maebe) {
	act := v.activation()
	init := glorotU(v.rng, 1.0)

	v.x = G.NewMatrix(v.g, Float, G.WithShape(v.BatchSize, v.InputDims), G.WithName("X"))
	v.eps = G.NewMatrix(v.g, Float, G.WithShape(v.BatchSize, v.LatentDims), G.WithName("Epsilon"))

	// recognition network
	var h *G.Node
	h, v.params.recogH1 = m.linear(v.x, v.RecogHidden1, "RecogH1", init)
	h = m.activate(h, act)
	h, v.params.recogH2 = m.linear(h, v.RecogHidden2, "RecogH2", init)
	h = m.activate(h, act)

	// the two posterior heads are raw affine transforms
	v.zMean, v.params.recogZMean = m.linear(h, v.LatentDims, "ZMean", init)
	v.zLogSigmaSq, v.params.recogZLogSigma = m.linear(h, v.LatentDims, "ZLogSigmaSq", init)
	G.Read(v.zMean, &v.zMeanVal)

	// z = mean + sqrt(exp(logvar)) ⊙ ε
	sigma := m.do(func() (*G.Node, error) { return G.Exp(v.zLogSigmaSq) })
	sigma = m.do(func() (*G.Node, error) { return G.Sqrt(sigma) })
	scaled := m.do(func() (*G.Node, error) { return G.HadamardProd(sigma, v.eps) })
	z := m.do(func() (*G.Node, error) { return G.Add(v.zMean, scaled) })

	// generator network
	h, v.params.generH1 = m.linear(z, v.GenerHidden1, "GenerH1", init)
	h = m.activate(h, act)
	h, v.params.generH2 = m.linear(h, v.GenerHidden2, "GenerH2", init)
	h = m.activate(h, act)
	var logits *G.Node
	logits, v.params.generXMean = m.linear(h, v.InputDims, "XMean", init)
	v.xReconstr = m.sigmoid(logits)
	G.Read(v.xReconstr, &v.reconstrVal)

	// the generator's log-variance head: weights only, never applied
	v.params.generXLogSigma = layer{
		w: G.NewMatrix(v.g, Float, G.WithShape(v.GenerHidden2, v.InputDims), G.WithInit(init), G.WithName("XLogSigma_w")),
		b: G.NewMatrix(v.g, Float, G.WithShape(1, v.InputDims), G.WithInit(G.Zeroes()), G.WithName("XLogSigma_b")),
	}
}

func (v *VAE) bwd(m *maebe) {
	if m.err != nil {
		return
	}
	one := m.c(1)
	half := m.c(0.5)
	guard := m.c(logGuard)

	// Bernoulli negative log-likelihood, summed over pixels:
	//	-Σ x·log(ε+x̂) + (1-x)·log(ε+1-x̂)
	logP := m.do(func() (*G.Node, error) { return G.Add(guard, v.xReconstr) })
	logP = m.do(func() (*G.Node, error) { return G.Log(logP) })
	logQ := m.do(func() (*G.Node, error) { return G.Sub(one, v.xReconstr) })
	logQ = m.do(func() (*G.Node, error) { return G.Add(guard, logQ) })
	logQ = m.do(func() (*G.Node, error) { return G.Log(logQ) })

	omx := m.do(func() (*G.Node, error) { return G.Sub(one, v.x) })
	ll := m.do(func() (*G.Node, error) { return G.HadamardProd(v.x, logP) })
	llq := m.do(func() (*G.Node, error) { return G.HadamardProd(omx, logQ) })
	recon := m.do(func() (*G.Node, error) { return G.Add(ll, llq) })
	recon = m.do(func() (*G.Node, error) { return G.Sum(recon, 1) })
	recon = m.do(func() (*G.Node, error) { return G.Neg(recon) })

	// KL(q(z|x) ‖ N(0,I)) in closed form, summed over latent dims:
	//	-0.5·Σ 1 + logσ² - μ² - σ²
	musq := m.do(func() (*G.Node, error) { return G.Square(v.zMean) })
	sigmaSq := m.do(func() (*G.Node, error) { return G.Exp(v.zLogSigmaSq) })
	kl := m.do(func() (*G.Node, error) { return G.Add(one, v.zLogSigmaSq) })
	kl = m.do(func() (*G.Node, error) { return G.Sub(kl, musq) })
	kl = m.do(func() (*G.Node, error) { return G.Sub(kl, sigmaSq) })
	kl = m.do(func() (*G.Node, error) { return G.Sum(kl, 1) })
	kl = m.do(func() (*G.Node, error) { return G.Neg(kl) })
	kl = m.do(func() (*G.Node, error) { return G.Mul(half, kl) })

	cost := m.do(func() (*G.Node, error) { return G.Add(recon, kl) })
	cost = m.do(func() (*G.Node, error) { return G.Mean(cost) })
	if m.err != nil {
		return
	}
	G.Read(cost, &v.costVal)

	if _, err := G.Grad(cost, nodes(v.params.trainable())...); err != nil {
		m.err = errors.WithStack(err)
	}
}

// Model returns every parameter node, including the unused generator
// log-variance head. This is the serialization order.
func (v *VAE) Model() G.Nodes { return nodes(v.params.all()) }

// Clone makes an independent copy with the same configuration and the
// same parameter values.
func (v *VAE) Clone() (*VAE, error) {
	v2 := New(v.Config)
	if err := v2.Init(); err != nil {
		return nil, err
	}

	model := v.Model()
	model2 := v2.Model()
	for i, n := range model {
		cloned := n.Value().(*tensor.Dense).Clone().(*tensor.Dense)
		if err := G.Let(model2[i], cloned); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return v2, nil
}

// Close releases the underlying VM. A gorgonia VM is a resource.
func (v *VAE) Close() error {
	if v.vm == nil {
		return nil
	}
	return v.vm.Close()
}

func (v *VAE) reset() {
	if v.vm != nil {
		v.vm.Close()
	}
	v.params = params{}
	v.g = nil
	v.x = nil
	v.eps = nil
	v.zMean = nil
	v.zLogSigmaSq = nil
	v.xReconstr = nil
	v.vm = nil
	v.solver = nil
}

func (v *VAE) GobEncode() (retVal []byte, err error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	for _, n := range v.Model() {
		val := n.Value()
		if err = enc.Encode(&val); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (v *VAE) GobDecode(p []byte) error {
	v.reset()
	if err := v.Init(); err != nil {
		return err
	}

	buf := bytes.NewBuffer(p)
	dec := gob.NewDecoder(buf)
	for _, n := range v.Model() {
		var val G.Value
		if err := dec.Decode(&val); err != nil {
			return err
		}
		G.Let(n, val)
	}
	return nil
}
