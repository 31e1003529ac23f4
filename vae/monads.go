package vae

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
)

var Float = G.Float32

type maebe struct {
	err error
}

// generic monad... may be useful
func (m *maebe) do(f func() (*G.Node, error)) (retVal *G.Node) {
	if m.err != nil {
		return nil
	}
	if retVal, m.err = f(); m.err != nil {
		m.err = errors.WithStack(m.err)
	}
	return
}

// linear makes a fresh dense layer. The weight matrix is drawn by init,
// the bias is a zeroed (1, units) row broadcast over the batch.
func (m *maebe) linear(input *G.Node, units int, name string, init G.InitWFn) (*G.Node, layer) {
	if m.err != nil {
		return nil, layer{}
	}
	g := input.Graph()
	w := G.NewMatrix(g, Float, G.WithShape(input.Shape()[1], units), G.WithInit(init), G.WithName(name+"_w"))
	b := G.NewMatrix(g, Float, G.WithShape(1, units), G.WithInit(G.Zeroes()), G.WithName(name+"_b"))
	xw := m.do(func() (*G.Node, error) { return G.Mul(input, w) })
	out := m.do(func() (*G.Node, error) { return G.BroadcastAdd(xw, b, nil, []byte{0}) })
	return out, layer{w: w, b: b}
}

// dense applies an existing layer's current values inside another graph.
// The tensors are shared, not copied, so the result always reflects the
// parameters as last stepped by the solver.
func (m *maebe) dense(input *G.Node, l layer, name string) *G.Node {
	if m.err != nil {
		return nil
	}
	g := input.Graph()
	w := G.NodeFromAny(g, l.w.Value(), G.WithName(name+"_w"))
	b := G.NodeFromAny(g, l.b.Value(), G.WithName(name+"_b"))
	xw := m.do(func() (*G.Node, error) { return G.Mul(input, w) })
	return m.do(func() (*G.Node, error) { return G.BroadcastAdd(xw, b, nil, []byte{0}) })
}

func (m *maebe) activate(input *G.Node, fn Activation) (retVal *G.Node) {
	if m.err != nil {
		return nil
	}
	if retVal, m.err = fn(input); m.err != nil {
		m.err = errors.WithStack(m.err)
	}
	return
}

func (m *maebe) sigmoid(input *G.Node) (retVal *G.Node) {
	if m.err != nil {
		return nil
	}
	if retVal, m.err = G.Sigmoid(input); m.err != nil {
		m.err = errors.WithStack(m.err)
	}
	return
}

// c makes a scalar constant of the package dtype.
func (m *maebe) c(v float64) *G.Node {
	switch Float {
	case G.Float32:
		return G.NewConstant(float32(v))
	case G.Float64:
		return G.NewConstant(v)
	}
	panic("unreachable")
}
