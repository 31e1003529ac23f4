package vae

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

type dotLayer struct {
	name string
	l    layer
}

// ToDot returns a graphviz rendering of the network layout: every dense
// layer with its weight shape, chained in execution order, with the
// noise input feeding the sampling step.
func (v *VAE) ToDot() (string, error) {
	if v.g == nil {
		return "", errors.New("uninitialized model: call Init first")
	}
	g := gographviz.NewGraph()
	if err := g.SetName("VAE"); err != nil {
		return "", errors.WithStack(err)
	}
	g.SetDir(true)

	addNode := func(name, label string) error {
		return g.AddNode("VAE", strconv.Quote(name), map[string]string{
			"label":    strconv.Quote(label),
			"fontname": strconv.Quote("Monaco"),
			"shape":    "box",
		})
	}
	addEdge := func(from, to string) error {
		return g.AddEdge(strconv.Quote(from), strconv.Quote(to), true, nil)
	}

	if err := addNode("X", fmt.Sprintf("X (%d, %d)", v.BatchSize, v.InputDims)); err != nil {
		return "", errors.WithStack(err)
	}
	if err := addNode("Epsilon", fmt.Sprintf("ε (%d, %d)", v.BatchSize, v.LatentDims)); err != nil {
		return "", errors.WithStack(err)
	}

	recog := []dotLayer{
		{"RecogH1", v.params.recogH1},
		{"RecogH2", v.params.recogH2},
	}
	prev := "X"
	for _, dl := range recog {
		if err := addNode(dl.name, layerLabel(dl)); err != nil {
			return "", errors.WithStack(err)
		}
		if err := addEdge(prev, dl.name); err != nil {
			return "", errors.WithStack(err)
		}
		prev = dl.name
	}

	heads := []dotLayer{
		{"ZMean", v.params.recogZMean},
		{"ZLogSigmaSq", v.params.recogZLogSigma},
	}
	for _, dl := range heads {
		if err := addNode(dl.name, layerLabel(dl)); err != nil {
			return "", errors.WithStack(err)
		}
		if err := addEdge(prev, dl.name); err != nil {
			return "", errors.WithStack(err)
		}
	}

	if err := addNode("Z", fmt.Sprintf("z (%d, %d)", v.BatchSize, v.LatentDims)); err != nil {
		return "", errors.WithStack(err)
	}
	for _, src := range []string{"ZMean", "ZLogSigmaSq", "Epsilon"} {
		if err := addEdge(src, "Z"); err != nil {
			return "", errors.WithStack(err)
		}
	}

	gener := []dotLayer{
		{"GenerH1", v.params.generH1},
		{"GenerH2", v.params.generH2},
		{"XMean", v.params.generXMean},
	}
	prev = "Z"
	for _, dl := range gener {
		if err := addNode(dl.name, layerLabel(dl)); err != nil {
			return "", errors.WithStack(err)
		}
		if err := addEdge(prev, dl.name); err != nil {
			return "", errors.WithStack(err)
		}
		prev = dl.name
	}
	return g.String(), nil
}

func layerLabel(dl dotLayer) string {
	s := dl.l.w.Shape()
	return fmt.Sprintf("%s (%d, %d)", dl.name, s[0], s[1])
}
