package vae

import G "gorgonia.org/gorgonia"

// Activation is a pointwise nonlinearity applied after a dense layer.
type Activation func(*G.Node) (*G.Node, error)

// Config configures the variational autoencoder.
type Config struct {
	InputDims    int // width of a flattened input vector
	RecogHidden1 int // recognition network hidden widths
	RecogHidden2 int
	GenerHidden1 int // generator network hidden widths
	GenerHidden2 int
	LatentDims   int // width of the latent code

	BatchSize int     // the graph is built for this fixed batch dimension
	LearnRate float64 // Adam learning rate
	Seed      int64   // seeds both the weight draws and the sampling noise

	Activation Activation // nil means softplus
}

// DefaultConf uses the hyperparameters of the classic MNIST setup: two
// hidden layers of 500 units on each side, batches of 100, Adam at 1e-3.
func DefaultConf(inputDims, latentDims int) Config {
	return Config{
		InputDims:    inputDims,
		RecogHidden1: 500,
		RecogHidden2: 500,
		GenerHidden1: 500,
		GenerHidden2: 500,
		LatentDims:   latentDims,

		BatchSize: 100,
		LearnRate: 0.001,
	}
}

func (conf Config) IsValid() bool {
	return conf.InputDims >= 1 &&
		conf.LatentDims >= 1 &&
		conf.RecogHidden1 >= 1 &&
		conf.RecogHidden2 >= 1 &&
		conf.GenerHidden1 >= 1 &&
		conf.GenerHidden2 >= 1 &&
		conf.BatchSize >= 1 &&
		conf.LearnRate > 0
}

func (conf Config) activation() Activation {
	if conf.Activation == nil {
		return G.Softplus
	}
	return conf.Activation
}
