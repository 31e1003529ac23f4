package vago

import (
	"github.com/gorgonia/vago/vae"
	"gorgonia.org/tensor"
)

type Config struct {
	Name   string
	NNConf vae.Config

	ImageH, ImageW int // shape a flattened vector reshapes to for display
	ReportEvery    int // epochs between log lines; 0 silences them

	// extensions
	OutputEncoder OutputEncoder
}

// OutputEncoder encodes the training progress as whatever.
//
// An example OutputEncoder is the GifEncoder. Another example would be
// a logger.
type OutputEncoder interface {
	Encode(mb MetaBatch) error
	Flush() error
}

// MetaBatch is one epoch's progress frame: a probe batch and its
// reconstructions, plus enough metadata to caption it.
type MetaBatch struct {
	Name  string
	Epoch int
	Cost  float32

	Labels    []int
	Originals *tensor.Dense
	Recons    *tensor.Dense

	ImageH, ImageW int
}
