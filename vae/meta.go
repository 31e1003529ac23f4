package vae

import (
	"log"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Batcher is a dataset provider: a fixed-size collection of flattened
// vectors in [0,1] that can be drawn from in mini-batches without
// replacement. Labels travel along for callers that want them; the
// trainer ignores them.
type Batcher interface {
	Len() int
	NextBatch(n int) (xs *tensor.Dense, labels []int, err error)
}

// EpochEnd is called after each epoch with the weighted average cost.
// Returning an error stops training.
type EpochEnd func(epoch int, avgCost float32) error

// Train is a basic trainer. Each epoch draws floor(Len/BatchSize)
// batches and accumulates the average cost weighted by BatchSize/Len.
// Every reportEvery epochs the average is logged; reportEvery <= 0
// silences it. onEpoch may be nil.
//
// There is no early stopping and no validation split. The first
// non-finite cost aborts with an error rather than burning epochs on a
// diverged model.
func Train(v *VAE, data Batcher, epochs, reportEvery int, onEpoch EpochEnd) error {
	n := data.Len()
	batches := n / v.BatchSize
	if batches < 1 {
		return errors.Errorf("dataset of %d samples is smaller than one batch of %d", n, v.BatchSize)
	}

	frac := float32(v.BatchSize) / float32(n)
	for epoch := 0; epoch < epochs; epoch++ {
		var avg float32
		for bat := 0; bat < batches; bat++ {
			xs, _, err := data.NextBatch(v.BatchSize)
			if err != nil {
				return errors.WithMessagef(err, "drawing batch %d of epoch %d", bat, epoch)
			}
			cost, err := v.PartialFit(xs)
			if err != nil {
				return err
			}
			if math32.IsNaN(cost) || math32.IsInf(cost, 0) {
				return errors.Errorf("cost diverged to %v on batch %d of epoch %d", cost, bat, epoch)
			}
			avg += cost * frac
		}
		if reportEvery > 0 && epoch%reportEvery == 0 {
			log.Printf("Epoch %04d cost %.9f", epoch+1, avg)
		}
		if onEpoch != nil {
			if err := onEpoch(epoch, avg); err != nil {
				return err
			}
		}
	}
	return nil
}
