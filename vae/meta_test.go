package vae

import (
	"math/rand"
	"testing"

	"gorgonia.org/tensor"
)

// sliceBatcher is a tiny in-memory Batcher for tests. Batches are drawn
// in order, wrapping around at the end.
type sliceBatcher struct {
	xs   []float32
	dims int
	n    int
	next int
}

func (b *sliceBatcher) Len() int { return b.n }

func (b *sliceBatcher) NextBatch(n int) (*tensor.Dense, []int, error) {
	if b.next+n > b.n {
		b.next = 0
	}
	backing := make([]float32, n*b.dims)
	copy(backing, b.xs[b.next*b.dims:(b.next+n)*b.dims])
	labels := make([]int, n)
	for i := range labels {
		labels[i] = b.next + i
	}
	b.next += n
	return tensor.New(tensor.WithShape(n, b.dims), tensor.WithBacking(backing)), labels, nil
}

// twoBlobs makes n examples of the given width: half bright on the left,
// half bright on the right, jittered. Easy structure for a small model.
func twoBlobs(rng *rand.Rand, n, dims int) *sliceBatcher {
	xs := make([]float32, n*dims)
	for i := 0; i < n; i++ {
		for j := 0; j < dims; j++ {
			var base float32 = 0.1
			if (i%2 == 0) == (j < dims/2) {
				base = 0.9
			}
			p := base + (rng.Float32()-0.5)*0.1
			if p < 0 {
				p = 0
			}
			if p > 1 {
				p = 1
			}
			xs[i*dims+j] = p
		}
	}
	return &sliceBatcher{xs: xs, dims: dims, n: n}
}

func TestTrain(t *testing.T) {
	conf := DefaultConf(16, 2)
	conf.RecogHidden1 = 16
	conf.RecogHidden2 = 16
	conf.GenerHidden1 = 16
	conf.GenerHidden2 = 16
	conf.BatchSize = 50
	conf.LearnRate = 0.01
	conf.Seed = 4

	v := New(conf)
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	data := twoBlobs(rand.New(rand.NewSource(8)), 500, conf.InputDims)

	var first, last float32
	onEpoch := func(epoch int, avgCost float32) error {
		if epoch == 0 {
			first = avgCost
		}
		last = avgCost
		return nil
	}
	if err := Train(v, data, 30, 0, onEpoch); err != nil {
		t.Fatalf("%+v", err)
	}
	if last >= first {
		t.Errorf("Expected training to reduce the average cost: first epoch %v, last epoch %v", first, last)
	}
}

func TestTrainTooSmall(t *testing.T) {
	conf := DefaultConf(4, 2)
	conf.RecogHidden1 = 2
	conf.RecogHidden2 = 2
	conf.GenerHidden1 = 2
	conf.GenerHidden2 = 2
	conf.BatchSize = 100

	v := New(conf)
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	data := twoBlobs(rand.New(rand.NewSource(1)), 10, conf.InputDims)
	if err := Train(v, data, 1, 0, nil); err == nil {
		t.Error("Train should refuse a dataset smaller than one batch")
	}
}
