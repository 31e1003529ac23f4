package vae

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"gorgonia.org/tensor"
)

func smallConf() Config {
	conf := DefaultConf(16, 2)
	conf.RecogHidden1 = 8
	conf.RecogHidden2 = 8
	conf.GenerHidden1 = 8
	conf.GenerHidden2 = 8
	conf.BatchSize = 10
	conf.Seed = 1337
	return conf
}

func randBatch(rng *rand.Rand, batch, dims int) *tensor.Dense {
	backing := make([]float32, batch*dims)
	for i := range backing {
		backing[i] = rng.Float32()
	}
	return tensor.New(tensor.WithShape(batch, dims), tensor.WithBacking(backing))
}

func TestSanity(t *testing.T) {
	v := New(smallConf())
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()
	t.Logf("Number of nodes: %d", len(v.g.AllNodes()))

	rng := rand.New(rand.NewSource(99))
	xs := randBatch(rng, v.BatchSize, v.InputDims)

	first, err := v.PartialFit(xs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if first < 0 {
		t.Errorf("cost should be non-negative, got %v", first)
	}
	var last float32
	for i := 0; i < 50; i++ {
		if last, err = v.PartialFit(xs); err != nil {
			t.Fatalf("%+v", err)
		}
	}
	if last >= first {
		t.Errorf("Expected repeated steps on one batch to reduce the cost: first %v, last %v", first, last)
	}
	runtime.GC()
}

func TestTransform(t *testing.T) {
	assert := assert.New(t)
	v := New(smallConf())
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	rng := rand.New(rand.NewSource(7))
	xs := randBatch(rng, v.BatchSize, v.InputDims)

	a, err := v.Transform(xs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal([]int(a.Shape()), []int{v.BatchSize, v.LatentDims})

	b, err := v.Transform(xs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(a.Data(), b.Data(), "transform must be deterministic")
}

func TestReconstructRange(t *testing.T) {
	conf := DefaultConf(4, 2)
	conf.RecogHidden1 = 3
	conf.RecogHidden2 = 3
	conf.GenerHidden1 = 3
	conf.GenerHidden2 = 3
	conf.BatchSize = 2
	conf.Seed = 21

	v := New(conf)
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	zeros := tensor.New(tensor.WithShape(2, 4), tensor.Of(tensor.Float32))
	recon, err := v.Reconstruct(zeros)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	for i, p := range recon.Data().([]float32) {
		if p <= 0 || p >= 1 {
			t.Errorf("pixel %d = %v, want strictly inside (0, 1)", i, p)
		}
	}
}

func TestGenerate(t *testing.T) {
	assert := assert.New(t)
	v := New(smallConf())
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	// a batch dimension unrelated to the configured batch size
	z := randBatch(rand.New(rand.NewSource(3)), 5, v.LatentDims)
	a, err := v.Generate(z)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal([]int(a.Shape()), []int{5, v.InputDims})

	b, err := v.Generate(z)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(a.Data(), b.Data(), "generate must be deterministic for a given z")

	prior, err := v.Generate(nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal([]int(prior.Shape()), []int{1, v.InputDims})
	for _, p := range prior.Data().([]float32) {
		assert.True(p > 0 && p < 1, "generated pixel %v outside (0, 1)", p)
	}
}

func TestShapeMismatch(t *testing.T) {
	v := New(smallConf())
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	rng := rand.New(rand.NewSource(11))
	bad := []*tensor.Dense{
		randBatch(rng, v.BatchSize+1, v.InputDims),
		randBatch(rng, v.BatchSize, v.InputDims+1),
		nil,
	}
	for i, xs := range bad {
		if _, err := v.PartialFit(xs); err == nil {
			t.Errorf("case %d: PartialFit should reject shape mismatch", i)
		}
		if _, err := v.Transform(xs); err == nil {
			t.Errorf("case %d: Transform should reject shape mismatch", i)
		}
		if _, err := v.Reconstruct(xs); err == nil {
			t.Errorf("case %d: Reconstruct should reject shape mismatch", i)
		}
	}
	if _, err := v.Generate(randBatch(rng, 3, v.LatentDims+1)); err == nil {
		t.Error("Generate should reject latent width mismatch")
	}
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)
	v := New(smallConf())
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		t.Fatalf("Encoding failure %v", err)
	}

	v2 := New(smallConf())
	dec := gob.NewDecoder(&buf)
	if err := dec.Decode(v2); err != nil {
		t.Fatalf("Decoding failure %v", err)
	}
	defer v2.Close()

	model := v.Model()
	model2 := v2.Model()
	assert.Equal(len(model), len(model2))
	for i, n := range model {
		fst := n.Value().Data().([]float32)
		snd := model2[i].Value().Data().([]float32)
		if diff := cmp.Diff(fst, snd); diff != "" {
			t.Errorf("%d - %v differs after decode:\n%s", i, n.Name(), diff)
		}
	}
}

func TestClone(t *testing.T) {
	assert := assert.New(t)
	v := New(smallConf())
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	v2, err := v.Clone()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer v2.Close()

	xs := randBatch(rand.New(rand.NewSource(17)), v.BatchSize, v.InputDims)
	a, err := v.Transform(xs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	b, err := v2.Transform(xs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(a.Data(), b.Data(), "a clone should embed identically")

	// stepping the original must not leak into the clone
	if _, err := v.PartialFit(xs); err != nil {
		t.Fatalf("%+v", err)
	}
	c, err := v2.Transform(xs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(b.Data(), c.Data(), "clone parameters changed when the original was stepped")
}

func TestSeededInit(t *testing.T) {
	assert := assert.New(t)
	a := New(smallConf())
	b := New(smallConf())
	if err := a.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer a.Close()
	if err := b.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer b.Close()

	xs := randBatch(rand.New(rand.NewSource(23)), a.BatchSize, a.InputDims)
	av, err := a.Transform(xs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	bv, err := b.Transform(xs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(av.Data(), bv.Data(), "same seed, same embedding")
}
