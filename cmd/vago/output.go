package main

import (
	"image"
	"log"
	"os"

	"github.com/gorgonia/vago"
	"github.com/gorgonia/vago/encoding/grid"
	"github.com/gorgonia/vago/mnist"
)

// writeReconstructions round-trips one batch and writes originals and
// reconstructions side by side.
func writeReconstructions(s *vago.Session, ds *mnist.Dataset, filename string) error {
	xs, _, err := ds.NextBatch(s.NN.BatchSize)
	if err != nil {
		return err
	}
	recon, err := s.NN.Reconstruct(xs)
	if err != nil {
		return err
	}

	h, w := ds.ImageDims()
	origIm, err := grid.Render(xs, h, w, 10, "input")
	if err != nil {
		return err
	}
	reconIm, err := grid.Render(recon, h, w, 10, "reconstruction")
	if err != nil {
		return err
	}

	if err = writePNG(filename+".orig.png", origIm); err != nil {
		return err
	}
	if err = writePNG(filename, reconIm); err != nil {
		return err
	}
	log.Printf("wrote %s", filename)
	return nil
}

// writeManifold sweeps the 2-d latent space and writes what the
// generator paints across it.
func writeManifold(s *vago.Session, filename string) error {
	h := s.NN.InputDims
	// MNIST images are square
	side := 1
	for side*side < h {
		side++
	}
	im, err := grid.Manifold(s.NN, side, side, 20, 20)
	if err != nil {
		return err
	}
	if err = writePNG(filename, im); err != nil {
		return err
	}
	log.Printf("wrote %s", filename)
	return nil
}

func writeDot(s *vago.Session, filename string) error {
	dot, err := s.NN.ToDot()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(dot), 0644)
}

func writePNG(filename string, im image.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return grid.WritePNG(f, im)
}
