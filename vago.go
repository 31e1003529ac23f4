// Package vago wires a variational autoencoder to a dataset and to
// whatever wants to watch it learn.
package vago

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/gorgonia/vago/vae"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Session is the top level structure and the entry point of the API. It
// ties a model to a dataset, keeps per-epoch statistics, and feeds
// progress frames to an OutputEncoder if one is configured.
type Session struct {
	Statistics

	NN   *vae.VAE
	data vae.Batcher
	conf Config

	// a fixed batch reused for every progress frame, so the frames are
	// comparable across epochs
	probeX      *tensor.Dense
	probeLabels []int
}

// New Session. It takes a dataset and a configuration to apply to the
// neural network.
func New(data vae.Batcher, conf Config) *Session {
	if !conf.NNConf.IsValid() {
		panic("NNConf is not valid. Unable to proceed")
	}

	nn := vae.New(conf.NNConf)
	if err := nn.Init(); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}

	return &Session{
		Statistics: makeStatistics(),
		NN:         nn,
		data:       data,
		conf:       conf,
	}
}

// Learn trains for the given number of epochs, recording the average
// cost of each epoch and encoding one progress frame per epoch.
func (s *Session) Learn(epochs int) error {
	start := time.Now()
	onEpoch := func(epoch int, avgCost float32) error {
		s.update(epoch, avgCost, time.Since(start))
		if s.conf.OutputEncoder == nil {
			return nil
		}
		mb, err := s.frame(epoch, avgCost)
		if err != nil {
			return err
		}
		return s.conf.OutputEncoder.Encode(mb)
	}

	if err := vae.Train(s.NN, s.data, epochs, s.conf.ReportEvery, onEpoch); err != nil {
		return err
	}
	if s.conf.OutputEncoder != nil {
		return s.conf.OutputEncoder.Flush()
	}
	return nil
}

func (s *Session) frame(epoch int, cost float32) (MetaBatch, error) {
	if s.probeX == nil {
		xs, labels, err := s.data.NextBatch(s.NN.BatchSize)
		if err != nil {
			return MetaBatch{}, errors.WithMessage(err, "drawing the probe batch")
		}
		s.probeX = xs
		s.probeLabels = labels
	}
	recon, err := s.NN.Reconstruct(s.probeX)
	if err != nil {
		return MetaBatch{}, err
	}
	return MetaBatch{
		Name:      s.conf.Name,
		Epoch:     epoch,
		Cost:      cost,
		Labels:    s.probeLabels,
		Originals: s.probeX,
		Recons:    recon,
		ImageH:    s.conf.ImageH,
		ImageW:    s.conf.ImageW,
	}, nil
}

// Save the learned model into filename.
func (s *Session) Save(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0544)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	return enc.Encode(s.NN)
}

// Load a previously saved model from filename. The configuration must
// match the one the model was saved with.
func (s *Session) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	if err := s.NN.Close(); err != nil {
		return errors.WithStack(err)
	}
	s.NN = vae.New(s.conf.NNConf)

	dec := gob.NewDecoder(f)
	if err = dec.Decode(s.NN); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Close releases the model's resources.
func (s *Session) Close() error { return s.NN.Close() }
