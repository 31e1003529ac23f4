package vago

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// Statistics records the average cost of every epoch seen so far.
type Statistics struct {
	Epochs  []int
	Costs   []float32
	Elapsed []time.Duration
}

func makeStatistics() Statistics {
	return Statistics{
		Epochs:  make([]int, 0, 64),
		Costs:   make([]float32, 0, 64),
		Elapsed: make([]time.Duration, 0, 64),
	}
}

func (s *Statistics) update(epoch int, cost float32, elapsed time.Duration) {
	s.Epochs = append(s.Epochs, epoch)
	s.Costs = append(s.Costs, cost)
	s.Elapsed = append(s.Elapsed, elapsed)
}

// Dump writes the cost history as CSV: epoch, average cost, seconds
// since training started.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"epoch", "cost", "seconds"}); err != nil {
		return err
	}
	var records [][]string
	for i, epoch := range s.Epochs {
		records = append(records, []string{
			strconv.Itoa(epoch),
			strconv.FormatFloat(float64(s.Costs[i]), 'f', 6, 32),
			strconv.FormatFloat(s.Elapsed[i].Seconds(), 'f', 3, 64),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
