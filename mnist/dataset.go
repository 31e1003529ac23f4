package mnist

import (
	"math/rand"

	"github.com/gorgonia/vago"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Dataset holds flattened images normalized to [0, 1], along with their
// labels. It implements vae.Batcher: batches are drawn without
// replacement, with a reshuffle at every epoch boundary.
type Dataset struct {
	xs     []float32 // n × dims, row-major
	labels []int

	n    int
	h, w int

	rng  *rand.Rand
	perm []int
	next int
}

func fromIDX(images [][]byte, labels []byte, h, w int, seed int64) (*Dataset, error) {
	n := len(images)
	dims := h * w
	xs := make([]float32, n*dims)
	lbl := make([]int, n)
	for i, img := range images {
		if len(img) != dims {
			return nil, errors.Errorf("image %d has %d pixels, want %d", i, len(img), dims)
		}
		vago.EncodePixels(img, xs[i*dims:(i+1)*dims])
		lbl[i] = int(labels[i])
	}
	return FromRaw(xs, lbl, h, w, seed)
}

// FromRaw builds a Dataset from already-normalized flattened images.
// xs is row-major, n×(h·w).
func FromRaw(xs []float32, labels []int, h, w int, seed int64) (*Dataset, error) {
	dims := h * w
	if dims < 1 {
		return nil, errors.Errorf("bad image shape %d×%d", h, w)
	}
	if len(xs)%dims != 0 {
		return nil, errors.Errorf("%d floats do not divide into %d×%d images", len(xs), h, w)
	}
	n := len(xs) / dims
	if len(labels) != n {
		return nil, errors.Errorf("%d images but %d labels", n, len(labels))
	}

	d := &Dataset{
		xs:     xs,
		labels: labels,
		n:      n,
		h:      h,
		w:      w,
		rng:    rand.New(rand.NewSource(seed)),
		perm:   make([]int, n),
	}
	for i := range d.perm {
		d.perm[i] = i
	}
	d.shuffle()
	return d, nil
}

func (d *Dataset) shuffle() {
	d.rng.Shuffle(d.n, func(i, j int) {
		d.perm[i], d.perm[j] = d.perm[j], d.perm[i]
	})
	d.next = 0
}

// Len is the number of samples.
func (d *Dataset) Len() int { return d.n }

// Dims is the width of one flattened image.
func (d *Dataset) Dims() int { return d.h * d.w }

// ImageDims is the display shape of one image.
func (d *Dataset) ImageDims() (h, w int) { return d.h, d.w }

// NextBatch returns the next n samples of the current epoch's
// permutation, reshuffling once the permutation runs out.
func (d *Dataset) NextBatch(n int) (*tensor.Dense, []int, error) {
	if n < 1 || n > d.n {
		return nil, nil, errors.Errorf("cannot draw a batch of %d from %d samples", n, d.n)
	}
	if d.next+n > d.n {
		d.shuffle()
	}

	dims := d.Dims()
	backing := make([]float32, n*dims)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		idx := d.perm[d.next+i]
		copy(backing[i*dims:(i+1)*dims], d.xs[idx*dims:(idx+1)*dims])
		labels[i] = d.labels[idx]
	}
	d.next += n

	return tensor.New(tensor.WithShape(n, dims), tensor.WithBacking(backing)), labels, nil
}
