// Package mnist loads the MNIST handwritten digit dataset from the
// official IDX files and serves it in shuffled mini-batches.
package mnist

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	imageMagic = 2051
	labelMagic = 2049
)

// readImages reads an IDX image file: a big-endian magic number, the
// image count, rows, cols, then raw unsigned-byte pixels.
func readImages(filename string) (images [][]byte, h, w int, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, 0, 0, errors.WithStack(err)
	}
	defer f.Close()

	var magic uint32
	if err = binary.Read(f, binary.BigEndian, &magic); err != nil {
		return nil, 0, 0, errors.Wrapf(err, "reading magic of %q", filename)
	}
	if magic != imageMagic {
		return nil, 0, 0, errors.Errorf("%q: magic %d, want %d", filename, magic, imageMagic)
	}

	var count, rows, cols uint32
	if err = binary.Read(f, binary.BigEndian, &count); err != nil {
		return nil, 0, 0, errors.WithStack(err)
	}
	if err = binary.Read(f, binary.BigEndian, &rows); err != nil {
		return nil, 0, 0, errors.WithStack(err)
	}
	if err = binary.Read(f, binary.BigEndian, &cols); err != nil {
		return nil, 0, 0, errors.WithStack(err)
	}

	images = make([][]byte, count)
	size := int(rows * cols)
	for i := range images {
		images[i] = make([]byte, size)
		if _, err = io.ReadFull(f, images[i]); err != nil {
			return nil, 0, 0, errors.Wrapf(err, "reading image %d of %q", i, filename)
		}
	}
	return images, int(rows), int(cols), nil
}

func readLabels(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	var magic uint32
	if err = binary.Read(f, binary.BigEndian, &magic); err != nil {
		return nil, errors.Wrapf(err, "reading magic of %q", filename)
	}
	if magic != labelMagic {
		return nil, errors.Errorf("%q: magic %d, want %d", filename, magic, labelMagic)
	}

	var count uint32
	if err = binary.Read(f, binary.BigEndian, &count); err != nil {
		return nil, errors.WithStack(err)
	}

	labels := make([]byte, count)
	if _, err = io.ReadFull(f, labels); err != nil {
		return nil, errors.Wrapf(err, "reading labels of %q", filename)
	}
	return labels, nil
}

// Load reads the training or test split from dir. Expected files are
// the standard names: train-images-idx3-ubyte and friends.
func Load(dir string, train bool, seed int64) (*Dataset, error) {
	imageFile := filepath.Join(dir, "t10k-images-idx3-ubyte")
	labelFile := filepath.Join(dir, "t10k-labels-idx1-ubyte")
	if train {
		imageFile = filepath.Join(dir, "train-images-idx3-ubyte")
		labelFile = filepath.Join(dir, "train-labels-idx1-ubyte")
	}

	images, h, w, err := readImages(imageFile)
	if err != nil {
		return nil, err
	}
	labels, err := readLabels(labelFile)
	if err != nil {
		return nil, err
	}
	if len(images) != len(labels) {
		return nil, errors.Errorf("%d images but %d labels", len(images), len(labels))
	}
	return fromIDX(images, labels, h, w, seed)
}
