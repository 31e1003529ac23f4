// Package grid renders batches of flattened images as tiled greyscale
// grids, for eyeballing reconstructions and the learned latent
// manifold.
package grid

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/gorgonia/vago"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
	"gorgonia.org/tensor"
)

var regular *truetype.Font

const (
	dpi        = 144.0
	fontsize   = 8.0
	lineheight = 1.2
	pad        = 2
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

// Generator is anything that can decode latent codes into images. A
// *vae.VAE is one.
type Generator interface {
	Generate(z *tensor.Dense) (*tensor.Dense, error)
}

// Render tiles a batch (n × h·w) into a grid of cols columns, with an
// optional caption strip at the bottom.
func Render(batch *tensor.Dense, h, w, cols int, caption string) (image.Image, error) {
	if batch == nil || batch.Dims() != 2 {
		return nil, errors.New("batch must be a matrix of flattened images")
	}
	n := batch.Shape()[0]
	if batch.Shape()[1] != h*w {
		return nil, errors.Errorf("batch row width %d does not reshape to %d×%d", batch.Shape()[1], h, w)
	}
	if cols < 1 {
		cols = 1
	}
	rows := (n + cols - 1) / cols

	captionH := 0
	if caption != "" {
		captionH = dy() + pad
	}
	imW := cols*w + (cols+1)*pad
	imH := rows*h + (rows+1)*pad + captionH
	im := image.NewGray(image.Rect(0, 0, imW, imH))
	for i := range im.Pix {
		im.Pix[i] = 255
	}

	data := batch.Data().([]float32)
	dims := h * w
	for i := 0; i < n; i++ {
		tile(im, data[i*dims:(i+1)*dims], h, w, i/cols, i%cols)
	}

	if caption != "" {
		drawCaption(im, caption, imH-pad)
	}
	return im, nil
}

// Manifold sweeps a rows×cols grid of prior quantiles through a 2-d
// latent space and tiles what the generator paints for each point.
func Manifold(gen Generator, h, w, rows, cols int) (image.Image, error) {
	if rows < 1 || cols < 1 {
		return nil, errors.Errorf("bad manifold geometry %d×%d", rows, cols)
	}
	backing := make([]float32, rows*cols*2)
	for i := 0; i < rows; i++ {
		zi := gaussianQuantile((float32(i) + 0.5) / float32(rows))
		for j := 0; j < cols; j++ {
			zj := gaussianQuantile((float32(j) + 0.5) / float32(cols))
			backing[(i*cols+j)*2] = zj
			backing[(i*cols+j)*2+1] = zi
		}
	}
	z := tensor.New(tensor.WithShape(rows*cols, 2), tensor.WithBacking(backing))

	decoded, err := gen.Generate(z)
	if err != nil {
		return nil, err
	}
	return Render(decoded, h, w, cols, "")
}

// WritePNG encodes the image as PNG.
func WritePNG(w io.Writer, im image.Image) error {
	return errors.WithStack(png.Encode(w, im))
}

// tile paints one flattened image at grid position (row, col). vec is
// in [0, 1]; it is aliased as rows, not copied.
func tile(im *image.Gray, vec []float32, h, w, row, col int) {
	x0 := pad + col*(w+pad)
	y0 := pad + row*(h+pad)
	rows := vago.MakeRows(vec, h, w)
	defer vago.ReturnRows(h, w, rows)
	levels := make([]byte, w)
	for y, r := range rows {
		vago.DecodePixels(r, levels)
		for x, g := range levels {
			im.SetGray(x0+x, y0+y, color.Gray{Y: g})
		}
	}
}

func dy() int {
	return int(math.Ceil(fontsize * lineheight * dpi / 72))
}

func drawCaption(im *image.Gray, caption string, baseline int) {
	face := truetype.NewFace(regular, &truetype.Options{
		Size:    fontsize,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	d := font.Drawer{
		Dst:  im,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(pad, baseline),
	}
	d.DrawString(caption)
}
