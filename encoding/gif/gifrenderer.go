// Package gif encodes training progress as an animated GIF: one frame
// per epoch, originals on top, their reconstructions below.
package gif

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/gorgonia/vago"
	"github.com/gorgonia/vago/encoding/grid"
	"github.com/pkg/errors"
)

const (
	frameDelay = 30  // hundredths of a second
	lastDelay  = 300 // hold the final frame
)

var greys color.Palette

func init() {
	greys = make(color.Palette, 256)
	for i := range greys {
		greys[i] = color.Gray{Y: uint8(i)}
	}
}

// Encoder encodes training progress according to the
// vago.OutputEncoder interface.
type Encoder struct {
	Cols int // tiles per row; defaults to 10

	out *gif.GIF
	io.Writer
}

// NewEncoder writes the animation to w on Flush.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		Cols:   10,
		out:    &gif.GIF{LoopCount: -1},
		Writer: w,
	}
}

// Encode appends one frame for the epoch.
func (enc *Encoder) Encode(mb vago.MetaBatch) error {
	caption := fmt.Sprintf("Epoch %d, cost: %.3f", mb.Epoch+1, mb.Cost)
	top, err := grid.Render(mb.Originals, mb.ImageH, mb.ImageW, enc.Cols, "")
	if err != nil {
		return errors.WithMessage(err, "rendering originals")
	}
	bottom, err := grid.Render(mb.Recons, mb.ImageH, mb.ImageW, enc.Cols, caption)
	if err != nil {
		return errors.WithMessage(err, "rendering reconstructions")
	}

	tb := top.Bounds()
	bb := bottom.Bounds()
	w := tb.Dx()
	if bb.Dx() > w {
		w = bb.Dx()
	}
	im := image.NewPaletted(image.Rect(0, 0, w, tb.Dy()+bb.Dy()), greys)
	draw.Draw(im, im.Bounds(), image.White, image.ZP, draw.Src)
	draw.Draw(im, tb, top, image.ZP, draw.Src)
	draw.Draw(im, bb.Add(image.Pt(0, tb.Dy())), bottom, image.ZP, draw.Src)

	enc.out.Image = append(enc.out.Image, im)
	enc.out.Delay = append(enc.out.Delay, frameDelay)
	return nil
}

// Flush writes the animation out.
func (enc *Encoder) Flush() error {
	if len(enc.out.Image) == 0 {
		return errors.New("nothing to flush")
	}
	enc.out.Delay[len(enc.out.Delay)-1] = lastDelay
	return errors.WithStack(gif.EncodeAll(enc.Writer, enc.out))
}
