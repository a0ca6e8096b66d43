// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate draws the winning detection onto the uploaded photo:
// a red bounding box with a "class confidence" label above it. The output
// is always JPEG regardless of the upload format.
package annotate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pdiddy/haircheck/internal/detect"
)

const (
	borderWidth = 3
	jpegQuality = 90
)

var boxColor = color.RGBA{R: 0xff, A: 0xff}

// JPEG decodes src (JPEG or PNG), draws the detection box and label, and
// re-encodes as JPEG.
func JPEG(src []byte, det detect.Detection) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)

	x1 := clamp(int(det.Box[0]), bounds.Min.X, bounds.Max.X-1)
	y1 := clamp(int(det.Box[1]), bounds.Min.Y, bounds.Max.Y-1)
	x2 := clamp(int(det.Box[2]), bounds.Min.X, bounds.Max.X-1)
	y2 := clamp(int(det.Box[3]), bounds.Min.Y, bounds.Max.Y-1)
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}

	drawBorder(canvas, x1, y1, x2, y2)
	drawLabel(canvas, x1, y1, fmt.Sprintf("%s %.2f", det.Class, det.Confidence))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding annotated image: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBorder paints four filled strips forming a borderWidth-thick
// rectangle outline.
func drawBorder(canvas *image.RGBA, x1, y1, x2, y2 int) {
	fill := image.NewUniform(boxColor)
	edges := []image.Rectangle{
		image.Rect(x1, y1, x2+1, y1+borderWidth),  // top
		image.Rect(x1, y2-borderWidth+1, x2+1, y2+1), // bottom
		image.Rect(x1, y1, x1+borderWidth, y2+1),  // left
		image.Rect(x2-borderWidth+1, y1, x2+1, y2+1), // right
	}
	for _, e := range edges {
		draw.Draw(canvas, e.Intersect(canvas.Bounds()), fill, image.Point{}, draw.Src)
	}
}

// drawLabel renders text just above the box, or inside it when the box
// touches the top edge.
func drawLabel(canvas *image.RGBA, x, y int, text string) {
	face := basicfont.Face7x13
	baseline := y - 4
	if baseline-face.Ascent < canvas.Bounds().Min.Y {
		baseline = y + face.Height + borderWidth
	}

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(boxColor),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
