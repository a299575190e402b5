package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 560
	ImageAreaHeight = 420
)

// ImageDisplay shows the source image next to the edge map.
type ImageDisplay struct {
	container   *container.Split
	source      *canvas.Image
	edges       *canvas.Image
	placeholder image.Image
}

func NewImageDisplay() *ImageDisplay {
	d := &ImageDisplay{placeholder: placeholder()}

	d.source = newImageCanvas(d.placeholder)
	d.edges = newImageCanvas(d.placeholder)

	d.container = container.NewHSplit(
		titled("**Source**", d.source),
		titled("**Edges**", d.edges),
	)
	d.container.SetOffset(0.5)
	return d
}

func newImageCanvas(img image.Image) *canvas.Image {
	c := canvas.NewImageFromImage(img)
	c.FillMode = canvas.ImageFillContain
	c.ScaleMode = canvas.ImageScaleSmooth
	c.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
	return c
}

func titled(title string, img *canvas.Image) fyne.CanvasObject {
	return container.NewBorder(
		widget.NewRichTextFromMarkdown(title), nil, nil, nil,
		container.NewStack(canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255}), img),
	)
}

func placeholder() image.Image {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = 240
	}
	return img
}

// SetSource must be called on the UI goroutine. nil restores the placeholder.
func (d *ImageDisplay) SetSource(img image.Image) {
	d.set(d.source, img)
}

// SetEdges must be called on the UI goroutine. nil restores the placeholder.
func (d *ImageDisplay) SetEdges(img image.Image) {
	d.set(d.edges, img)
}

func (d *ImageDisplay) set(target *canvas.Image, img image.Image) {
	if img == nil {
		img = d.placeholder
	}
	target.Image = img
	target.Refresh()
}

func (d *ImageDisplay) GetContainer() fyne.CanvasObject {
	return d.container
}
