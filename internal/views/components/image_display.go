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
	ImageAreaWidth  = 480
	ImageAreaHeight = 480
)

// ImageDisplay shows the problem and answer charts side by side.
type ImageDisplay struct {
	container    *fyne.Container
	problemImage *canvas.Image
	answerImage  *canvas.Image
	splitView    *container.Split

	placeholder image.Image

	hasProblem bool
	hasAnswer  bool
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.placeholder = id.createPlaceholderImage()

	id.problemImage = canvas.NewImageFromImage(id.placeholder)
	id.problemImage.FillMode = canvas.ImageFillContain
	id.problemImage.ScaleMode = canvas.ImageScaleSmooth
	id.problemImage.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))

	id.answerImage = canvas.NewImageFromImage(id.placeholder)
	id.answerImage.FillMode = canvas.ImageFillContain
	id.answerImage.ScaleMode = canvas.ImageScaleSmooth
	id.answerImage.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
}

// createPlaceholderImage draws an empty sky disc outline.
func (id *ImageDisplay) createPlaceholderImage() image.Image {
	const size = 256
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	ring := color.RGBA{R: 160, G: 160, B: 170, A: 255}
	c := size / 2
	r := c - 8
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := (x-c)*(x-c) + (y-c)*(y-c)
			if d <= r*r && d >= (r-2)*(r-2) {
				img.Set(x, y, ring)
			}
		}
	}
	return img
}

func (id *ImageDisplay) setupLayout() {
	problemContainer := container.NewBorder(
		widget.NewRichTextFromMarkdown("**Problem chart**"),
		nil, nil, nil,
		id.problemImage,
	)

	answerContainer := container.NewBorder(
		widget.NewRichTextFromMarkdown("**Answer chart**"),
		nil, nil, nil,
		id.answerImage,
	)

	id.splitView = container.NewHSplit(problemContainer, answerContainer)
	id.splitView.SetOffset(0.5)

	id.container = container.NewStack(id.splitView)
}

// SetCharts shows both charts. A nil image restores the placeholder.
func (id *ImageDisplay) SetCharts(problem, answer image.Image) {
	id.hasProblem = setImage(id.problemImage, problem, id.placeholder)
	id.hasAnswer = setImage(id.answerImage, answer, id.placeholder)
}

func setImage(target *canvas.Image, img, placeholder image.Image) bool {
	ok := img != nil
	if !ok {
		img = placeholder
	}
	target.Image = img
	target.Refresh()
	return ok
}

func (id *ImageDisplay) HasCharts() bool {
	return id.hasProblem && id.hasAnswer
}

func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}
