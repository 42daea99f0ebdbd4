// Source and output preview with quality readout
package gui

import (
	"fmt"
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
	"github.com/SaanidhyaM/node-based-image-processor/internal/quality"
)

var placeholderColor = color.RGBA{240, 240, 240, 255}

// ImageCanvas shows the source image next to the chain output.
type ImageCanvas struct {
	logger    *slog.Logger
	maxDim    int
	evaluator *quality.Evaluator

	split        *container.Split
	sourceImage  *canvas.Image
	previewImage *canvas.Image
	infoLabel    *widget.Label
	qualityLabel *widget.Label
}

func NewImageCanvas(maxDim int, logger *slog.Logger) *ImageCanvas {
	ic := &ImageCanvas{
		logger:    logger,
		maxDim:    maxDim,
		evaluator: quality.NewEvaluator(),
	}
	ic.initializeUI()
	return ic
}

func (ic *ImageCanvas) initializeUI() {
	ic.sourceImage = newPreviewImage()
	ic.previewImage = newPreviewImage()
	ic.infoLabel = widget.NewLabel("No image loaded")
	ic.qualityLabel = widget.NewLabel("")

	sourceView := widget.NewCard("Input", "", container.NewBorder(nil, ic.infoLabel, nil, nil, ic.sourceImage))
	previewView := widget.NewCard("Output", "", container.NewBorder(nil, ic.qualityLabel, nil, nil, ic.previewImage))

	ic.split = container.NewHSplit(sourceView, previewView)
	ic.split.SetOffset(0.5)
}

func newPreviewImage() *canvas.Image {
	img := canvas.NewImageFromImage(placeholder())
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	img.SetMinSize(fyne.NewSize(200, 150))
	return img
}

func (ic *ImageCanvas) GetContainer() fyne.CanvasObject {
	return ic.split
}

// SetSource displays the source image and its metadata.
func (ic *ImageCanvas) SetSource(buf *imaging.Buffer, meta imaging.Metadata) {
	if !ic.show(ic.sourceImage, buf) {
		ic.infoLabel.SetText("No image loaded")
		return
	}
	ic.infoLabel.SetText(fmt.Sprintf("%dx%d, %d channels, %s, %s",
		meta.Width, meta.Height, meta.Channels, meta.SampleType, meta.Format))
}

// SetOutput displays the chain output and compares it against source.
func (ic *ImageCanvas) SetOutput(source, out *imaging.Buffer) {
	if !ic.show(ic.previewImage, out) {
		ic.qualityLabel.SetText("")
		return
	}

	report, err := ic.evaluator.Compare(source, out)
	if err != nil {
		ic.logger.Debug("Quality readout unavailable", "error", err)
		ic.qualityLabel.SetText("")
		return
	}
	ic.qualityLabel.SetText(report.String())
}

// show renders buf into target, falling back to the placeholder.
func (ic *ImageCanvas) show(target *canvas.Image, buf *imaging.Buffer) bool {
	if buf == nil {
		target.Image = placeholder()
		target.Refresh()
		return false
	}

	img, err := previewImage(buf, ic.maxDim)
	if err != nil {
		ic.logger.Error("Failed to convert image for display", "error", err)
		target.Image = placeholder()
		target.Refresh()
		return false
	}
	target.Image = img
	target.Refresh()
	return true
}

// QualityText returns the current readout.
func (ic *ImageCanvas) QualityText() string {
	return ic.qualityLabel.Text
}

// InfoText returns the current source description.
func (ic *ImageCanvas) InfoText() string {
	return ic.infoLabel.Text
}
