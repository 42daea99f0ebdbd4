// Image loading and saving for the node graph's source and sink
package io

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
)

// DefaultOutputName is used when the caller gives no output path.
const DefaultOutputName = "output.png"

// ImageLoader handles image file operations
type ImageLoader struct {
	logger *slog.Logger
}

func NewImageLoader(logger *slog.Logger) *ImageLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage decodes filepath into a buffer the caller owns.
func (il *ImageLoader) LoadImage(filepath string) (*imaging.Buffer, imaging.Metadata, error) {
	il.logger.Debug("Loading image", "filepath", filepath)

	if !il.isSupportedImageFormat(filepath) {
		return nil, imaging.Metadata{}, fmt.Errorf("%w: unsupported image format: %s", imaging.ErrDecodeFailure, filepath)
	}

	buf, meta, err := imaging.FromFile(filepath)
	if err != nil {
		il.logger.Error("Failed to load image", "filepath", filepath, "error", err)
		return nil, imaging.Metadata{}, err
	}

	il.logger.Info("Image loaded successfully",
		"filepath", filepath,
		"width", meta.Width,
		"height", meta.Height,
		"channels", meta.Channels,
		"sample_type", meta.SampleType)

	return buf, meta, nil
}

// SaveImage encodes buf at filepath; the format follows the extension.
func (il *ImageLoader) SaveImage(filepath string, buf *imaging.Buffer) error {
	il.logger.Debug("Saving image", "filepath", filepath)

	if buf == nil {
		return fmt.Errorf("cannot save empty image: %w", imaging.ErrNoInput)
	}

	if !il.isSupportedImageFormat(filepath) {
		return fmt.Errorf("%w: unsupported image format: %s", imaging.ErrWriteFailure, filepath)
	}

	if err := imaging.ToFile(filepath, buf); err != nil {
		il.logger.Error("Failed to save image", "filepath", filepath, "error", err)
		return err
	}

	il.logger.Info("Image saved successfully",
		"filepath", filepath,
		"width", buf.Width(),
		"height", buf.Height(),
		"channels", buf.Channels())

	return nil
}

// OutputPath returns path, or DefaultOutputName when path is blank.
func OutputPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return DefaultOutputName
	}
	return path
}

func (il *ImageLoader) isSupportedImageFormat(filepath string) bool {
	return imaging.IsSupported(filepath)
}

// FileFilter returns the supported extensions for file dialogs.
func (il *ImageLoader) FileFilter() []string {
	return imaging.SupportedExtensions()
}
