package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/adrium/goheif"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	xdraw "golang.org/x/image/draw"
)

// CropRect describes a crop region in source-image pixels.
type CropRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// IsZero reports whether no crop was requested.
func (r CropRect) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ImageProcessor decodes uploaded images, optionally crops and downscales
// them, and re-encodes to WebP.
type ImageProcessor struct {
	Quality  int // WebP quality (0-100)
	MaxWidth int // longest allowed edge after processing; 0 disables scaling
}

// NewImageProcessor creates an image processor. Quality outside (0,100]
// falls back to 85.
func NewImageProcessor(quality int) *ImageProcessor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &ImageProcessor{
		Quality:  quality,
		MaxWidth: 2560,
	}
}

// IsImageFile checks if the file is a supported image type.
func (ip *ImageProcessor) IsImageFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic", ".heif", ".bmp", ".tiff", ".tif":
		return true
	}
	return false
}

// Process decodes the upload, applies the crop if any, downscales oversized
// images and encodes to WebP. Non-image files are passed through unchanged
// (nil bytes, original filename).
func (ip *ImageProcessor) Process(file *multipart.FileHeader, crop CropRect) ([]byte, string, error) {
	if !ip.IsImageFile(file.Filename) {
		return nil, file.Filename, nil
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	// Already WebP and nothing to do: keep the original bytes.
	if strings.ToLower(filepath.Ext(file.Filename)) == ".webp" && crop.IsZero() {
		return nil, file.Filename, nil
	}

	img, err := ip.decodeImage(bytes.NewReader(data), file.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	if !crop.IsZero() {
		img, err = ip.crop(img, crop)
		if err != nil {
			return nil, "", err
		}
	}

	img = ip.downscale(img)

	var buf bytes.Buffer
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(ip.Quality))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create encoder options: %w", err)
	}
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, "", fmt.Errorf("failed to encode to webp: %w", err)
	}

	ext := filepath.Ext(file.Filename)
	newFilename := strings.TrimSuffix(file.Filename, ext) + ".webp"

	return buf.Bytes(), newFilename, nil
}

// crop extracts the requested region, clamped to the image bounds.
func (ip *ImageProcessor) crop(img image.Image, crop CropRect) (image.Image, error) {
	bounds := img.Bounds()
	rect := image.Rect(crop.X, crop.Y, crop.X+crop.Width, crop.Y+crop.Height).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("crop region (%d,%d %dx%d) is outside the image bounds %dx%d",
			crop.X, crop.Y, crop.Width, crop.Height, bounds.Dx(), bounds.Dy())
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.Copy(dst, image.Point{}, img, rect, xdraw.Src, nil)
	return dst, nil
}

// downscale resizes images whose longest edge exceeds MaxWidth, preserving
// aspect ratio.
func (ip *ImageProcessor) downscale(img image.Image) image.Image {
	if ip.MaxWidth <= 0 {
		return img
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := max(w, h)
	if longest <= ip.MaxWidth {
		return img
	}

	scale := float64(ip.MaxWidth) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

func (ip *ImageProcessor) decodeImage(r io.Reader, filename string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".webp":
		return webp.Decode(r, nil)
	case ".heic", ".heif":
		return goheif.Decode(r)
	default:
		img, _, err := image.Decode(r)
		return img, err
	}
}
