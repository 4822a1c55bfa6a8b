package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"slices"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImagePixels caps the decoded size of an upload at 40 megapixels.
const DefaultMaxImagePixels = 40_000_000

var (
	errEmptyImage = errors.New("image has no pixels")
	// ErrImageTooLarge is returned before decoding when the header declares
	// more pixels than the cap.
	ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")
)

// BinarizeImage decodes raw and returns a strict black/white bitmap suited for
// OCR. If any step after decoding fails, the plain grayscale image is returned.
func BinarizeImage(raw []byte) (*image.Gray, error) {
	return BinarizeImageLimit(raw, DefaultMaxImagePixels)
}

// BinarizeImageLimit is BinarizeImage with an explicit pixel cap. maxPixels <= 0
// selects DefaultMaxImagePixels.
func BinarizeImageLimit(raw []byte, maxPixels int) (*image.Gray, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("image payload is empty")
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errEmptyImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := toGray(img)
	binary, err := binarize(gray)
	if err != nil {
		return gray, nil
	}
	return binary, nil
}

// EncodePNG serializes a bitmap for the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func binarize(gray *image.Gray) (*image.Gray, error) {
	if gray.Bounds().Empty() {
		return nil, errEmptyImage
	}
	smoothed := medianFilter3x3(gray)
	threshold := otsuThreshold(smoothed)
	return dilate(applyThreshold(smoothed, threshold), 0), nil
}

// toGray converts with ITU-R 601 luma weights and rebases to a zero origin.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, g)
		}
	}
	return out
}

// medianFilter3x3 replicates edge pixels for the border neighborhoods.
func medianFilter3x3(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	var window [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx := clamp(x+dx, 0, w-1)
					sy := clamp(y+dy, 0, h-1)
					window[i] = src.Pix[sy*src.Stride+sx]
					i++
				}
			}
			sorted := window
			slices.Sort(sorted[:])
			out.Pix[y*out.Stride+x] = sorted[4]
		}
	}
	return out
}

// otsuThreshold returns the level that maximizes between-class variance.
// Pixels above it are foreground.
func otsuThreshold(src *image.Gray) uint8 {
	var histogram [256]int
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for _, v := range row {
			histogram[v]++
		}
	}

	total := float64(w * h)
	var sum float64
	for level, count := range histogram {
		sum += float64(level * count)
	}

	var (
		sumBackground    float64
		weightBackground float64
		bestVariance     float64
		best             uint8
	)
	for level := 0; level < 256; level++ {
		weightBackground += float64(histogram[level])
		if weightBackground == 0 {
			continue
		}
		weightForeground := total - weightBackground
		if weightForeground == 0 {
			break
		}
		sumBackground += float64(level * histogram[level])
		meanBackground := sumBackground / weightBackground
		meanForeground := (sum - sumBackground) / weightForeground
		diff := meanBackground - meanForeground
		variance := weightBackground * weightForeground * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			best = uint8(level)
		}
	}
	return best
}

func applyThreshold(src *image.Gray, threshold uint8) *image.Gray {
	out := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		if v > threshold {
			out.Pix[i] = 255
		}
	}
	return out
}

// dilate grows white regions with a square structuring element of side
// 2*radius+1. Radius 0 is the 1x1 element.
func dilate(src *image.Gray, radius int) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var peak uint8
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 || sy < 0 || sx >= w || sy >= h {
						continue
					}
					if v := src.Pix[sy*src.Stride+sx]; v > peak {
						peak = v
					}
				}
			}
			out.Pix[y*out.Stride+x] = peak
		}
	}
	return out
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
