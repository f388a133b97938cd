package camera

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"time"
)

// Frame is one captured image. Pixel data is 8 bits per channel;
// 16-bit captures are shifted down by the device layer before they
// reach the rest of the pipeline.
type Frame struct {
	Seq      uint64
	Width    int
	Height   int
	Channels int // 1 = mono, 3 = BGR
	Pix      []byte
	Captured time.Time
}

// Buffer holds the most recent frame. Readers always see a complete
// frame; the capture loop replaces it atomically under the lock.
type Buffer struct {
	mu    sync.RWMutex
	frame Frame
	seq   uint64
}

// NewBuffer creates an empty frame buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Put stores a new frame, assigning it the next sequence number. The
// pixel data is copied so the capture loop can reuse its scratch
// buffer.
func (b *Buffer) Put(f Frame) {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	f.Pix = pix

	b.mu.Lock()
	b.seq++
	f.Seq = b.seq
	b.frame = f
	b.mu.Unlock()
}

// Latest returns the most recent frame. ok is false before the first
// frame arrives.
func (b *Buffer) Latest() (Frame, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frame, b.frame.Seq > 0
}

// Seq returns the sequence number of the latest frame.
func (b *Buffer) Seq() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.seq
}

// previewMaxDim is the largest preview edge before downscaling kicks in.
const previewMaxDim = 512

// EncodeJPEG renders the frame as a JPEG preview. Frames larger than
// 512 pixels on either edge are decimated by two to keep preview
// payloads small.
func (f Frame) EncodeJPEG(quality int) ([]byte, error) {
	return EncodeImageJPEG(f.Image(), quality)
}

// EncodeImageJPEG applies the preview downscale rule to an arbitrary
// image and encodes it, so callers that composite onto a frame first
// get the same payload size behavior.
func EncodeImageJPEG(img image.Image, quality int) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > previewMaxDim || b.Dy() > previewMaxDim {
		img = halve(img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Image converts the frame's pixel data to a stdlib image.
func (f Frame) Image() image.Image {
	if f.Channels == 1 {
		img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
		copy(img.Pix, f.Pix)
		return img
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := (y*f.Width + x) * 3
			// Device frames are BGR.
			img.SetRGBA(x, y, color.RGBA{R: f.Pix[i+2], G: f.Pix[i+1], B: f.Pix[i], A: 255})
		}
	}
	return img
}

// halve decimates an image by two with nearest-neighbor sampling.
func halve(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()/2, b.Dy()/2))
	for y := 0; y < dst.Bounds().Dy(); y++ {
		for x := 0; x < dst.Bounds().Dx(); x++ {
			dst.Set(x, y, src.At(b.Min.X+x*2, b.Min.Y+y*2))
		}
	}
	return dst
}
