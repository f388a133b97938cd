package camera

// Histogram is the per-channel intensity distribution of one frame.
// Mono frames fill only the luma channel; color frames fill R, G and B.
type Histogram struct {
	Luma []int `json:"luma,omitempty"`
	R    []int `json:"r,omitempty"`
	G    []int `json:"g,omitempty"`
	B    []int `json:"b,omitempty"`

	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// ComputeHistogram bins the frame's pixel values into 256 buckets per
// channel. Sixteen-bit captures already arrive shifted down to 8 bits,
// so every format bins the same way.
func ComputeHistogram(f Frame, format string) Histogram {
	h := Histogram{Width: f.Width, Height: f.Height, Format: format}

	if f.Channels == 1 {
		h.Luma = make([]int, 256)
		for _, v := range f.Pix {
			h.Luma[v]++
		}
		return h
	}

	h.R = make([]int, 256)
	h.G = make([]int, 256)
	h.B = make([]int, 256)
	for i := 0; i+2 < len(f.Pix); i += 3 {
		// BGR byte order.
		h.B[f.Pix[i]]++
		h.G[f.Pix[i+1]]++
		h.R[f.Pix[i+2]]++
	}
	return h
}
