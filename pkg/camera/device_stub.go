//go:build !gocv

package camera

import "fmt"

// OpenDevice reports that no capture backend is compiled in. Build
// with -tags gocv to enable OpenCV capture.
func OpenDevice(id int) (Device, error) {
	return nil, fmt.Errorf("open camera %d: %w", id, ErrNoDevice)
}
