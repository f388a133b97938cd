package camera

import "errors"

// ErrNoDevice is returned when no capture backend is available, either
// because no camera is attached or because the binary was built
// without the gocv tag.
var ErrNoDevice = errors.New("camera: no capture device available")

// ErrNotOpen is returned for operations on a closed device.
var ErrNotOpen = errors.New("camera: device not open")

// Device abstracts the capture hardware so the manager can be driven
// by real cameras and by fakes in tests.
type Device interface {
	// Open connects to the device by index.
	Open(id int) error

	// Info reports sensor geometry. Valid after Open.
	Info() (Info, error)

	// Configure programs the capture window and exposure settings.
	// Stops and restarts the internal stream as needed.
	Configure(g Geometry, s Settings) error

	// SetPosition moves the capture window origin without restarting
	// the stream.
	SetPosition(x, y int) error

	// Grab blocks until the next frame is available.
	Grab() (Frame, error)

	// Close releases the device.
	Close() error
}
