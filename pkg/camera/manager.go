package camera

import (
	"fmt"
	"sync"
	"time"

	"github.com/linusw/asipanel/internal/log"
	"github.com/linusw/asipanel/pkg/roi"
)

var logc = log.Component("camera")

// reconnectInterval is how often the monitor retries a lost device.
const reconnectInterval = 5 * time.Second

// Status is the live state served on the status endpoint and pushed
// over the status feed.
type Status struct {
	Connected bool    `json:"connected"`
	Capturing bool    `json:"capturing"`
	FPS       float64 `json:"fps"`
	FrameSeq  uint64  `json:"frame_seq"`

	Recording        bool   `json:"recording"`
	RecordingSession string `json:"recording_session,omitempty"`
	RecordedFrames   int    `json:"recorded_frames"`

	Settings Settings `json:"settings"`
}

// Manager owns the capture device and serializes all access to it:
// settings updates, the capture loop, recording and reconnects.
type Manager struct {
	open func(id int) (Device, error)

	mu        sync.RWMutex
	dev       Device
	deviceID  int
	info      Info
	settings  Settings
	geom      Geometry
	capturing bool

	frames   *Buffer
	fps      *fpsTracker
	recorder *Recorder

	stopCapture chan struct{}
	stopMonitor chan struct{}
	wg          sync.WaitGroup
}

// NewManager creates a manager that records under capturesDir. The
// device is not opened until Connect.
func NewManager(capturesDir string) *Manager {
	return &Manager{
		open:     OpenDevice,
		deviceID: -1,
		settings: DefaultSettings(),
		frames:   NewBuffer(),
		recorder: NewRecorder(capturesDir),
		fps:      newFPSTracker(),
	}
}

// Connect opens the capture device and programs the current settings.
func (m *Manager) Connect(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev != nil {
		return fmt.Errorf("camera already connected")
	}

	dev, err := m.open(id)
	if err != nil {
		return err
	}
	info, err := dev.Info()
	if err != nil {
		dev.Close()
		return fmt.Errorf("query sensor info: %w", err)
	}

	geom := FrameGeometry(info, m.settings)
	if err := dev.Configure(geom, m.settings); err != nil {
		dev.Close()
		return fmt.Errorf("configure device: %w", err)
	}

	m.dev = dev
	m.deviceID = id
	m.info = info
	m.geom = geom
	logc.Info("camera connected", "id", id, "sensor", info.Name,
		"width", info.SensorWidth, "height", info.SensorHeight)
	return nil
}

// Disconnect stops capture and releases the device.
func (m *Manager) Disconnect() error {
	m.StopCapture()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return nil
	}
	err := m.dev.Close()
	m.dev = nil
	logc.Info("camera disconnected")
	return err
}

// StartCapture launches the capture loop.
func (m *Manager) StartCapture() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return ErrNotOpen
	}
	if m.capturing {
		return nil
	}

	m.capturing = true
	m.stopCapture = make(chan struct{})
	m.fps.Reset()
	m.wg.Add(1)
	go m.captureLoop(m.dev, m.stopCapture)
	logc.Info("capture started", "geometry", m.geom)
	return nil
}

// StopCapture halts the capture loop. Safe to call when idle.
func (m *Manager) StopCapture() {
	m.mu.Lock()
	if !m.capturing {
		m.mu.Unlock()
		return
	}
	m.capturing = false
	close(m.stopCapture)
	m.mu.Unlock()

	m.wg.Wait()
	logc.Info("capture stopped")
}

// captureLoop grabs frames until stopped, feeding the frame buffer,
// the FPS tracker and the recorder.
func (m *Manager) captureLoop(dev Device, stop chan struct{}) {
	defer m.wg.Done()

	for {
		select {
		case <-stop:
			return
		default:
		}

		frame, err := dev.Grab()
		if err != nil {
			select {
			case <-stop:
				return
			default:
			}
			logc.Warn("frame grab failed", "err", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if frame.Captured.IsZero() {
			frame.Captured = time.Now()
		}

		m.frames.Put(frame)
		m.fps.Tick(frame.Captured)

		if err := m.recorder.WriteFrame(frame); err != nil {
			logc.Error("frame write failed", "err", err)
		}
	}
}

// UpdateSettings validates and applies new settings. Settings equal to
// the current ones are a no-op. A pure ROI position change takes the
// fast path and moves the capture window without touching the stream;
// anything else reprograms the device and, when a recording is active
// and the image stream changed, rolls the recording over into a fresh
// session.
func (m *Manager) UpdateSettings(next Settings) error {
	if errs := next.Validate(); errs != nil {
		return fmt.Errorf("invalid settings: %v", errs)
	}

	m.mu.Lock()
	dev := m.dev
	prev := m.settings
	info := m.info

	// The settings API round-trips whole objects, so a commit that was
	// already applied directly comes back as an identical POST.
	if next == prev {
		m.mu.Unlock()
		return nil
	}

	if dev == nil {
		// No device: settings are stored and applied on connect.
		m.settings = next
		m.mu.Unlock()
		return nil
	}

	if prev.OnlyROIPositionChanged(next) {
		x, y := PositionFor(info, next, next.ROI())
		if err := dev.SetPosition(x, y); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("move capture window: %w", err)
		}
		m.geom.X, m.geom.Y = x, y
		m.settings = next
		m.mu.Unlock()
		logc.Debug("capture window moved", "x", x, "y", y)
		return nil
	}

	geom := FrameGeometry(info, next)
	if err := dev.Configure(geom, next); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("configure device: %w", err)
	}
	m.geom = geom
	m.settings = next
	m.fps.Reset()
	m.mu.Unlock()

	if _, active := m.recorder.Active(); active && prev.NeedsRecordingRestart(next) {
		if meta, err := m.recorder.Stop(); err == nil {
			if _, err := m.recorder.Start(meta.Name, next, info, geom); err != nil {
				logc.Error("recording rollover failed", "err", err)
			}
		}
	}

	logc.Info("settings applied", "geometry", geom, "exposure", FormatExposure(next.Exposure))
	return nil
}

// ApplyROI merges a committed rectangle into the current settings.
// Satisfies the ROI manager's subscriber signature.
func (m *Manager) ApplyROI(r roi.Rect) {
	m.mu.RLock()
	next := m.settings
	m.mu.RUnlock()
	next.SetROI(r)
	if err := m.UpdateSettings(next); err != nil {
		logc.Warn("roi apply failed", "err", err)
	}
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Info returns the sensor description.
func (m *Manager) Info() (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dev == nil {
		return Info{}, ErrNotOpen
	}
	return m.info, nil
}

// Geometry returns the programmed capture window.
func (m *Manager) Geometry() Geometry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.geom
}

// Status snapshots the full manager state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	connected := m.dev != nil
	capturing := m.capturing
	settings := m.settings
	m.mu.RUnlock()

	session, recording := m.recorder.Active()
	return Status{
		Connected:        connected,
		Capturing:        capturing,
		FPS:              m.fps.Rate(time.Now()),
		FrameSeq:         m.frames.Seq(),
		Recording:        recording,
		RecordingSession: session,
		RecordedFrames:   m.recorder.FrameCount(),
		Settings:         settings,
	}
}

// LatestFrame returns the most recent captured frame.
func (m *Manager) LatestFrame() (Frame, bool) {
	return m.frames.Latest()
}

// PreviewJPEG encodes the latest frame for the preview feed.
func (m *Manager) PreviewJPEG(quality int) ([]byte, error) {
	frame, ok := m.frames.Latest()
	if !ok {
		return nil, fmt.Errorf("no frame captured yet")
	}
	return frame.EncodeJPEG(quality)
}

// Histogram computes the intensity distribution of the latest frame.
func (m *Manager) Histogram() (Histogram, error) {
	frame, ok := m.frames.Latest()
	if !ok {
		return Histogram{}, fmt.Errorf("no frame captured yet")
	}
	m.mu.RLock()
	format := m.settings.Format
	m.mu.RUnlock()
	return ComputeHistogram(frame, format), nil
}

// StartRecording begins a recording session with the current settings.
func (m *Manager) StartRecording(name string) (string, error) {
	m.mu.RLock()
	settings, info, geom, capturing := m.settings, m.info, m.geom, m.capturing
	m.mu.RUnlock()
	if !capturing {
		return "", fmt.Errorf("cannot record: capture not running")
	}
	return m.recorder.Start(name, settings, info, geom)
}

// StopRecording ends the active session.
func (m *Manager) StopRecording() (SessionMeta, error) {
	return m.recorder.Stop()
}

// StartMonitor launches a goroutine that reconnects the device when it
// drops. Returns immediately.
func (m *Manager) StartMonitor(id int) {
	m.mu.Lock()
	if m.stopMonitor != nil {
		m.mu.Unlock()
		return
	}
	m.stopMonitor = make(chan struct{})
	stop := m.stopMonitor
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(reconnectInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.mu.RLock()
				connected := m.dev != nil
				m.mu.RUnlock()
				if connected {
					continue
				}
				if err := m.Connect(id); err != nil {
					logc.Debug("reconnect attempt failed", "err", err)
					continue
				}
				if err := m.StartCapture(); err != nil {
					logc.Warn("capture restart after reconnect failed", "err", err)
				}
			}
		}
	}()
}

// StopMonitor halts the reconnect goroutine.
func (m *Manager) StopMonitor() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopMonitor != nil {
		close(m.stopMonitor)
		m.stopMonitor = nil
	}
}
