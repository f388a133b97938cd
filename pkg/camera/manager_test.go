package camera

import (
	"sync"
	"testing"
	"time"

	"github.com/linusw/asipanel/pkg/roi"
)

// fakeDevice serves synthetic gradient frames sized to the programmed
// geometry and records every call for assertions.
type fakeDevice struct {
	mu           sync.Mutex
	opened       bool
	geom         Geometry
	set          Settings
	configures   int
	positionSets int
	failGrab     bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{}
}

func (d *fakeDevice) Open(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = true
	return nil
}

func (d *fakeDevice) Info() (Info, error) {
	return testSensor, nil
}

func (d *fakeDevice) Configure(g Geometry, s Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return ErrNotOpen
	}
	d.geom = g
	d.set = s
	d.configures++
	return nil
}

func (d *fakeDevice) SetPosition(x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return ErrNotOpen
	}
	d.geom.X, d.geom.Y = x, y
	d.positionSets++
	return nil
}

func (d *fakeDevice) Grab() (Frame, error) {
	d.mu.Lock()
	geom := d.geom
	fail := d.failGrab
	d.mu.Unlock()
	if fail {
		return Frame{}, ErrNotOpen
	}

	pix := make([]byte, geom.Width*geom.Height)
	for i := range pix {
		pix[i] = byte(i % 256)
	}
	time.Sleep(time.Millisecond)
	return Frame{
		Width:    geom.Width,
		Height:   geom.Height,
		Channels: 1,
		Pix:      pix,
		Captured: time.Now(),
	}, nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = false
	return nil
}

func (d *fakeDevice) calls() (configures, positionSets int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.configures, d.positionSets
}

func newTestManager(t *testing.T, dev *fakeDevice) *Manager {
	t.Helper()
	m := NewManager(t.TempDir())
	m.open = func(id int) (Device, error) {
		if err := dev.Open(id); err != nil {
			return nil, err
		}
		return dev, nil
	}
	if err := m.Connect(0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return m
}

func TestManager_ConnectProgramsFullFrame(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	g := m.Geometry()
	if g.Width != 1936 || g.Height != 1096 {
		t.Errorf("initial geometry = %+v, want full sensor", g)
	}
	if conf, _ := dev.calls(); conf != 1 {
		t.Errorf("configure calls = %d, want 1", conf)
	}
}

func TestManager_CaptureProducesFrames(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	if err := m.StartCapture(); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for m.frames.Seq() < 3 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for frames")
		case <-time.After(5 * time.Millisecond):
		}
	}
	m.StopCapture()

	frame, ok := m.LatestFrame()
	if !ok {
		t.Fatal("no frame in buffer after capture")
	}
	if frame.Width != 1936 || frame.Height != 1096 {
		t.Errorf("frame size = %dx%d, want sensor size", frame.Width, frame.Height)
	}

	status := m.Status()
	if !status.Connected || status.Capturing {
		t.Errorf("status after stop = %+v, want connected and idle", status)
	}
}

func TestManager_ROIMoveTakesFastPath(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	s := m.Settings()
	s.SetROI(roi.Rect{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5})
	if err := m.UpdateSettings(s); err != nil {
		t.Fatalf("set sized ROI: %v", err)
	}
	confAfterResize, posAfterResize := dev.calls()

	// Pure move: same size, new origin.
	s.ROIX, s.ROIY = 0.3, 0.3
	if err := m.UpdateSettings(s); err != nil {
		t.Fatalf("move ROI: %v", err)
	}

	conf, pos := dev.calls()
	if conf != confAfterResize {
		t.Errorf("move reconfigured the device (%d -> %d configures)", confAfterResize, conf)
	}
	if pos != posAfterResize+1 {
		t.Errorf("position sets = %d, want %d", pos, posAfterResize+1)
	}
}

func TestManager_ResizeReconfigures(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	confBefore, _ := dev.calls()
	s := m.Settings()
	s.SetROI(roi.Rect{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5})
	if err := m.UpdateSettings(s); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	conf, _ := dev.calls()
	if conf != confBefore+1 {
		t.Errorf("configure calls = %d, want %d", conf, confBefore+1)
	}
	if g := m.Geometry(); g.Width >= 1936 {
		t.Errorf("geometry not narrowed: %+v", g)
	}
}

func TestManager_RejectsInvalidSettings(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	s := m.Settings()
	s.Exposure = 0
	if err := m.UpdateSettings(s); err == nil {
		t.Fatal("invalid settings accepted")
	}
	if m.Settings().Exposure == 0 {
		t.Error("rejected settings were stored")
	}
}

func TestManager_ApplyROICommit(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	m.ApplyROI(roi.Rect{X: 0.2, Y: 0.2, Width: 0.6, Height: 0.6})

	got := m.Settings().ROI()
	want := roi.Rect{X: 0.2, Y: 0.2, Width: 0.6, Height: 0.6}
	if got != want {
		t.Errorf("settings ROI = %+v, want %+v", got, want)
	}
}

func TestManager_IdenticalSettingsEchoIsNoop(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	m.ApplyROI(roi.Rect{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5})
	m.ApplyROI(roi.Rect{X: 0.3, Y: 0.3, Width: 0.5, Height: 0.5})
	confBefore, posBefore := dev.calls()
	if posBefore != 1 {
		t.Fatalf("position sets = %d, want 1 (move fast path)", posBefore)
	}

	// A commit already applied directly comes back from the settings
	// endpoint as an identical POST; the echo must not touch the device.
	if err := m.UpdateSettings(m.Settings()); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	conf, pos := dev.calls()
	if conf != confBefore {
		t.Errorf("identical settings reconfigured the device (%d -> %d configures)", confBefore, conf)
	}
	if pos != posBefore {
		t.Errorf("identical settings moved the window (%d -> %d position sets)", posBefore, pos)
	}
}

func TestManager_RecordingLifecycle(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	if _, err := m.StartRecording("test"); err == nil {
		t.Fatal("recording started without capture running")
	}

	if err := m.StartCapture(); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	id, err := m.StartRecording("test")
	if err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	deadline := time.After(2 * time.Second)
	for m.recorder.FrameCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for recorded frames")
		case <-time.After(5 * time.Millisecond):
		}
	}

	meta, err := m.StopRecording()
	if err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if meta.SessionID != id {
		t.Errorf("meta session = %s, want %s", meta.SessionID, id)
	}
	if meta.Frames < 2 {
		t.Errorf("recorded %d frames, want at least 2", meta.Frames)
	}
	m.StopCapture()
}

func TestManager_SettingsStoredWhileDisconnected(t *testing.T) {
	m := NewManager(t.TempDir())

	s := DefaultSettings()
	s.Gain = 250
	if err := m.UpdateSettings(s); err != nil {
		t.Fatalf("UpdateSettings without device: %v", err)
	}
	if m.Settings().Gain != 250 {
		t.Error("settings not retained while disconnected")
	}

	if err := m.StartCapture(); err == nil {
		t.Error("capture started without a device")
	}
}

func TestManager_HistogramFromLatestFrame(t *testing.T) {
	dev := newFakeDevice()
	m := newTestManager(t, dev)
	defer m.Disconnect()

	if _, err := m.Histogram(); err == nil {
		t.Fatal("histogram served before any frame")
	}

	if err := m.StartCapture(); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	deadline := time.After(2 * time.Second)
	for m.frames.Seq() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a frame")
		case <-time.After(5 * time.Millisecond):
		}
	}
	m.StopCapture()

	h, err := m.Histogram()
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	var total int
	for _, c := range h.Luma {
		total += c
	}
	if total != 1936*1096 {
		t.Errorf("histogram counts %d pixels, want %d", total, 1936*1096)
	}
}
