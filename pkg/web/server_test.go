package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/linusw/asipanel/pkg/camera"
	"github.com/linusw/asipanel/pkg/roi"
	"github.com/linusw/asipanel/pkg/sched"
)

type recordingRunner struct{}

func (recordingRunner) StartWindow(s sched.Schedule) (string, error) { return "s", nil }
func (recordingRunner) StopWindow(s sched.Schedule) error            { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWithDevice(t, 0)
}

func newTestServerWithDevice(t *testing.T, device int) *Server {
	t.Helper()
	store, err := sched.OpenStore(filepath.Join(t.TempDir(), "schedules.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cam := camera.NewManager(t.TempDir())
	scheduler := sched.New(store, recordingRunner{})
	return NewServer("0", device, cam, scheduler, "http://127.0.0.1:1", "")
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp, data
}

func TestServer_SettingsRoundTrip(t *testing.T) {
	s := newTestServer(t)

	resp, body := doJSON(t, s, http.MethodGet, "/camera/settings", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET settings = %d: %s", resp.StatusCode, body)
	}
	var settings camera.Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		t.Fatal(err)
	}
	if settings.Exposure != 10000 {
		t.Errorf("default exposure = %d, want 10000", settings.Exposure)
	}

	settings.Gain = 300
	resp, body = doJSON(t, s, http.MethodPost, "/camera/settings", settings)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST settings = %d: %s", resp.StatusCode, body)
	}
	if s.camera.Settings().Gain != 300 {
		t.Error("settings update not applied")
	}
}

func TestServer_SettingsValidationError(t *testing.T) {
	s := newTestServer(t)

	bad := camera.DefaultSettings()
	bad.Binning = 7
	resp, body := doJSON(t, s, http.MethodPost, "/camera/settings", bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid settings returned %d: %s", resp.StatusCode, body)
	}
	if s.camera.Settings().Binning == 7 {
		t.Error("invalid settings were stored")
	}
}

func TestServer_DisconnectedCameraEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, _ := doJSON(t, s, http.MethodGet, "/camera/info", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("info without device = %d, want 503", resp.StatusCode)
	}

	resp, _ = doJSON(t, s, http.MethodGet, "/camera/image", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("image without frames = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, s, http.MethodGet, "/camera/histogram", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("histogram without frames = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, s, http.MethodPost, "/camera/start_recording", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("recording without capture = %d, want 409", resp.StatusCode)
	}
}

func TestServer_ROIEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, body := doJSON(t, s, http.MethodGet, "/roi/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET roi = %d", resp.StatusCode)
	}
	var state RectState
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatal(err)
	}
	if !state.Rect.IsFullFrame() {
		t.Errorf("initial rect = %+v, want full frame", state.Rect)
	}
	if state.PixelText != "N/A" {
		t.Errorf("pixel text before geometry = %q, want N/A", state.PixelText)
	}

	want := roi.Rect{X: 0.1, Y: 0.2, Width: 0.5, Height: 0.4}
	resp, _ = doJSON(t, s, http.MethodPost, "/roi/", want)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST roi = %d", resp.StatusCode)
	}
	if got := s.panel.Manager.Rect(); got != want {
		t.Errorf("committed rect = %+v, want %+v", got, want)
	}

	// The commit propagates into the camera settings.
	if got := s.camera.Settings().ROI(); got != want {
		t.Errorf("camera settings ROI = %+v, want %+v", got, want)
	}

	resp, _ = doJSON(t, s, http.MethodPost, "/roi/", roi.Rect{X: 0.8, Y: 0, Width: 0.5, Height: 0.5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("overflowing rect accepted: %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, s, http.MethodPost, "/roi/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST roi/reset = %d", resp.StatusCode)
	}
	if !s.panel.Manager.Rect().IsFullFrame() {
		t.Error("reset did not restore full frame")
	}
}

func TestServer_OverlayEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp, _ := doJSON(t, s, http.MethodGet, "/roi/overlay/preview", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("overlay before layout = %d, want 404", resp.StatusCode)
	}

	s.panel.HandlePointer(layoutMsg(SurfacePreview, 100, 100))
	resp, body := doJSON(t, s, http.MethodGet, "/roi/overlay/preview", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("overlay after layout = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if len(body) == 0 {
		t.Error("empty overlay body")
	}

	resp, _ = doJSON(t, s, http.MethodGet, "/roi/overlay/bogus", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown surface = %d, want 404", resp.StatusCode)
	}
}

func TestServer_ScheduleEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, body := doJSON(t, s, http.MethodGet, "/schedule/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET schedules = %d", resp.StatusCode)
	}
	if string(body) != "[]" {
		t.Errorf("empty list serialized as %s, want []", body)
	}

	req := sched.Schedule{
		Name:      "andromeda",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Settings:  camera.DefaultSettings(),
	}
	resp, body = doJSON(t, s, http.MethodPost, "/schedule/", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST schedule = %d: %s", resp.StatusCode, body)
	}
	var created sched.Schedule
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.Status != sched.StatusPending {
		t.Errorf("created = %+v", created)
	}

	resp, body = doJSON(t, s, http.MethodGet, fmt.Sprintf("/schedule/%s", created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET schedule = %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/schedule/%s", created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE schedule = %d", resp.StatusCode)
	}
	got, err := s.scheduler.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != sched.StatusCancelled {
		t.Errorf("status after cancel = %s", got.Status)
	}

	resp, _ = doJSON(t, s, http.MethodGet, "/schedule/unknown-id", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown schedule = %d, want 404", resp.StatusCode)
	}

	// Past start time is refused.
	req.StartTime = time.Now().Add(-time.Hour)
	req.EndTime = time.Now().Add(time.Hour)
	resp, _ = doJSON(t, s, http.MethodPost, "/schedule/", req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("past schedule = %d, want 400", resp.StatusCode)
	}
}
