package camera

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func grayFrame(w, h int, at time.Time) Frame {
	return Frame{
		Width:    w,
		Height:   h,
		Channels: 1,
		Pix:      make([]byte, w*h),
		Captured: at,
	}
}

func TestRecorder_SessionWritesFramesAndMetadata(t *testing.T) {
	root := t.TempDir()
	r := NewRecorder(root)

	s := DefaultSettings()
	s.MaxRecordingFPS = 0 // unlimited
	id, err := r.Start("m31", s, testSensor, FrameGeometry(testSensor, s))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	base := time.Now()
	for i := 0; i < 3; i++ {
		if err := r.WriteFrame(grayFrame(64, 32, base.Add(time.Duration(i)*time.Millisecond))); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}

	meta, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if meta.SessionID != id || meta.Frames != 3 || meta.Name != "m31" {
		t.Errorf("meta = %+v, want session %s with 3 frames", meta, id)
	}

	dirs, err := os.ReadDir(root)
	if err != nil || len(dirs) != 1 {
		t.Fatalf("session dirs = %d (%v), want 1", len(dirs), err)
	}
	sessionDir := filepath.Join(root, dirs[0].Name())

	entries, err := os.ReadDir(sessionDir)
	if err != nil {
		t.Fatal(err)
	}
	var pngs, metas int
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".png":
			pngs++
		case ".json":
			metas++
		}
	}
	if pngs != 3 || metas != 1 {
		t.Errorf("session dir holds %d PNGs and %d metadata files, want 3 and 1", pngs, metas)
	}

	data, err := os.ReadFile(filepath.Join(sessionDir, "metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded SessionMeta
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if decoded.Exposure != "10.0ms" {
		t.Errorf("metadata exposure = %q, want %q", decoded.Exposure, "10.0ms")
	}
}

func TestRecorder_RateLimitSkipsFrames(t *testing.T) {
	r := NewRecorder(t.TempDir())

	s := DefaultSettings()
	s.MaxRecordingFPS = 10 // one frame per 100ms
	if _, err := r.Start("", s, testSensor, FrameGeometry(testSensor, s)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Ten frames 10ms apart: only the first and the one at +100ms pass.
	base := time.Now()
	for i := 0; i <= 10; i++ {
		if err := r.WriteFrame(grayFrame(64, 32, base.Add(time.Duration(i*10)*time.Millisecond))); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}

	meta, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if meta.Frames != 2 {
		t.Errorf("recorded %d frames, want 2 under the 10fps cap", meta.Frames)
	}
}

func TestRecorder_RefusesConcurrentSessions(t *testing.T) {
	r := NewRecorder(t.TempDir())
	s := DefaultSettings()

	if _, err := r.Start("", s, testSensor, FrameGeometry(testSensor, s)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := r.Start("", s, testSensor, FrameGeometry(testSensor, s)); err == nil {
		t.Fatal("second session started while the first was active")
	}
	if _, err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := r.Stop(); err == nil {
		t.Fatal("Stop succeeded with no active session")
	}
}

func TestRecorder_IdleWriteIsNoop(t *testing.T) {
	r := NewRecorder(t.TempDir())
	if err := r.WriteFrame(grayFrame(64, 32, time.Now())); err != nil {
		t.Fatalf("idle WriteFrame: %v", err)
	}
	if n := r.FrameCount(); n != 0 {
		t.Errorf("idle recorder counted %d frames", n)
	}
}
