package camera

import (
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/linusw/asipanel/internal/log"
)

var reclog = log.Component("recorder")

// SessionMeta is written next to the frames of each recording session.
type SessionMeta struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
	Frames    int       `json:"frames"`

	Exposure string   `json:"exposure"`
	Gain     int      `json:"gain"`
	Binning  int      `json:"binning"`
	Format   string   `json:"format"`
	Geometry Geometry `json:"geometry"`
	Sensor   string   `json:"sensor"`
}

// Recorder writes captured frames to disk as PNG files, one directory
// per session, with a JSON metadata sidecar. Frame writes are rate
// limited by the settings' MaxRecordingFPS.
type Recorder struct {
	root string

	mu        sync.Mutex
	active    bool
	dir       string
	meta      SessionMeta
	lastWrite time.Time
	minGap    time.Duration
}

// NewRecorder creates a recorder rooted at dir. Sessions go into
// timestamped subdirectories.
func NewRecorder(root string) *Recorder {
	return &Recorder{root: root}
}

// Start begins a recording session. The session directory is created
// immediately; frames follow as the capture loop hands them over.
func (r *Recorder) Start(name string, s Settings, info Info, g Geometry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return "", fmt.Errorf("recording already in progress")
	}

	id := uuid.New().String()
	stamp := time.Now().Format("20060102_150405")
	dir := filepath.Join(r.root, fmt.Sprintf("%s_%s", stamp, id[:8]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	r.active = true
	r.dir = dir
	r.lastWrite = time.Time{}
	r.minGap = 0
	if s.MaxRecordingFPS > 0 {
		r.minGap = time.Duration(float64(time.Second) / s.MaxRecordingFPS)
	}
	r.meta = SessionMeta{
		SessionID: id,
		Name:      name,
		StartedAt: time.Now(),
		Exposure:  FormatExposure(s.Exposure),
		Gain:      s.Gain,
		Binning:   s.Binning,
		Format:    s.Format,
		Geometry:  g,
		Sensor:    info.Name,
	}

	reclog.Info("recording started", "session", id, "dir", dir)
	return id, nil
}

// WriteFrame persists one frame if the session is active and the rate
// limit allows it. Skipped frames are not an error.
func (r *Recorder) WriteFrame(f Frame) error {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil
	}
	if r.minGap > 0 && !r.lastWrite.IsZero() && f.Captured.Sub(r.lastWrite) < r.minGap {
		r.mu.Unlock()
		return nil
	}
	r.lastWrite = f.Captured
	r.meta.Frames++
	n := r.meta.Frames
	dir := r.dir
	r.mu.Unlock()

	name := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", n))
	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, f.Image()); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// Stop ends the session and writes the metadata sidecar. Returns the
// final metadata.
func (r *Recorder) Stop() (SessionMeta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return SessionMeta{}, fmt.Errorf("no recording in progress")
	}

	r.active = false
	r.meta.EndedAt = time.Now()

	data, err := json.MarshalIndent(r.meta, "", "  ")
	if err != nil {
		return r.meta, err
	}
	if err := os.WriteFile(filepath.Join(r.dir, "metadata.json"), data, 0o644); err != nil {
		return r.meta, fmt.Errorf("write metadata: %w", err)
	}

	reclog.Info("recording stopped", "session", r.meta.SessionID, "frames", r.meta.Frames)
	return r.meta, nil
}

// Active reports whether a session is in progress, and its id.
func (r *Recorder) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta.SessionID, r.active
}

// FrameCount returns frames written in the current or last session.
func (r *Recorder) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta.Frames
}
