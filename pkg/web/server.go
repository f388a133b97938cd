// Package web serves the camera panel: the REST API, the websocket
// feeds and the server-rendered selection overlays.
package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/linusw/asipanel/internal/log"
	"github.com/linusw/asipanel/pkg/camera"
	"github.com/linusw/asipanel/pkg/hub"
	"github.com/linusw/asipanel/pkg/sched"
)

var logc = log.Component("web")

var errNoLayout = errors.New("surface has no layout yet")

const (
	// previewInterval paces the preview feed.
	previewInterval = 100 * time.Millisecond
	// statusInterval paces the status feed.
	statusInterval = time.Second
	// previewQuality is the JPEG quality of preview frames.
	previewQuality = 80
)

// Server hosts the panel API and feeds.
type Server struct {
	app    *fiber.App
	port   string
	device int

	camera    *camera.Manager
	scheduler *sched.Scheduler
	panel     *Panel

	previewHub *hub.Hub
	statusHub  *hub.Hub
	roiHub     *hub.Hub

	stopFeeds chan struct{}
}

// NewServer builds the fiber app and routes. device is the capture
// device index used by the start endpoint; staticDir may be empty to
// disable static file serving.
func NewServer(port string, device int, cam *camera.Manager, scheduler *sched.Scheduler, cameraBase, staticDir string) *Server {
	s := &Server{
		port:       port,
		device:     device,
		camera:     cam,
		scheduler:  scheduler,
		previewHub: hub.New("preview"),
		statusHub:  hub.New("status"),
		roiHub:     hub.New("roi"),
		stopFeeds:  make(chan struct{}),
	}
	s.panel = NewPanel(cameraBase, s.roiHub)
	s.panel.Manager.Subscribe(cam.ApplyROI)

	app := fiber.New(fiber.Config{
		AppName:               "asipanel",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	if staticDir != "" {
		app.Static("/", staticDir)
	}

	cameraGroup := app.Group("/camera")
	cameraGroup.Post("/start", s.handleCameraStart)
	cameraGroup.Post("/stop", s.handleCameraStop)
	cameraGroup.Get("/settings", s.handleGetSettings)
	cameraGroup.Post("/settings", s.handleUpdateSettings)
	cameraGroup.Get("/status", s.handleCameraStatus)
	cameraGroup.Get("/info", s.handleCameraInfo)
	cameraGroup.Get("/image", s.handleCameraImage)
	cameraGroup.Get("/histogram", s.handleHistogram)
	cameraGroup.Post("/start_recording", s.handleStartRecording)
	cameraGroup.Post("/stop_recording", s.handleStopRecording)

	scheduleGroup := app.Group("/schedule")
	scheduleGroup.Post("/", s.handleCreateSchedule)
	scheduleGroup.Post("/create", s.handleCreateSchedule)
	scheduleGroup.Get("/", s.handleListSchedules)
	scheduleGroup.Get("/list", s.handleListSchedules)
	scheduleGroup.Get("/status", s.handleSchedulerStatus)
	scheduleGroup.Get("/:id", s.handleGetSchedule)
	scheduleGroup.Delete("/:id", s.handleCancelSchedule)

	roiGroup := app.Group("/roi")
	roiGroup.Get("/", s.handleGetROI)
	roiGroup.Post("/", s.handleSetROI)
	roiGroup.Post("/reset", s.handleResetROI)
	roiGroup.Get("/overlay/:surface", s.handleOverlay)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/roi", websocket.New(s.handleROIWS))

	s.app = app
	return s
}

// Panel exposes the selection panel, mainly for wiring in main.
func (s *Server) Panel() *Panel {
	return s.panel
}

// Start runs the hubs, the feed pumps and the listener. Blocks until
// shutdown.
func (s *Server) Start() error {
	go s.previewHub.Run()
	go s.statusHub.Run()
	go s.roiHub.Run()
	go s.previewFeed()
	go s.statusFeed()

	logc.Info("panel listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops feeds, hubs and the listener.
func (s *Server) Shutdown() error {
	close(s.stopFeeds)
	s.previewHub.Stop()
	s.statusHub.Stop()
	s.roiHub.Stop()
	return s.app.Shutdown()
}

// previewFeed pushes the latest frame to preview subscribers whenever
// a new one arrived since the last push.
func (s *Server) previewFeed() {
	ticker := time.NewTicker(previewInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-s.stopFeeds:
			return
		case <-ticker.C:
			if s.previewHub.ClientCount() == 0 {
				continue
			}
			frame, ok := s.camera.LatestFrame()
			if !ok || frame.Seq == lastSeq {
				continue
			}
			data, err := s.renderPreviewFrame(frame)
			if err != nil {
				logc.Warn("preview encode failed", "err", err)
				continue
			}
			lastSeq = frame.Seq
			s.previewHub.BroadcastBinary(data)
		}
	}
}

// renderPreviewFrame encodes a frame for the feed. While a create-drag
// is in progress the live drag box is burned into the stream; the
// capture itself already reflects the committed rectangle, so an idle
// frame streams untouched.
func (s *Server) renderPreviewFrame(frame camera.Frame) ([]byte, error) {
	session := s.panel.DragSession()
	if session == nil {
		return frame.EncodeJPEG(previewQuality)
	}
	return burnAndEncode(frame, session, s.panel.preview.style)
}

// statusFeed pushes manager status to status subscribers.
func (s *Server) statusFeed() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopFeeds:
			return
		case <-ticker.C:
			if s.statusHub.ClientCount() == 0 {
				continue
			}
			if err := s.statusHub.BroadcastJSON(s.camera.Status()); err != nil {
				logc.Warn("status broadcast failed", "err", err)
			}
		}
	}
}
