package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/linusw/asipanel/pkg/roi"
	"github.com/linusw/asipanel/pkg/sched"
)

func errJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// handleCameraStart connects the configured device and starts capture.
func (s *Server) handleCameraStart(c *fiber.Ctx) error {
	if err := s.camera.Connect(s.device); err != nil {
		// Already connected is fine; just (re)start capture.
		if _, infoErr := s.camera.Info(); infoErr != nil {
			return errJSON(c, fiber.StatusServiceUnavailable, err)
		}
	}
	if err := s.camera.StartCapture(); err != nil {
		return errJSON(c, fiber.StatusServiceUnavailable, err)
	}
	return c.JSON(s.camera.Status())
}

// handleCameraStop stops capture but keeps the device connected.
func (s *Server) handleCameraStop(c *fiber.Ctx) error {
	s.camera.StopCapture()
	return c.JSON(s.camera.Status())
}

func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	return c.JSON(s.camera.Settings())
}

// handleUpdateSettings replaces the full settings object.
func (s *Server) handleUpdateSettings(c *fiber.Ctx) error {
	next := s.camera.Settings()
	if err := c.BodyParser(&next); err != nil {
		return errJSON(c, fiber.StatusBadRequest, err)
	}
	if err := s.camera.UpdateSettings(next); err != nil {
		return errJSON(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(s.camera.Settings())
}

func (s *Server) handleCameraStatus(c *fiber.Ctx) error {
	return c.JSON(s.camera.Status())
}

func (s *Server) handleCameraInfo(c *fiber.Ctx) error {
	info, err := s.camera.Info()
	if err != nil {
		return errJSON(c, fiber.StatusServiceUnavailable, err)
	}
	return c.JSON(info)
}

// handleCameraImage serves the latest frame as a JPEG snapshot.
func (s *Server) handleCameraImage(c *fiber.Ctx) error {
	data, err := s.camera.PreviewJPEG(previewQuality)
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, err)
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(data)
}

func (s *Server) handleHistogram(c *fiber.Ctx) error {
	h, err := s.camera.Histogram()
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, err)
	}
	return c.JSON(h)
}

type startRecordingRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleStartRecording(c *fiber.Ctx) error {
	var req startRecordingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errJSON(c, fiber.StatusBadRequest, err)
		}
	}
	id, err := s.camera.StartRecording(req.Name)
	if err != nil {
		return errJSON(c, fiber.StatusConflict, err)
	}
	return c.JSON(fiber.Map{"session_id": id})
}

func (s *Server) handleStopRecording(c *fiber.Ctx) error {
	meta, err := s.camera.StopRecording()
	if err != nil {
		return errJSON(c, fiber.StatusConflict, err)
	}
	return c.JSON(meta)
}

func (s *Server) handleCreateSchedule(c *fiber.Ctx) error {
	var req sched.Schedule
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, err)
	}
	created, err := s.scheduler.Create(req)
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *Server) handleListSchedules(c *fiber.Ctx) error {
	list, err := s.scheduler.List()
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, err)
	}
	if list == nil {
		list = []sched.Schedule{}
	}
	return c.JSON(list)
}

// handleSchedulerStatus summarizes the scheduler: the running window
// and per-status counts.
func (s *Server) handleSchedulerStatus(c *fiber.Ctx) error {
	list, err := s.scheduler.List()
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, err)
	}
	counts := map[string]int{}
	for _, schedule := range list {
		counts[schedule.Status]++
	}
	return c.JSON(fiber.Map{
		"active_id": s.scheduler.ActiveID(),
		"counts":    counts,
	})
}

func (s *Server) handleGetSchedule(c *fiber.Ctx) error {
	schedule, err := s.scheduler.Get(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, err)
	}
	return c.JSON(schedule)
}

func (s *Server) handleCancelSchedule(c *fiber.Ctx) error {
	if err := s.scheduler.Cancel(c.Params("id")); err != nil {
		return errJSON(c, fiber.StatusConflict, err)
	}
	return c.JSON(fiber.Map{"cancelled": c.Params("id")})
}

// handleGetROI returns the committed rectangle with presentation state.
func (s *Server) handleGetROI(c *fiber.Ctx) error {
	return c.JSON(RectState{
		Type:      "roi",
		Rect:      s.panel.Manager.Rect(),
		Mode:      s.panel.mode(),
		PixelText: s.panel.Notifier.PixelText(),
	})
}

// handleSetROI commits a rectangle directly, bypassing the drag
// machines. Invalid rectangles are refused.
func (s *Server) handleSetROI(c *fiber.Ctx) error {
	var r roi.Rect
	if err := c.BodyParser(&r); err != nil {
		return errJSON(c, fiber.StatusBadRequest, err)
	}
	if !r.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "rectangle must be normalized and inside the frame",
		})
	}
	s.panel.Manager.Commit(r)
	return c.JSON(s.panel.Manager.Rect())
}

func (s *Server) handleResetROI(c *fiber.Ctx) error {
	s.panel.Manager.Reset()
	return c.JSON(s.panel.Manager.Rect())
}

// handleOverlay serves the current overlay rendering of a surface.
func (s *Server) handleOverlay(c *fiber.Ctx) error {
	surface := s.panel.Surface(c.Params("surface"))
	if surface == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown surface"})
	}
	data, err := surface.OverlayPNG()
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}
