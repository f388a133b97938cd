// Package sched stores capture schedules and runs them: a schedule
// names a time window during which the camera records with a given
// settings snapshot. Schedules survive restarts in a SQLite database.
package sched

import (
	"fmt"
	"time"

	"github.com/linusw/asipanel/pkg/camera"
)

// Schedule statuses.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// startTolerance is how late a pending schedule may start. Beyond it
// the window is considered missed and the schedule fails.
const startTolerance = time.Minute

// Schedule is one planned capture session.
type Schedule struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Settings    camera.Settings `json:"settings"`
	Status      string          `json:"status"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks the schedule request against now.
func (s *Schedule) Validate(now time.Time) error {
	if s.Name == "" {
		return fmt.Errorf("schedule name is required")
	}
	if !s.StartTime.After(now) {
		return fmt.Errorf("start time must be in the future")
	}
	if !s.EndTime.After(s.StartTime) {
		return fmt.Errorf("end time must be after start time")
	}
	if errs := s.Settings.Validate(); errs != nil {
		return fmt.Errorf("invalid settings: %v", errs)
	}
	return nil
}

// Overlaps reports whether two schedule windows intersect.
func (s *Schedule) Overlaps(other Schedule) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}

// Due reports whether a pending schedule should start now.
func (s *Schedule) Due(now time.Time) bool {
	return s.Status == StatusPending && !now.Before(s.StartTime) && now.Sub(s.StartTime) <= startTolerance
}

// Missed reports whether a pending schedule's start window has passed
// beyond recovery.
func (s *Schedule) Missed(now time.Time) bool {
	return s.Status == StatusPending && now.Sub(s.StartTime) > startTolerance
}

// Expired reports whether an active schedule's window has ended.
func (s *Schedule) Expired(now time.Time) bool {
	return s.Status == StatusActive && !now.Before(s.EndTime)
}
