package domain

import (
	"fmt"
	"strings"
	"time"
)

// ContentState is the review state of a course or lecture submission.
type ContentState string

// Review states. PENDING is the only state that may be left; APPROVED and REJECTED
// are terminal for a submission.
const (
	StatePending  ContentState = "PENDING"
	StateApproved ContentState = "APPROVED"
	StateRejected ContentState = "REJECTED"
)

// Valid reports whether s is a known state.
func (s ContentState) Valid() bool {
	switch s {
	case StatePending, StateApproved, StateRejected:
		return true
	default:
		return false
	}
}

// transition moves from the current state to next, enforcing PENDING -> {APPROVED, REJECTED}.
func transition(current, next ContentState) error {
	if current != StatePending || (next != StateApproved && next != StateRejected) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, current, next)
	}
	return nil
}

// Course is a teacher-owned offering that goes through admin review.
type Course struct {
	ID           int64        `json:"id"`
	TeacherID    int64        `json:"teacher_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Price        int64        `json:"price"` // minor currency units
	Image        string       `json:"image,omitempty"`
	State        ContentState `json:"state"`
	RejectReason string       `json:"reject_reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewCourse creates a PENDING course owned by teacherID.
func NewCourse(teacherID int64, title, description string, price int64, image string) (*Course, error) {
	now := time.Now().UTC()
	c := &Course{
		TeacherID:   teacherID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Price:       price,
		Image:       image,
		State:       StatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the course's fields.
func (c *Course) Validate() error {
	if c.TeacherID <= 0 {
		return NewValidationError("teacher_id", "must be positive", ErrInvalidID)
	}
	if c.Title == "" {
		return NewValidationError("title", "is required", nil)
	}
	if c.Price < 0 {
		return NewValidationError("price", "cannot be negative", nil)
	}
	if !c.State.Valid() {
		return NewValidationError("state", "is unknown", nil)
	}
	return nil
}

// Approve moves a pending course to APPROVED.
func (c *Course) Approve() error {
	if err := transition(c.State, StateApproved); err != nil {
		return err
	}
	c.State = StateApproved
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Reject moves a pending course to REJECTED with a reason.
func (c *Course) Reject(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return NewValidationError("reason", "is required", nil)
	}
	if err := transition(c.State, StateRejected); err != nil {
		return err
	}
	c.State = StateRejected
	c.RejectReason = reason
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Lecture belongs to a course; its owner is the course's teacher.
type Lecture struct {
	ID           int64        `json:"id"`
	CourseID     int64        `json:"course_id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Video        string       `json:"video,omitempty"` // file name in the pending or public video area
	State        ContentState `json:"state"`
	RejectReason string       `json:"reject_reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewLecture creates a PENDING lecture in courseID.
func NewLecture(courseID int64, title, content, video string) (*Lecture, error) {
	now := time.Now().UTC()
	l := &Lecture{
		CourseID:  courseID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		Video:     video,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the lecture's fields.
func (l *Lecture) Validate() error {
	if l.CourseID <= 0 {
		return NewValidationError("course_id", "must be positive", ErrInvalidID)
	}
	if l.Title == "" {
		return NewValidationError("title", "is required", nil)
	}
	if strings.ContainsAny(l.Video, `/\`) || l.Video == "." || l.Video == ".." {
		return NewValidationError("video", "must be a plain file name", nil)
	}
	if !l.State.Valid() {
		return NewValidationError("state", "is unknown", nil)
	}
	return nil
}

// Approve moves a pending lecture to APPROVED.
func (l *Lecture) Approve() error {
	if err := transition(l.State, StateApproved); err != nil {
		return err
	}
	l.State = StateApproved
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// Reject moves a pending lecture to REJECTED with a reason.
func (l *Lecture) Reject(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return NewValidationError("reason", "is required", nil)
	}
	if err := transition(l.State, StateRejected); err != nil {
		return err
	}
	l.State = StateRejected
	l.RejectReason = reason
	l.UpdatedAt = time.Now().UTC()
	return nil
}
