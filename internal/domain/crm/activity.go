package crm

import (
	"fmt"
	"strings"
	"time"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

type Task struct {
	org.Record
	org.TenantRef
	org.OwnerRef
	Title       string     `gorm:"not null;column:title" json:"title"`
	IsCompleted bool       `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	DueDate     *time.Time `gorm:"column:due_date" json:"due_date"`
}

func (Task) TableName() string { return "task" }

func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		t.DueDate = &due
	}
}

func (t *Task) Validate() error {
	if t.Title == "" {
		return domainagg.Validation("task.validate", "title is required.")
	}
	return nil
}

type Event struct {
	org.Record
	org.TenantRef
	org.OwnerRef
	Title     string    `gorm:"not null;column:title" json:"title"`
	StartTime time.Time `gorm:"not null;index;column:start_time" json:"start_time"`
	Type      EventType `gorm:"not null;default:Meeting;column:type" json:"type"`
}

func (Event) TableName() string { return "event" }

func (e *Event) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	if e.Type == "" {
		e.Type = EventMeeting
	}
	e.StartTime = e.StartTime.UTC()
}

func (e *Event) Validate() error {
	const op = "event.validate"
	switch {
	case e.Title == "":
		return domainagg.Validation(op, "title is required.")
	case e.StartTime.IsZero():
		return domainagg.Validation(op, "start_time is required.")
	case !oneOf(e.Type, eventTypes):
		return domainagg.Validation(op, fmt.Sprintf("%q is not a valid event type.", e.Type))
	}
	return nil
}
