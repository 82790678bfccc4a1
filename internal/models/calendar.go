package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType classifies a calendar entry.
type EventType string

const (
	EventAppointment EventType = "appointment"
	EventDeadline    EventType = "deadline"
	EventReminder    EventType = "reminder"
	EventCourtDate   EventType = "court_date"
)

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t EventType) bool {
	switch t {
	case EventAppointment, EventDeadline, EventReminder, EventCourtDate:
		return true
	}
	return false
}

// CalendarEvent is a user-owned scheduled item.
type CalendarEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Date      time.Time          `bson:"date" json:"date"`
	Type      EventType          `bson:"type" json:"type"`
	Priority  ClaimPriority      `bson:"priority,omitempty" json:"priority,omitempty"`
	Completed bool               `bson:"completed" json:"completed"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
