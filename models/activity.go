package models

import "time"

// Actions recorded in the activity event stream.
const (
	ActionSignup      = "signup"
	ActionLogin       = "login"
	ActionTodoCreated = "todo_created"
	ActionTodoUpdated = "todo_updated"
	ActionTodoDeleted = "todo_deleted"
)

// ActivityEvent is a single server-generated activity record.
// TodoID is 0 for auth actions.
type ActivityEvent struct {
	EventID   string    `json:"eventId"`
	Action    string    `json:"action"`
	UserID    int64     `json:"userId"`
	TodoID    int64     `json:"todoId,omitempty"`
	IPAddress string    `json:"ipAddress"`
	Timestamp time.Time `json:"timestamp"`
}

type TopActionResult struct {
	Action string `json:"action"`
	Count  uint64 `json:"count"`
}
