package model

import (
	"encoding/json"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EventType represents the kind of job lifecycle event.
type EventType string

// Lifecycle event types.
const (
	EventTypeApplicationInited   EventType = "APPLICATION_INITED"
	EventTypeTaskStarted         EventType = "TASK_STARTED"
	EventTypeTaskFinished        EventType = "TASK_FINISHED"
	EventTypeApplicationFinished EventType = "APPLICATION_FINISHED"
)

// ToString converts the EventType to its string representation.
func (t EventType) ToString() string {
	return string(t)
}

// Payload is the closed set of per-type event payloads. The recorder and the
// history file writer only ever see the Event envelope and never inspect the
// payload fields.
type Payload interface {
	isPayload()
}

// ApplicationInited is emitted once the application master has initialized.
type ApplicationInited struct {
	ApplicationID string `json:"application_id"`
	NumTasks      int32  `json:"num_tasks"`
	Host          string `json:"host"`
}

// TaskStarted is emitted when an individual task begins execution.
type TaskStarted struct {
	TaskType  string `json:"task_type"`
	TaskIndex int32  `json:"task_index"`
	Host      string `json:"host"`
}

// TaskFinished is emitted when an individual task completes.
type TaskFinished struct {
	TaskType  string `json:"task_type"`
	TaskIndex int32  `json:"task_index"`
	ExitCode  int32  `json:"exit_code"`
	Status    string `json:"status"`
}

// ApplicationFinished is emitted once, when the whole job has completed.
type ApplicationFinished struct {
	ApplicationID     string `json:"application_id"`
	NumCompletedTasks int32  `json:"num_completed_tasks"`
	NumFailedTasks    int32  `json:"num_failed_tasks"`
	Status            string `json:"status"`
}

func (ApplicationInited) isPayload()   {}
func (TaskStarted) isPayload()         {}
func (TaskFinished) isPayload()        {}
func (ApplicationFinished) isPayload() {}

// Event is the envelope persisted to the history file: a type discriminator,
// the creation timestamp and the type-specific payload. Events are immutable
// once constructed.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   Payload
}

// NewEvent creates an event envelope stamped with the current time.
func NewEvent(payload Payload) *Event {
	return &Event{
		Type:      payloadType(payload),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func payloadType(payload Payload) EventType {
	switch payload.(type) {
	case ApplicationInited, *ApplicationInited:
		return EventTypeApplicationInited
	case TaskStarted, *TaskStarted:
		return EventTypeTaskStarted
	case TaskFinished, *TaskFinished:
		return EventTypeTaskFinished
	case ApplicationFinished, *ApplicationFinished:
		return EventTypeApplicationFinished
	default:
		return ""
	}
}

// eventJSON is the wire/storage representation of an Event.
type eventJSON struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the envelope with the payload keyed by the type discriminator.
func (e *Event) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to marshal event payload: %v", err)
	}

	return json.Marshal(eventJSON{
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Payload:   payload,
	})
}

// UnmarshalJSON decodes the envelope and reconstructs the payload variant
// matching the type discriminator.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return status.Errorf(codes.InvalidArgument, "failed to unmarshal event envelope: %v", err)
	}

	var payload Payload
	switch raw.Type {
	case EventTypeApplicationInited:
		var p ApplicationInited
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return status.Errorf(codes.InvalidArgument, "failed to unmarshal payload: %v", err)
		}
		payload = p
	case EventTypeTaskStarted:
		var p TaskStarted
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return status.Errorf(codes.InvalidArgument, "failed to unmarshal payload: %v", err)
		}
		payload = p
	case EventTypeTaskFinished:
		var p TaskFinished
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return status.Errorf(codes.InvalidArgument, "failed to unmarshal payload: %v", err)
		}
		payload = p
	case EventTypeApplicationFinished:
		var p ApplicationFinished
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return status.Errorf(codes.InvalidArgument, "failed to unmarshal payload: %v", err)
		}
		payload = p
	default:
		return status.Errorf(codes.InvalidArgument, "unknown event type: %s", raw.Type)
	}

	e.Type = raw.Type
	e.Timestamp = raw.Timestamp
	e.Payload = payload
	return nil
}
