package realtime

import "encoding/json"

// Event names understood on the wire.
const (
	EventJoin              = "join"
	EventTaskCreated       = "task:created"
	EventTaskUpdated       = "task:updated"
	EventTaskDeleted       = "task:deleted"
	EventTaskStatusChanged = "task:status-changed"
	EventNotificationNew   = "notification:new"
	EventNotificationRead  = "notification:read"
)

// Envelope is the wire format for every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// taskUpdatePayload is the client-sent body of a task:updated event. The task
// object is relayed verbatim; only the assignment fields are inspected here.
type taskUpdatePayload struct {
	Task                 json.RawMessage `json:"task"`
	PreviousAssignedToID *string         `json:"previousAssignedToId"`
}

// taskAssignment is the subset of a relayed task the hub looks at to decide
// whether an assignment notification is due.
type taskAssignment struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	AssignedToID *string `json:"assignedToId"`
}

// assignmentNotice is the body of a hub-generated notification:new event.
type assignmentNotice struct {
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}
