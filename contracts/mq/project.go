package mq

// ProjectCreatedPayload is published on the events exchange whenever a
// project is created, either through the creation form or the smart
// checklist gateway. Consumed by the notification worker.
type ProjectCreatedPayload struct {
	ProjectID string `json:"project_id"`
	OwnerID   int    `json:"owner_id"`
	Name      string `json:"name"`
	Creator   string `json:"creator"`
	TaskCount int    `json:"task_count"`
	TraceID   string `json:"trace_id,omitempty"`
}
