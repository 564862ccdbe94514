// Package api holds the response envelopes the HTTP layer documents in
// swagger. Handlers that return domain objects reference their own types;
// these cover the shared error, message and system shapes.
package api

type ErrorResponse struct {
	Error string `json:"error" example:"Booking not found"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Payment method removed"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// QueueResponse reports the notification queue depth.
type QueueResponse struct {
	Queued int64 `json:"queued" example:"3"`
}
