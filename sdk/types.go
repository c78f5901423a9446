package boltbot

// Reply statuses reported in CommandResponse.Status.
const (
	StatusOK          = "ok"
	StatusBadInput    = "bad_input"
	StatusCooldown    = "cooldown"
	StatusUnavailable = "unavailable"
	StatusInternal    = "internal_error"
)

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// CommandRequest runs one chat command. Text is the message as the user
// typed it, with or without the command prefix.
type CommandRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// CommandResponse is the rendered reply. Page and Pages are set for
// paginated listings only.
type CommandResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Content   string `json:"content"`
	Page      int    `json:"page,omitempty"`
	Pages     int    `json:"pages,omitempty"`
}

// OK reports whether the command completed.
func (r *CommandResponse) OK() bool {
	return r.Status == StatusOK
}
