package status

// StatusCheckCreateRequest is the body of POST /api/status
type StatusCheckCreateRequest struct {
	ClientName string `json:"client_name" binding:"required"`
}
