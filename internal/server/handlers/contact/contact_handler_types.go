package contact

// ContactRequest is the body of POST /api/contact
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email_address"`
	Message string `json:"message" binding:"required"`
}

// ContactResponse acknowledges a delivered message
type ContactResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	statusSuccess = "success"

	messageSent       = "Your message has been sent successfully"
	detailSendFailure = "Failed to send message. Please try again."
)
