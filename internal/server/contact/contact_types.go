package contact

// Submission is one contact form entry. It is never persisted.
type Submission struct {
	Name    string
	Email   string
	Message string
}
