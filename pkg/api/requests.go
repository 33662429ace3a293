package api

// registerRequest is the body of POST /api/auth/register.
type registerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// loginRequest is the body of POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// createMeetingRequest is the body of POST /api/meetings. Questions are
// optional at creation; bounds are enforced by the meeting service.
type createMeetingRequest struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description"`
	DurationMinutes int      `json:"duration_minutes" binding:"required"`
	Questions       []string `json:"questions"`
}

// exportRequest is the body of POST /api/:meeting_id/export/.
type exportRequest struct {
	Type string `json:"type"`
}
