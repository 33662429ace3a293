package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/services"
)

// createMeetingHandler handles POST /api/meetings. The meeting and its
// questions are created in one request; the response carries the access
// code participants will join with.
func (s *Server) createMeetingHandler(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	m, questions, err := s.meetings.CreateMeeting(c.Request.Context(), services.CreateMeetingInput{
		DirectorID:      user.ID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Questions:       req.Questions,
	})
	if err != nil {
		mapServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMeetingResponse(m, questions))
}

// listMeetingsHandler handles GET /api/meetings, returning the caller's
// meetings newest first.
func (s *Server) listMeetingsHandler(c *gin.Context) {
	user := currentUser(c)
	meetings, err := s.meetings.ListMeetings(c.Request.Context(), user.ID)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	resp := make([]meetingResponse, 0, len(meetings))
	for _, m := range meetings {
		resp = append(resp, toMeetingResponse(m, nil))
	}
	c.JSON(http.StatusOK, gin.H{"meetings": resp})
}

// deleteMeetingHandler handles DELETE /api/meetings/:meeting_id. Only the
// owning director may delete; anyone else sees the same 404 as a missing
// meeting.
func (s *Server) deleteMeetingHandler(c *gin.Context) {
	meetingID, err := uuid.Parse(c.Param("meeting_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting id"})
		return
	}

	user := currentUser(c)
	if err := s.meetings.DeleteMeeting(c.Request.Context(), meetingID, user.ID); err != nil {
		mapServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
