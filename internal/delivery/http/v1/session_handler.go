package v1

import (
	"go-tutoring-backend/internal/delivery/http/response"
	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionUC domain.SessionUsecase
}

func NewSessionHandler(r *gin.RouterGroup, sessionUC domain.SessionUsecase) {
	handler := &SessionHandler{sessionUC: sessionUC}

	sessions := r.Group("/sessions")
	{
		sessions.POST("", handler.Schedule)
		sessions.GET("", handler.List)
		sessions.GET("/:id", handler.GetDetail)
		sessions.POST("/:id/cancel", handler.Cancel)
		sessions.POST("/:id/complete", handler.Complete)
	}
}

// Schedule godoc
// @Summary      Schedule a tutoring session
// @Description  Creates a scheduled session with a student from the tutor's roster and sends a confirmation email when SMTP is configured
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ScheduleSessionRequest  true  "Session details"
// @Success      201      {object}  response.Response{data=domain.Session}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /sessions [post]
// @Security     BearerAuth
func (h *SessionHandler) Schedule(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	var req domain.ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	session, err := h.sessionUC.Schedule(c, tutorID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Session scheduled", session)
}

// List godoc
// @Summary      List the tutor's sessions
// @Tags         sessions
// @Produce      json
// @Param        status  query     string  false  "Filter by status (scheduled, completed, cancelled)"
// @Param        limit   query     int     false  "Page size (default 50, max 100)"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  response.Response{data=[]domain.Session}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Router       /sessions [get]
// @Security     BearerAuth
func (h *SessionHandler) List(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := c.Query("status")

	sessions, err := h.sessionUC.ListByTutor(c, tutorID, status, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Sessions retrieved", sessions)
}

// GetDetail godoc
// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.Session}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /sessions/{id} [get]
// @Security     BearerAuth
func (h *SessionHandler) GetDetail(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	session, err := h.sessionUC.GetByID(c, tutorID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Session retrieved", session)
}

// Cancel godoc
// @Summary      Cancel a scheduled session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /sessions/{id}/cancel [post]
// @Security     BearerAuth
func (h *SessionHandler) Cancel(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	if err := h.sessionUC.Cancel(c, tutorID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Session cancelled", nil)
}

// Complete godoc
// @Summary      Complete a session
// @Description  Marks the session completed and re-evaluates session-count and hours-taught achievements; newly unlocked achievements are returned with the session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.CompleteSessionResult}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /sessions/{id}/complete [post]
// @Security     BearerAuth
func (h *SessionHandler) Complete(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	result, err := h.sessionUC.Complete(c, tutorID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Session completed", result)
}
