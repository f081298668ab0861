package v1

import (
	"go-tutoring-backend/internal/delivery/http/response"
	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
	"net/http"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	studentUC domain.StudentUsecase
}

func NewStudentHandler(r *gin.RouterGroup, studentUC domain.StudentUsecase) {
	handler := &StudentHandler{studentUC: studentUC}

	students := r.Group("/students")
	{
		students.POST("", handler.Add)
		students.GET("", handler.List)
		students.GET("/:id", handler.GetDetail)
		students.PUT("/:id", handler.Update)
		students.POST("/:id/archive", handler.Archive)
	}
}

// Add godoc
// @Summary      Add a student to the roster
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        request  body      domain.UpsertStudentRequest  true  "Student details"
// @Success      201      {object}  response.Response{data=domain.Student}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /students [post]
// @Security     BearerAuth
func (h *StudentHandler) Add(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	var req domain.UpsertStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	student, err := h.studentUC.Add(c, tutorID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Student added", student)
}

// List godoc
// @Summary      List the tutor's students
// @Tags         students
// @Produce      json
// @Param        include_archived  query     bool  false  "Include archived students"
// @Success      200               {object}  response.Response{data=[]domain.Student}
// @Failure      401               {object}  response.Response
// @Router       /students [get]
// @Security     BearerAuth
func (h *StudentHandler) List(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))
	includeArchived := c.Query("include_archived") == "true"

	students, err := h.studentUC.ListByTutor(c, tutorID, includeArchived)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Students retrieved", students)
}

// GetDetail godoc
// @Summary      Get a student
// @Tags         students
// @Produce      json
// @Param        id   path      string  true  "Student ID"
// @Success      200  {object}  response.Response{data=domain.Student}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /students/{id} [get]
// @Security     BearerAuth
func (h *StudentHandler) GetDetail(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	student, err := h.studentUC.GetByID(c, tutorID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Student retrieved", student)
}

// Update godoc
// @Summary      Update a student
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Student ID"
// @Param        request  body      domain.UpsertStudentRequest  true  "Student details"
// @Success      200      {object}  response.Response{data=domain.Student}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /students/{id} [put]
// @Security     BearerAuth
func (h *StudentHandler) Update(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	var req domain.UpsertStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	student, err := h.studentUC.Update(c, tutorID, c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Student updated", student)
}

// Archive godoc
// @Summary      Archive a student
// @Description  Archived students stay in history but cannot be scheduled for new sessions
// @Tags         students
// @Produce      json
// @Param        id   path      string  true  "Student ID"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /students/{id}/archive [post]
// @Security     BearerAuth
func (h *StudentHandler) Archive(c *gin.Context) {
	tutorID := c.GetString(string(domain.KeyUserID))

	if err := h.studentUC.Archive(c, tutorID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Student archived", nil)
}
