package v1

import (
	"go-tutoring-backend/internal/delivery/http/response"
	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	achievementUC domain.AchievementUsecase
}

func NewAchievementHandler(r *gin.RouterGroup, achievementUC domain.AchievementUsecase) {
	handler := &AchievementHandler{achievementUC: achievementUC}

	achievements := r.Group("/achievements")
	{
		achievements.GET("", handler.List)
		achievements.POST("/progress", handler.ReportProgress)
	}
}

// List godoc
// @Summary      List achievements grouped by tier
// @Description  The full achievement catalog with the current tutor's progress, grouped into tier ladders per condition type
// @Tags         achievements
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.AchievementTierGroup}
// @Failure      401  {object}  response.Response
// @Router       /achievements [get]
// @Security     BearerAuth
func (h *AchievementHandler) List(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	groups, err := h.achievementUC.ListForUser(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Achievements retrieved", groups)
}

// ReportProgress godoc
// @Summary      Report a progress counter
// @Description  Records the latest observed value for a condition type and returns achievements newly unlocked by this report
// @Tags         achievements
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ReportProgressRequest  true  "Counter value"
// @Success      200      {object}  response.Response{data=[]domain.AchievementDefinition}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /achievements/progress [post]
// @Security     BearerAuth
func (h *AchievementHandler) ReportProgress(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.ReportProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	unlocked, err := h.achievementUC.CheckProgress(c, userID, domain.ConditionType(req.ConditionType), req.Value)
	if err != nil {
		c.Error(err)
		return
	}

	if unlocked == nil {
		unlocked = []domain.AchievementDefinition{}
	}
	response.Success(c, http.StatusOK, "Progress recorded", unlocked)
}
