package v1

import (
	"go-tutoring-backend/internal/delivery/http/response"
	"go-tutoring-backend/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

type OnboardingHandler struct {
	onboardingUC domain.OnboardingUsecase
}

func NewOnboardingHandler(r *gin.RouterGroup, onboardingUC domain.OnboardingUsecase) {
	handler := &OnboardingHandler{onboardingUC: onboardingUC}

	onboarding := r.Group("/onboarding")
	{
		onboarding.GET("/status", handler.GetStatus)
		onboarding.GET("/progress", handler.GetProgress)
		onboarding.POST("/steps/:stepId/complete", handler.CompleteStep)
	}
}

// GetStatus godoc
// @Summary      Get onboarding status
// @Description  Current onboarding state for the authenticated tutor, including percent complete and the next step
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.OnboardingStatus}
// @Failure      401  {object}  response.Response
// @Router       /onboarding/status [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetStatus(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	status, err := h.onboardingUC.GetStatus(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Onboarding status retrieved", status)
}

// GetProgress godoc
// @Summary      Get onboarding progress report
// @Description  Progress widget payload: remaining steps and estimated minutes left
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ProgressReport}
// @Failure      401  {object}  response.Response
// @Router       /onboarding/progress [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetProgress(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	report, err := h.onboardingUC.TrackProgress(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Onboarding progress retrieved", report)
}

// CompleteStep godoc
// @Summary      Complete an onboarding step
// @Description  Marks a step done. Steps must be completed in catalog order; repeats and skips are rejected.
// @Tags         onboarding
// @Produce      json
// @Param        stepId  path      string  true  "Step identifier"
// @Success      200     {object}  response.Response{data=domain.OnboardingStatus}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /onboarding/steps/{stepId}/complete [post]
// @Security     BearerAuth
func (h *OnboardingHandler) CompleteStep(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	stepID := c.Param("stepId")

	status, err := h.onboardingUC.CompleteStep(c, userID, stepID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Step completed", status)
}
