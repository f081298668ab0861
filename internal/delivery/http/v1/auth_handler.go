package v1

import (
	"go-tutoring-backend/internal/delivery/http/response"
	"go-tutoring-backend/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the authenticated-identity endpoints. Credential flows
// (signup, login, password reset) live in Supabase; this service only syncs
// and serves the local user row.
type AuthHandler struct {
	authUC       domain.AuthUsecase
	onboardingUC domain.OnboardingUsecase
}

func NewAuthHandler(protected *gin.RouterGroup, authUC domain.AuthUsecase, onboardingUC domain.OnboardingUsecase) {
	handler := &AuthHandler{
		authUC:       authUC,
		onboardingUC: onboardingUC,
	}

	auth := protected.Group("/auth")
	{
		auth.POST("/sync", handler.SyncProfile)
		auth.GET("/me", handler.Me)
	}
}

// SyncProfile godoc
// @Summary      Sync the Supabase identity into the local user table
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/sync [post]
// @Security     BearerAuth
func (h *AuthHandler) SyncProfile(c *gin.Context) {
	user := &domain.User{
		ID:    c.GetString(string(domain.KeyUserID)),
		Email: c.GetString(string(domain.KeyUserEmail)),
		Role:  c.GetString(string(domain.KeyUserRole)),
	}

	if err := h.authUC.EnsureUserExists(c, user); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile synced", user)
}

// Me godoc
// @Summary      Get the current user
// @Description  The local user row plus whether the onboarding checklist is finished
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	user, err := h.authUC.GetCurrentUser(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	completed, err := h.onboardingUC.IsComplete(c, userID)
	if err == nil {
		user.OnboardingCompleted = &completed
	}

	response.Success(c, http.StatusOK, "User details", user)
}
