package controller

import (
	"errors"
	"net/http"

	"cht-gateway/internal/infrastructure/security"
	"cht-gateway/internal/pkg/user/application/usecase"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	UC *usecase.GetProfileUseCase
}

func NewProfileController(uc *usecase.GetProfileUseCase) *ProfileController {
	return &ProfileController{UC: uc}
}

func (h *ProfileController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := h.UC.Execute(c.Request.Context(), security.UserID(c))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"user": toUserDTO(u)})
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load profile"})
		}
	}
}
