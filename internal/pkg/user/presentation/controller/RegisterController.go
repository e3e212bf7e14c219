package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cht-gateway/internal/pkg/user/application/usecase"

	"github.com/gin-gonic/gin"
)

// RegisterController handles account creation (one controller per endpoint)
type RegisterController struct {
	UC *usecase.RegisterUseCase
}

func NewRegisterController(uc *usecase.RegisterUseCase) *RegisterController {
	return &RegisterController{UC: uc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *RegisterController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := h.UC.Execute(ctx, usecase.RegisterInput{Name: req.Name, Username: req.Username, Password: req.Password})
		switch {
		case err == nil:
			c.Status(http.StatusCreated)
		case errors.Is(err, usecase.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, usecase.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"message": "Username already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create account"})
		}
	}
}
