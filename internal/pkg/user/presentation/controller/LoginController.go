package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cht-gateway/internal/pkg/user/application/usecase"

	"github.com/gin-gonic/gin"
)

type LoginController struct {
	UC *usecase.LoginUseCase
}

func NewLoginController(uc *usecase.LoginUseCase) *LoginController {
	return &LoginController{UC: uc}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *LoginController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.LoginInput{Username: req.Username, Password: req.Password})
		switch {
		case err == nil:
			c.JSON(http.StatusCreated, gin.H{"token": out.Token})
		case errors.Is(err, usecase.ErrInvalidCredentials), errors.Is(err, usecase.ErrInvalidInput):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to authenticate"})
		}
	}
}
