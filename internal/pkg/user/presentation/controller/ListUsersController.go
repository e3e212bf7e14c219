package controller

import (
	"net/http"

	user "cht-gateway/internal/pkg/user/application/domain"
	"cht-gateway/internal/pkg/user/application/usecase"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type userDTO struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type userWithStatusDTO struct {
	userDTO
	Status user.Status `json:"status"`
}

func toUserDTO(u user.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Username: u.Username}
}

// ListUsersController lists every account with its live presence.
type ListUsersController struct {
	UC *usecase.ListUsersUseCase
}

func NewListUsersController(uc *usecase.ListUsersUseCase) *ListUsersController {
	return &ListUsersController{UC: uc}
}

func (h *ListUsersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.UC.Execute(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list users"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"users": lo.Map(users, func(u usecase.UserWithStatus, _ int) userWithStatusDTO {
				return userWithStatusDTO{userDTO: toUserDTO(u.User), Status: u.Status}
			}),
		})
	}
}

// OnlineUsers reports the ids currently holding a live connection.
type OnlineUsers interface {
	OnlineUsers() []string
}

type OnlineUsersController struct {
	presence OnlineUsers
}

func NewOnlineUsersController(presence OnlineUsers) *OnlineUsersController {
	return &OnlineUsersController{presence: presence}
}

func (h *OnlineUsersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"users": h.presence.OnlineUsers()})
	}
}
