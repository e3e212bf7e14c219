package http

import (
	"cht-gateway/internal/infrastructure/realtime"
	"cht-gateway/internal/pkg/user/application/usecase"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"
	"cht-gateway/internal/pkg/user/presentation/controller"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers account and directory endpoints. authed must already enforce bearer auth.
func RegisterRoutes(public, authed *gin.RouterGroup, repo repository.UserRepository, tokens usecase.TokenIssuer, registry *realtime.Registry) {
	registerCtl := controller.NewRegisterController(usecase.NewRegisterUseCase(repo))
	loginCtl := controller.NewLoginController(usecase.NewLoginUseCase(repo, tokens))
	profileCtl := controller.NewProfileController(usecase.NewGetProfileUseCase(repo))
	listCtl := controller.NewListUsersController(usecase.NewListUsersUseCase(repo, registry))
	onlineCtl := controller.NewOnlineUsersController(registry)

	public.POST("/register", registerCtl.Handle())
	public.POST("/login", loginCtl.Handle())

	authed.GET("/profile", profileCtl.Handle())
	authed.GET("/users", listCtl.Handle())
	authed.GET("/users/online", onlineCtl.Handle())
}
