package approuters

import (
	"gatherly/internal/configuration"

	"github.com/gin-gonic/gin"
)

func AuthRouters(router *gin.Engine, container *configuration.Container) {
	authRoute := router.Group("/gl/api/auth")
	{
		authRoute.POST("/register", container.AuthHandler.Register)
		authRoute.POST("/login", container.AuthHandler.Login)
		authRoute.POST("/signout", container.Issuer.Required(), container.AuthHandler.SignOut)
	}
}
