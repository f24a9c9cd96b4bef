package approuters

import (
	"gatherly/internal/configuration"

	"github.com/gin-gonic/gin"
)

func UserRouters(router *gin.Engine, container *configuration.Container) {
	users := router.Group("/gl/api/users")
	users.Use(container.Issuer.Required())
	{
		users.GET("/me", container.UserHandler.GetMe)
		users.PATCH("/me", container.UserHandler.UpdateProfile)
		users.DELETE("/me", container.UserHandler.DeleteAccount)

		users.GET("/:userId", container.UserHandler.GetUser)
		users.POST("/:userId/follow", container.UserHandler.Follow)
		users.DELETE("/:userId/follow", container.UserHandler.Unfollow)
		users.GET("/:userId/followers", container.UserHandler.Followers)
		users.GET("/:userId/following", container.UserHandler.Following)

		users.POST("/lookup", container.UserHandler.UsersByIDs)
	}
}
