package approuters

import (
	"gatherly/internal/configuration"

	"github.com/gin-gonic/gin"
)

func EventRouters(router *gin.Engine, container *configuration.Container) {
	events := router.Group("/gl/api/events")
	events.Use(container.Issuer.Required())
	{
		events.GET("", container.EventHandler.ListEvents)
		events.POST("", container.EventHandler.CreateEvent)
		events.GET("/:eventId", container.EventHandler.GetEvent)
		events.PUT("/:eventId", container.EventHandler.UpdateEvent)
		events.DELETE("/:eventId", container.EventHandler.DeleteEvent)

		events.POST("/:eventId/join", container.EventHandler.JoinEvent)
		events.POST("/:eventId/leave", container.EventHandler.LeaveEvent)
		events.GET("/:eventId/participants", container.EventHandler.Participants)

		events.POST("/:eventId/comments", container.EventHandler.PostComment)
		events.DELETE("/:eventId/comments/:commentId", container.EventHandler.DeleteComment)

		events.POST("/:eventId/checkin", container.EventHandler.CheckIn)
		events.DELETE("/:eventId/checkin", container.EventHandler.CancelCheckIn)

		events.POST("/:eventId/ban/:userId", container.EventHandler.BanUser)
		events.DELETE("/:eventId/ban/:userId", container.EventHandler.UnbanUser)
		events.GET("/:eventId/banned", container.EventHandler.BannedUsers)
	}
}
