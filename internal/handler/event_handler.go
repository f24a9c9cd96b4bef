package handler

import (
	"errors"
	"net/http"

	"gatherly/internal/auth"
	"gatherly/internal/model"
	"gatherly/internal/repo"
	"gatherly/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

// EventRequest is the create/update payload for an event.
type EventRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	DressCode   string   `json:"dressCode"`
	StartDate   string   `json:"startDate"`
	StartTime   string   `json:"startTime"`
	EndDate     string   `json:"endDate"`
	EndTime     string   `json:"endTime"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ImageURL    string   `json:"imageUrl"`
	ImageURLs   []string `json:"imageUrls"`
}

type CommentRequest struct {
	Text     string  `json:"text" binding:"required"`
	ParentID *string `json:"parentId"`
}

type EventHandler interface {
	ListEvents(c *gin.Context)
	GetEvent(c *gin.Context)
	CreateEvent(c *gin.Context)
	UpdateEvent(c *gin.Context)
	DeleteEvent(c *gin.Context)
	JoinEvent(c *gin.Context)
	LeaveEvent(c *gin.Context)
	Participants(c *gin.Context)
	PostComment(c *gin.Context)
	DeleteComment(c *gin.Context)
	CheckIn(c *gin.Context)
	CancelCheckIn(c *gin.Context)
	BanUser(c *gin.Context)
	UnbanUser(c *gin.Context)
	BannedUsers(c *gin.Context)
}

type eventHandler struct {
	events service.EventService
	users  service.UserService
}

func NewEventHandler(events service.EventService, users service.UserService) EventHandler {
	return &eventHandler{
		events: events,
		users:  users,
	}
}

func (h *eventHandler) ListEvents(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *eventHandler) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *eventHandler) CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event model.Event
	if err := copier.Copy(&event, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.events.Create(c.Request.Context(), auth.CurrentUserID(c), &event)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *eventHandler) UpdateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event model.Event
	if err := copier.Copy(&event, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.events.Update(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId"), &event); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event updated"})
}

func (h *eventHandler) DeleteEvent(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

func (h *eventHandler) JoinEvent(c *gin.Context) {
	if err := h.events.Join(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined event"})
}

func (h *eventHandler) LeaveEvent(c *gin.Context) {
	if err := h.events.Leave(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left event"})
}

func (h *eventHandler) Participants(c *gin.Context) {
	users, err := h.events.Participants(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": users, "count": len(users)})
}

func (h *eventHandler) PostComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid := auth.CurrentUserID(c)
	profile, err := h.users.Profile(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	actor := service.Actor{ID: uid, DisplayName: profile.DisplayName}
	if err := h.events.PostComment(c.Request.Context(), actor, c.Param("eventId"), req.Text, req.ParentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "comment posted"})
}

func (h *eventHandler) DeleteComment(c *gin.Context) {
	err := h.events.DeleteComment(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId"), c.Param("commentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

func (h *eventHandler) CheckIn(c *gin.Context) {
	if err := h.events.CheckIn(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "checked in"})
}

func (h *eventHandler) CancelCheckIn(c *gin.Context) {
	if err := h.events.CancelCheckIn(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "check-in cancelled"})
}

func (h *eventHandler) BanUser(c *gin.Context) {
	err := h.events.Ban(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user banned"})
}

func (h *eventHandler) UnbanUser(c *gin.Context) {
	err := h.events.Unban(c.Request.Context(), auth.CurrentUserID(c), c.Param("eventId"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user unbanned"})
}

func (h *eventHandler) BannedUsers(c *gin.Context) {
	users, err := h.events.BannedUsers(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bannedUsers": users})
}

// respondError maps service errors onto HTTP statuses. Unknown errors stay
// opaque 500s with the message passed through verbatim.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrEventNotFound), errors.Is(err, repo.ErrCommentNotFound), errors.Is(err, repo.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotHost), errors.Is(err, service.ErrNotCommentOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBannedFromEvent):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyComment), errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, repo.ErrInvalidEventID), errors.Is(err, repo.ErrInvalidUserID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
