package handler

import (
	"net/http"

	"gatherly/internal/auth"
	"gatherly/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	GetUser(c *gin.Context)
	GetMe(c *gin.Context)
	UpdateProfile(c *gin.Context)
	DeleteAccount(c *gin.Context)
	Follow(c *gin.Context)
	Unfollow(c *gin.Context)
	Followers(c *gin.Context)
	Following(c *gin.Context)
	UsersByIDs(c *gin.Context)
}

type userHandler struct {
	users service.UserService
	authn service.AuthService
}

func NewUserHandler(users service.UserService, authn service.AuthService) UserHandler {
	return &userHandler{
		users: users,
		authn: authn,
	}
}

func (h *userHandler) GetUser(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *userHandler) GetMe(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *userHandler) UpdateProfile(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateProfile(c.Request.Context(), auth.CurrentUserID(c), updates); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

func (h *userHandler) DeleteAccount(c *gin.Context) {
	if err := h.authn.DeleteAccount(c.Request.Context(), auth.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (h *userHandler) Follow(c *gin.Context) {
	if err := h.users.Follow(c.Request.Context(), auth.CurrentUserID(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "followed"})
}

func (h *userHandler) Unfollow(c *gin.Context) {
	if err := h.users.Unfollow(c.Request.Context(), auth.CurrentUserID(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

func (h *userHandler) Followers(c *gin.Context) {
	users, err := h.users.Followers(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": users})
}

func (h *userHandler) Following(c *gin.Context) {
	users, err := h.users.Following(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": users})
}

func (h *userHandler) UsersByIDs(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	users, err := h.users.UsersByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
