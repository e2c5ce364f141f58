package notification

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/middleware"
	"github.com/karthikeyan-cs/event-management-backend/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type emailAttendeesReq struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// EmailAttendees handles POST /events/:id/attendees/email. Organizers
// may only email attendees of their own events; admins may email any.
func (h *Handler) EmailAttendees(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req emailAttendeesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user := userVal.(auth.User)
	isAdmin := user.Role.RoleName == middleware.RoleAdmin

	err = h.service.EmailEventAttendees(c.Request.Context(), uint(eventID), user.ID, isAdmin, req.Subject, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotEventOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNoAttendees):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send emails"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Emails sent to registered attendees"})
}

// ListNotifications handles GET /notifications?unread=true&limit=50
func (h *Handler) ListNotifications(c *gin.Context) {
	userID := c.GetUint("user_id")
	unreadOnly := c.Query("unread") == "true"

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	notifications, err := h.service.ListInAppByUser(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	unreadCount, _ := h.service.CountUnread(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"data": notifications, "unread_count": unreadCount})
}

// MarkAsRead handles PUT /notifications/:id/read
func (h *Handler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	userID := c.GetUint("user_id")
	if err := h.service.MarkInAppAsRead(c.Request.Context(), uint(id), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// MarkAllAsRead handles PUT /notifications/read-all
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetUint("user_id")
	if err := h.service.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All marked as read"})
}

// StreamNotifications handles GET /notifications/stream — an SSE stream
// fed by the user's Redis pub/sub channel.
func (h *Handler) StreamNotifications(c *gin.Context) {
	if utils.RedisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications unavailable"})
		return
	}

	userID := c.GetUint("user_id")
	channel := fmt.Sprintf("notifications:%d", userID)

	sub := utils.RedisClient.Subscribe(c.Request.Context(), channel)
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ch := sub.Channel()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("notification", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

type deviceTokenReq struct {
	DeviceToken string `json:"device_token" binding:"required"`
	DeviceType  string `json:"device_type" example:"web"`
}

// RegisterDeviceToken handles POST /notifications/device-tokens
func (h *Handler) RegisterDeviceToken(c *gin.Context) {
	var req deviceTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	if err := h.service.RegisterDeviceToken(c.Request.Context(), userID, req.DeviceToken, req.DeviceType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Device token registered"})
}

// RemoveDeviceToken handles DELETE /notifications/device-tokens
func (h *Handler) RemoveDeviceToken(c *gin.Context) {
	var req deviceTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	if err := h.service.RemoveDeviceToken(c.Request.Context(), userID, req.DeviceToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove device token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token removed"})
}
