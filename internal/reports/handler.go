package reports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/event"
	"github.com/karthikeyan-cs/event-management-backend/middleware"
)

type Handler struct {
	service ReportService
}

func NewHandler(service ReportService) *Handler {
	return &Handler{service: service}
}

// ExportAttendees handles GET /reports/events/:id/attendees?format=csv|excel|pdf
// @Summary Export the attendee list of an event
// @Tags Reports
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /api/v1/reports/events/{id}/attendees [get]
func (h *Handler) ExportAttendees(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	format := c.DefaultQuery("format", FormatCSV)

	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user := userVal.(auth.User)
	isAdmin := user.Role.RoleName == middleware.RoleAdmin
	ip := middleware.GetIPFromContext(c)

	data, fname, mime, err := h.service.ExportAttendees(c.Request.Context(), uint(eventID), format, user.ID, isAdmin, ip)
	if err != nil {
		switch {
		case errors.Is(err, event.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotEventOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, data)
}

// ExportEventSummary handles GET /reports/events?format=csv|excel|pdf
// Query params: status, category, organizer, from (YYYY-MM-DD), to (YYYY-MM-DD)
func (h *Handler) ExportEventSummary(c *gin.Context) {
	format := c.DefaultQuery("format", FormatCSV)

	req := EventSummaryRequest{
		Status: c.Query("status"),
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		id, err := strconv.ParseUint(categoryStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		req.CategoryID = uint(id)
	}
	if organizerStr := c.Query("organizer"); organizerStr != "" {
		id, err := strconv.ParseUint(organizerStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organizer id"})
			return
		}
		req.OrganizerID = uint(id)
	}
	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		req.FromDate = &t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return
		}
		req.ToDate = &t
	}

	userID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	data, fname, mime, err := h.service.ExportEventSummary(c.Request.Context(), req, format, userID, ip)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, data)
}
