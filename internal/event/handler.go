package event

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateEvent handles POST /events/create
// @Summary Create event
// @Description Create a new event. Unapproved organizers get a pending submission.
// @Tags Event
// @Accept json
// @Produce json
// @Success 201 {object} gin.H
// @Failure 400 {object} gin.H
// @Failure 403 {object} gin.H
// @Router /api/v1/events/create [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	e, err := h.service.CreateEvent(c.Request.Context(), userID, &req, ip)
	if err != nil {
		switch {
		case errors.Is(err, ErrAwaitingApproval):
			c.JSON(http.StatusForbidden, gin.H{
				"message": "Event submitted and awaiting admin approval",
				"data":    e,
			})
		case errors.Is(err, ErrOrganizerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidCategory):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrDeadlineAfterEventDate),
			errors.Is(err, ErrEventDateNotFuture),
			errors.Is(err, ErrValidation),
			errors.Is(err, ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": e})
}

// ListEvents handles GET /events (public)
// Query params: search, location, category, status, priceRange ("min-max"), date (YYYY-MM-DD)
func (h *Handler) ListEvents(c *gin.Context) {
	filter := EventFilter{
		Search:   c.Query("search"),
		Location: c.Query("location"),
	}

	if categoryStr := c.Query("category"); categoryStr != "" {
		id, err := strconv.ParseUint(categoryStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}
		cid := uint(id)
		filter.CategoryID = &cid
	}

	if status := c.Query("status"); status != "" {
		if !ValidStatuses[status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter.Status = status
	}

	if priceRange := c.Query("priceRange"); priceRange != "" {
		parts := strings.SplitN(priceRange, "-", 2)
		if len(parts) == 2 {
			if min, err := strconv.ParseFloat(parts[0], 64); err == nil {
				filter.PriceMin = &min
			}
			if max, err := strconv.ParseFloat(parts[1], 64); err == nil {
				filter.PriceMax = &max
			}
		}
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		filter.Date = &date
	}

	events, err := h.service.ListEvents(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

// GetEventByID handles GET /events/:id
func (h *Handler) GetEventByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	e, err := h.service.GetEventByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": e})
}

// GetEventsByOrganizer handles GET /events/user/:userId
// An organizer with no events gets an empty array, never 404.
func (h *Handler) GetEventsByOrganizer(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	events, err := h.service.GetEventsByOrganizer(c.Request.Context(), uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

// UpdateEvent handles PUT /events/update/:id
func (h *Handler) UpdateEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.MustGet("user").(auth.User)
	ip := middleware.GetIPFromContext(c)

	e, err := h.service.UpdateEvent(c.Request.Context(), uint(id), &req, actor, ip)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidCategory):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": e})
}

// DeleteEvent handles DELETE /events/delete/:id
func (h *Handler) DeleteEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	actor := c.MustGet("user").(auth.User)
	ip := middleware.GetIPFromContext(c)

	if err := h.service.DeleteEvent(c.Request.Context(), uint(id), actor, ip); err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrCannotDelete):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// RegisterAttendee handles POST /events/:id/register
func (h *Handler) RegisterAttendee(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	userID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	if err := h.service.RegisterAttendee(c.Request.Context(), uint(id), userID, false, ip); err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrEventFull), errors.Is(err, ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, ErrRegistrationClosed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrPaymentRequired):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registered successfully"})
}

// ListAttendees handles GET /events/:id/attendees (organizer/admin)
func (h *Handler) ListAttendees(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	attendees, err := h.service.ListAttendees(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendees"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attendees})
}
