package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/karthikeyan-cs/event-management-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListPendingEvents handles GET /admin/pending-events
// @Summary List pending events
// @Description List events awaiting approval (Admin only)
// @Tags Admin
// @Produce json
// @Success 200 {object} gin.H
// @Router /api/v1/admin/pending-events [get]
func (h *Handler) ListPendingEvents(c *gin.Context) {
	events, err := h.service.ListPendingEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}

type decideEventReq struct {
	Status string `json:"status" binding:"required" example:"approved"`
}

// DecideEvent handles POST /admin/approve-event/:eventId
func (h *Handler) DecideEvent(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("eventId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req decideEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	result, err := h.service.DecideEvent(c.Request.Context(), uint(eventID), req.Status, adminID, ip)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidDecision):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrAlreadyDecided):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decide event"})
		}
		return
	}

	resp := gin.H{"data": result.Event}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, resp)
}

// =============================
// User management
// =============================

// ListUsers handles GET /admin/users?role=&search=
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), c.Query("role"), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// GetUser handles GET /admin/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

type userStatusReq struct {
	Status string `json:"status" binding:"required" example:"inactive"`
}

// UpdateUserStatus handles PUT /admin/users/:id/status
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req userStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	if err := h.service.UpdateUserStatus(c.Request.Context(), uint(id), req.Status, adminID, ip); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User status updated"})
}

// ResetUserPassword handles POST /admin/users/:id/reset-password
func (h *Handler) ResetUserPassword(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	adminID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	tempPassword, err := h.service.ResetUserPassword(c.Request.Context(), uint(id), adminID, ip)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Password reset; temporary password emailed to the user",
		"temp_password": tempPassword,
	})
}

// DeleteUser handles DELETE /admin/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	adminID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	if err := h.service.DeleteUser(c.Request.Context(), uint(id), adminID, ip); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrCannotDeleteAdmin), errors.Is(err, ErrCannotDeleteSelf):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// =============================
// Permissions and grants
// =============================

type permissionReq struct {
	Name        string `json:"name" binding:"required" example:"CREATE_EVENT"`
	Description string `json:"description" example:"Allows creating events"`
}

// CreatePermission handles POST /admin/permissions
func (h *Handler) CreatePermission(c *gin.Context) {
	var req permissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	p, err := h.service.CreatePermission(c.Request.Context(), req.Name, req.Description, adminID, ip)
	if err != nil {
		if errors.Is(err, ErrPermissionExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": p})
}

// ListPermissions handles GET /admin/permissions
func (h *Handler) ListPermissions(c *gin.Context) {
	permissions, err := h.service.ListPermissions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch permissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": permissions})
}

// DeletePermission handles DELETE /admin/permissions/:id
func (h *Handler) DeletePermission(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid permission ID"})
		return
	}

	adminID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	if err := h.service.DeletePermission(c.Request.Context(), uint(id), adminID, ip); err != nil {
		if errors.Is(err, ErrPermissionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete permission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Permission deleted"})
}

type grantReq struct {
	RoleID       uint `json:"role_id" binding:"required"`
	PermissionID uint `json:"permission_id" binding:"required"`
}

// GrantPermission handles POST /admin/role-permissions
func (h *Handler) GrantPermission(c *gin.Context) {
	var req grantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	if err := h.service.GrantPermission(c.Request.Context(), req.RoleID, req.PermissionID, adminID, ip); err != nil {
		switch {
		case errors.Is(err, ErrRoleNotFound), errors.Is(err, ErrPermissionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrGrantExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant permission"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Permission granted"})
}

// RevokePermission handles DELETE /admin/role-permissions
func (h *Handler) RevokePermission(c *gin.Context) {
	var req grantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.GetUint("user_id")
	ip := middleware.GetIPFromContext(c)

	if err := h.service.RevokePermission(c.Request.Context(), req.RoleID, req.PermissionID, adminID, ip); err != nil {
		if errors.Is(err, ErrPermissionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke permission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Permission revoked"})
}

// ListRolePermissions handles GET /admin/role-permissions/:roleId
func (h *Handler) ListRolePermissions(c *gin.Context) {
	roleID, err := strconv.ParseUint(c.Param("roleId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role ID"})
		return
	}

	permissions, err := h.service.ListRolePermissions(c.Request.Context(), uint(roleID))
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch role permissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": permissions})
}
