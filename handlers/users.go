package handlers

import (
	"fmt"
	"net/http"

	"parcel-delivery-api/models"

	"github.com/gin-gonic/gin"
)

// SearchUsers finds up to ten users by email fragment
func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.svc.Users.Search(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserRole grants admin or user to the user in the path (admin only)
func (h *Handler) UpdateUserRole(c *gin.Context) {
	var body struct {
		Role models.UserRole `json:"role"`
	}
	if !bindJSON(c, &body, false) {
		return
	}
	if err := h.svc.Users.SetRole(c.Request.Context(), c.Param("id"), body.Role); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User role updated to %s", body.Role)})
}

// GetUserRole returns the role of the email in the path
func (h *Handler) GetUserRole(c *gin.Context) {
	role, err := h.svc.Users.RoleOf(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// CreateUser records a user on first sign-in; repeated calls are no-ops
func (h *Handler) CreateUser(c *gin.Context) {
	var user models.User
	if !bindJSON(c, &user, false) {
		return
	}
	inserted, id, err := h.svc.Users.EnsureUser(c.Request.Context(), &user)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !inserted {
		c.JSON(http.StatusOK, gin.H{"message": "User already exists", "inserted": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inserted": true, "insertedId": id})
}
