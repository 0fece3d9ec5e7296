package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// currentUserID extracts the authenticated user ID set by the auth middleware
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}

	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID in context"})
		return 0, false
	}
	return id, true
}

// currentOrgID extracts the caller's organization ID. Super admins carry no
// organization, so org-scoped endpoints reject them here.
func currentOrgID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("org_id")
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "No organization in token"})
		return 0, false
	}

	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid organization ID in context"})
		return 0, false
	}
	return id, true
}

// currentTenantID extracts the tenant record ID for tenant-portal users
func currentTenantID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("tenant_id")
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tenant in token"})
		return 0, false
	}

	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid tenant ID in context"})
		return 0, false
	}
	return id, true
}
