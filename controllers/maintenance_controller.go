package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rentdesk/database"
)

// MaintenanceRequestInput contains the data for creating a maintenance request
type MaintenanceRequestInput struct {
	PropertyID    uint    `json:"property_id" binding:"required"`
	TenantID      *uint   `json:"tenant_id"`
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	Category      string  `json:"category" binding:"required"`
	Priority      string  `json:"priority" binding:"required,oneof=low medium high emergency"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// CreateMaintenanceRequest opens a maintenance request for a property
func CreateMaintenanceRequest(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	var req MaintenanceRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var property database.Property
	if err := database.DB.Where("id = ? AND organization_id = ?", req.PropertyID, orgID).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	request := database.MaintenanceRequest{
		OrganizationID: orgID,
		PropertyID:     req.PropertyID,
		TenantID:       req.TenantID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Priority:       req.Priority,
		Status:         database.MaintenanceStatusOpen,
		EstimatedCost:  req.EstimatedCost,
	}

	if err := database.DB.Create(&request).Error; err != nil {
		log.Printf("Error creating maintenance request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating maintenance request"})
		return
	}

	c.JSON(http.StatusCreated, request)
}

// GetMaintenanceRequests lists the organization's maintenance requests
func GetMaintenanceRequests(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	query := database.DB.Preload("Property").Preload("Tenant").
		Where("organization_id = ?", orgID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if propertyID := c.Query("property_id"); propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}

	var requests []database.MaintenanceRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve maintenance requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// GetMaintenanceRequestByID returns one maintenance request
func GetMaintenanceRequestByID(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var request database.MaintenanceRequest
	if err := database.DB.Preload("Property").Preload("Tenant").Preload("AssignedTo").
		Where("id = ? AND organization_id = ?", requestID, orgID).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Maintenance request not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, request)
}

// MaintenanceUpdateRequest contains status/assignment/cost updates
type MaintenanceUpdateRequest struct {
	Status        string   `json:"status"`
	AssignedToID  *uint    `json:"assigned_to_id"`
	Priority      string   `json:"priority"`
	EstimatedCost *float64 `json:"estimated_cost"`
	ActualCost    *float64 `json:"actual_cost"`
}

// Allowed maintenance status transitions
var maintenanceTransitions = map[string][]string{
	database.MaintenanceStatusOpen:       {database.MaintenanceStatusAssigned, database.MaintenanceStatusCancelled},
	database.MaintenanceStatusAssigned:   {database.MaintenanceStatusInProgress, database.MaintenanceStatusCancelled},
	database.MaintenanceStatusInProgress: {database.MaintenanceStatusCompleted, database.MaintenanceStatusCancelled},
}

// UpdateMaintenanceRequest updates a maintenance request's status, assignee
// or cost fields
func UpdateMaintenanceRequest(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var request database.MaintenanceRequest
	if err := database.DB.Where("id = ? AND organization_id = ?", requestID, orgID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Maintenance request not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var req MaintenanceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}

	if req.Status != "" && req.Status != request.Status {
		allowed := false
		for _, next := range maintenanceTransitions[request.Status] {
			if next == req.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition"})
			return
		}
		updates["status"] = req.Status
		if req.Status == database.MaintenanceStatusCompleted {
			updates["completed_at"] = time.Now()
		}
	}

	if req.AssignedToID != nil {
		var assignee database.User
		if err := database.DB.
			Where("id = ? AND organization_id = ? AND role IN ?", *req.AssignedToID, orgID,
				[]string{database.RoleManager, database.RoleStaff}).
			First(&assignee).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee not found in organization"})
			return
		}
		updates["assigned_to_id"] = *req.AssignedToID
		if request.Status == database.MaintenanceStatusOpen && req.Status == "" {
			updates["status"] = database.MaintenanceStatusAssigned
		}
	}

	if req.Priority != "" {
		updates["priority"] = req.Priority
	}
	if req.EstimatedCost != nil {
		updates["estimated_cost"] = *req.EstimatedCost
	}
	if req.ActualCost != nil {
		updates["actual_cost"] = *req.ActualCost
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid updates provided"})
		return
	}

	if err := database.DB.Model(&request).Updates(updates).Error; err != nil {
		log.Printf("Error updating maintenance request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update maintenance request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Maintenance request updated successfully"})
}

// DeleteMaintenanceRequest soft-deletes a finished maintenance request.
// Requests still being worked on must be cancelled or completed first.
func DeleteMaintenanceRequest(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var request database.MaintenanceRequest
	if err := database.DB.Where("id = ? AND organization_id = ?", requestID, orgID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Maintenance request not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if request.Status != database.MaintenanceStatusCompleted && request.Status != database.MaintenanceStatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a maintenance request that is still in progress"})
		return
	}

	if err := database.DB.Delete(&request).Error; err != nil {
		log.Printf("Error deleting maintenance request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete maintenance request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Maintenance request deleted successfully"})
}
