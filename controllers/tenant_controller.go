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

// TenantRequest contains the data for creating or updating a tenant
type TenantRequest struct {
	FirstName        string                    `json:"first_name" binding:"required"`
	LastName         string                    `json:"last_name" binding:"required"`
	Email            string                    `json:"email" binding:"required,email"`
	Phone            string                    `json:"phone"`
	DateOfBirth      *time.Time                `json:"date_of_birth"`
	Employment       database.Employment       `json:"employment"`
	EmergencyContact database.EmergencyContact `json:"emergency_contact"`
	Notes            string                    `json:"notes"`
}

// CreateTenant registers a new tenant application (status pending)
func CreateTenant(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenant := database.Tenant{
		OrganizationID:   orgID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		DateOfBirth:      req.DateOfBirth,
		Status:           database.TenantStatusPending,
		Employment:       req.Employment,
		EmergencyContact: req.EmergencyContact,
		Notes:            req.Notes,
	}

	if err := database.DB.Create(&tenant).Error; err != nil {
		log.Printf("Error creating tenant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating tenant"})
		return
	}

	c.JSON(http.StatusCreated, tenant)
}

// GetTenants lists the organization's tenants, optionally filtered by status
func GetTenants(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	query := database.DB.Where("organization_id = ?", orgID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tenants []database.Tenant
	if err := query.Order("created_at DESC").Find(&tenants).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tenants"})
		return
	}

	c.JSON(http.StatusOK, tenants)
}

// GetTenantByID returns one tenant with their contracts
func GetTenantByID(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	tenantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID"})
		return
	}

	var tenant database.Tenant
	if err := database.DB.Where("id = ? AND organization_id = ?", tenantID, orgID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var contracts []database.Contract
	if err := database.DB.Preload("Property").
		Where("tenant_id = ?", tenant.ID).
		Order("start_date DESC").
		Find(&contracts).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tenant contracts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenant":    tenant,
		"contracts": contracts,
	})
}

// UpdateTenant updates a tenant's details
func UpdateTenant(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	tenantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID"})
		return
	}

	var tenant database.Tenant
	if err := database.DB.Where("id = ? AND organization_id = ?", tenantID, orgID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenant.FirstName = req.FirstName
	tenant.LastName = req.LastName
	tenant.Email = req.Email
	tenant.Phone = req.Phone
	tenant.DateOfBirth = req.DateOfBirth
	tenant.Employment = req.Employment
	tenant.EmergencyContact = req.EmergencyContact
	tenant.Notes = req.Notes

	if err := database.DB.Save(&tenant).Error; err != nil {
		log.Printf("Error updating tenant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tenant"})
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// ApproveTenant moves a pending tenant application to approved
func ApproveTenant(c *gin.Context) {
	transitionTenant(c, database.TenantStatusApproved, "Tenant approved")
}

// RejectTenant moves a pending tenant application to rejected
func RejectTenant(c *gin.Context) {
	transitionTenant(c, database.TenantStatusRejected, "Tenant rejected")
}

func transitionTenant(c *gin.Context, newStatus, message string) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	tenantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID"})
		return
	}

	var tenant database.Tenant
	if err := database.DB.Where("id = ? AND organization_id = ?", tenantID, orgID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if tenant.Status != database.TenantStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Only pending applications can be approved or rejected"})
		return
	}

	if err := database.DB.Model(&tenant).Update("status", newStatus).Error; err != nil {
		log.Printf("Error updating tenant status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tenant status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// DeleteTenant deletes a tenant with no contracts
func DeleteTenant(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	tenantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID"})
		return
	}

	var tenant database.Tenant
	if err := database.DB.Where("id = ? AND organization_id = ?", tenantID, orgID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var contractCount int64
	if err := database.DB.Model(&database.Contract{}).Where("tenant_id = ?", tenant.ID).Count(&contractCount).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if contractCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Tenant has contracts and cannot be deleted"})
		return
	}

	if err := database.DB.Delete(&tenant).Error; err != nil {
		log.Printf("Error deleting tenant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tenant"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tenant deleted successfully"})
}
