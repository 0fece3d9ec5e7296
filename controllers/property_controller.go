package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rentdesk/database"
)

// PropertyRequest contains the data for creating or updating a property
type PropertyRequest struct {
	UnitID      uint    `json:"unit_id" binding:"required"`
	Number      string  `json:"number" binding:"required"`
	Floor       int     `json:"floor"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	SizeSqm     float64 `json:"size_sqm"`
	MonthlyRent float64 `json:"monthly_rent" binding:"required,gt=0"`
	Description string  `json:"description"`
}

// CreateProperty creates a new property inside one of the organization's units
func CreateProperty(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var unit database.Unit
	if err := database.DB.Where("id = ? AND organization_id = ?", req.UnitID, orgID).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	// Houses and commercial shells hold exactly one property
	if unit.Type != database.UnitTypeBuilding {
		var existing int64
		if err := database.DB.Model(&database.Property{}).Where("unit_id = ?", unit.ID).Count(&existing).Error; err != nil {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "This unit type can only contain one property"})
			return
		}
	}

	// Plan limit check
	var org database.Organization
	if err := database.DB.Preload("Plan").First(&org, orgID).Error; err == nil && org.Plan.MaxProperties > 0 {
		var total int64
		if err := database.DB.Model(&database.Property{}).Where("organization_id = ?", orgID).Count(&total).Error; err != nil {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		if total >= int64(org.Plan.MaxProperties) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Property limit for your plan reached"})
			return
		}
	}

	property := database.Property{
		OrganizationID: orgID,
		UnitID:         req.UnitID,
		Number:         req.Number,
		Floor:          req.Floor,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		SizeSqm:        req.SizeSqm,
		MonthlyRent:    req.MonthlyRent,
		Status:         database.PropertyStatusAvailable,
		Description:    req.Description,
	}

	if err := database.DB.Create(&property).Error; err != nil {
		log.Printf("Error creating property: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating property"})
		return
	}

	c.JSON(http.StatusCreated, property)
}

// GetProperties lists the organization's properties, optionally filtered by
// status or unit
func GetProperties(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	query := database.DB.Preload("Unit").Where("organization_id = ?", orgID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if unitID := c.Query("unit_id"); unitID != "" {
		query = query.Where("unit_id = ?", unitID)
	}

	var properties []database.Property
	if err := query.Order("created_at DESC").Find(&properties).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

// GetPropertyByID returns one property with its active contract, if any
func GetPropertyByID(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	propertyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	var property database.Property
	if err := database.DB.Preload("Unit").
		Where("id = ? AND organization_id = ?", propertyID, orgID).
		First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var activeContract database.Contract
	contractErr := database.DB.Preload("Tenant").
		Where("property_id = ? AND status = ?", property.ID, database.ContractStatusActive).
		First(&activeContract).Error

	response := gin.H{"property": property}
	if contractErr == nil {
		response["active_contract"] = activeContract
	}

	c.JSON(http.StatusOK, response)
}

// PropertyUpdateRequest contains updatable property fields
type PropertyUpdateRequest struct {
	Number      string   `json:"number"`
	Floor       *int     `json:"floor"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	SizeSqm     *float64 `json:"size_sqm"`
	MonthlyRent *float64 `json:"monthly_rent"`
	Status      string   `json:"status"`
	Description *string  `json:"description"`
}

// UpdateProperty updates a property. Status cannot be moved away from rented
// here; that is what contract termination/expiry is for.
func UpdateProperty(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	propertyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	var property database.Property
	if err := database.DB.Where("id = ? AND organization_id = ?", propertyID, orgID).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var req PropertyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Number != "" {
		updates["number"] = req.Number
	}
	if req.Floor != nil {
		updates["floor"] = *req.Floor
	}
	if req.Bedrooms != nil {
		updates["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		updates["bathrooms"] = *req.Bathrooms
	}
	if req.SizeSqm != nil {
		updates["size_sqm"] = *req.SizeSqm
	}
	if req.MonthlyRent != nil {
		updates["monthly_rent"] = *req.MonthlyRent
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.Status != "" {
		switch req.Status {
		case database.PropertyStatusAvailable, database.PropertyStatusReserved, database.PropertyStatusMaintenance:
			if property.Status == database.PropertyStatusRented {
				c.JSON(http.StatusConflict, gin.H{"error": "Rented properties are released by ending their contract"})
				return
			}
			updates["status"] = req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property status"})
			return
		}
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid updates provided"})
		return
	}

	if err := database.DB.Model(&property).Updates(updates).Error; err != nil {
		log.Printf("Error updating property: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property updated successfully"})
}

// DeleteProperty deletes a property with no contracts
func DeleteProperty(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	propertyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	var property database.Property
	if err := database.DB.Where("id = ? AND organization_id = ?", propertyID, orgID).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var contractCount int64
	if err := database.DB.Model(&database.Contract{}).Where("property_id = ?", property.ID).Count(&contractCount).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if contractCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Property has contracts and cannot be deleted"})
		return
	}

	if err := database.DB.Delete(&property).Error; err != nil {
		log.Printf("Error deleting property: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property deleted successfully"})
}
