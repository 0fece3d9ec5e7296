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

// UnitRequest contains the data for creating or updating a unit
type UnitRequest struct {
	Type      string   `json:"type" binding:"required,oneof=building house commercial"`
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zip_code"`
	Floors    int      `json:"floors"`
	SizeSqm   float64  `json:"size_sqm"`
	Amenities []string `json:"amenities"`
	Notes     string   `json:"notes"`
}

// CreateUnit creates a new unit for the caller's organization
func CreateUnit(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	var req UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit := database.Unit{
		OrganizationID: orgID,
		Type:           req.Type,
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Floors:         req.Floors,
		SizeSqm:        req.SizeSqm,
		Amenities:      req.Amenities,
		Notes:          req.Notes,
	}

	if err := database.DB.Create(&unit).Error; err != nil {
		log.Printf("Error creating unit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating unit"})
		return
	}

	c.JSON(http.StatusCreated, unit)
}

// GetUnits lists the caller organization's units
func GetUnits(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	var units []database.Unit
	query := database.DB.Where("organization_id = ?", orgID)

	if unitType := c.Query("type"); unitType != "" {
		query = query.Where("type = ?", unitType)
	}

	if err := query.Order("created_at DESC").Find(&units).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve units"})
		return
	}

	c.JSON(http.StatusOK, units)
}

// GetUnitByID returns one unit with its properties
func GetUnitByID(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	unitID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit ID"})
		return
	}

	var unit database.Unit
	if err := database.DB.Where("id = ? AND organization_id = ?", unitID, orgID).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var properties []database.Property
	if err := database.DB.Where("unit_id = ?", unit.ID).Order("number ASC").Find(&properties).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve unit properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unit":       unit,
		"properties": properties,
	})
}

// UpdateUnit updates a unit
func UpdateUnit(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	unitID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit ID"})
		return
	}

	var unit database.Unit
	if err := database.DB.Where("id = ? AND organization_id = ?", unitID, orgID).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var req UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit.Type = req.Type
	unit.Name = req.Name
	unit.Address = req.Address
	unit.City = req.City
	unit.State = req.State
	unit.ZipCode = req.ZipCode
	unit.Floors = req.Floors
	unit.SizeSqm = req.SizeSqm
	unit.Amenities = req.Amenities
	unit.Notes = req.Notes

	if err := database.DB.Save(&unit).Error; err != nil {
		log.Printf("Error updating unit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update unit"})
		return
	}

	c.JSON(http.StatusOK, unit)
}

// DeleteUnit deletes a unit that has no properties left
func DeleteUnit(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	unitID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit ID"})
		return
	}

	var unit database.Unit
	if err := database.DB.Where("id = ? AND organization_id = ?", unitID, orgID).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unit not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var propertyCount int64
	if err := database.DB.Model(&database.Property{}).Where("unit_id = ?", unit.ID).Count(&propertyCount).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if propertyCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Unit still has properties"})
		return
	}

	if err := database.DB.Delete(&unit).Error; err != nil {
		log.Printf("Error deleting unit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete unit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unit deleted successfully"})
}
