package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rentdesk/billing"
	"rentdesk/database"
)

// ContractRequest contains the data for creating or updating a draft contract
type ContractRequest struct {
	PropertyID      uint      `json:"property_id" binding:"required"`
	TenantID        uint      `json:"tenant_id" binding:"required"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`
	MonthlyRent     float64   `json:"monthly_rent" binding:"required,gt=0"`
	SecurityDeposit float64   `json:"security_deposit" binding:"gte=0"`
	Terms           []string  `json:"terms"`
}

// CreateContract creates a draft contract binding a property to a tenant
func CreateContract(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.EndDate.After(req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
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

	var tenant database.Tenant
	if err := database.DB.Where("id = ? AND organization_id = ?", req.TenantID, orgID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if tenant.Status == database.TenantStatusRejected || tenant.Status == database.TenantStatusFormer {
		c.JSON(http.StatusConflict, gin.H{"error": "Tenant is not eligible for a new contract"})
		return
	}

	contract := database.Contract{
		OrganizationID:  orgID,
		PropertyID:      req.PropertyID,
		TenantID:        req.TenantID,
		Status:          database.ContractStatusDraft,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		Terms:           req.Terms,
	}

	if err := database.DB.Create(&contract).Error; err != nil {
		log.Printf("Error creating contract: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating contract"})
		return
	}

	c.JSON(http.StatusCreated, contract)
}

// GetContracts lists the organization's contracts
func GetContracts(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	query := database.DB.Preload("Property").Preload("Tenant").
		Where("organization_id = ?", orgID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if propertyID := c.Query("property_id"); propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	if tenantID := c.Query("tenant_id"); tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	var contracts []database.Contract
	if err := query.Order("created_at DESC").Find(&contracts).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contracts"})
		return
	}

	c.JSON(http.StatusOK, contracts)
}

// GetContractByID returns one contract with its payment ledger
func GetContractByID(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	contractID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract ID"})
		return
	}

	var contract database.Contract
	if err := database.DB.Preload("Property").Preload("Tenant").
		Where("id = ? AND organization_id = ?", contractID, orgID).
		First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var payments []database.Payment
	if err := database.DB.Where("contract_id = ?", contract.ID).
		Order("due_date ASC").
		Find(&payments).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contract payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contract": contract,
		"payments": paymentViews(payments, time.Now()),
	})
}

// UpdateContract updates a contract while it is still a draft
func UpdateContract(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	contractID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract ID"})
		return
	}

	var contract database.Contract
	if err := database.DB.Where("id = ? AND organization_id = ?", contractID, orgID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if contract.Status != database.ContractStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "Only draft contracts can be edited"})
		return
	}

	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.EndDate.After(req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return
	}

	contract.PropertyID = req.PropertyID
	contract.TenantID = req.TenantID
	contract.StartDate = req.StartDate
	contract.EndDate = req.EndDate
	contract.MonthlyRent = req.MonthlyRent
	contract.SecurityDeposit = req.SecurityDeposit
	contract.Terms = req.Terms

	if err := database.DB.Save(&contract).Error; err != nil {
		log.Printf("Error updating contract: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contract"})
		return
	}

	c.JSON(http.StatusOK, contract)
}

// ActivateContract performs the "quick rent" flow: it generates the initial
// payment ledger for a draft contract and flips the property, contract and
// tenant statuses. Everything runs in one transaction, so a failure anywhere
// leaves no partial ledger behind.
func ActivateContract(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	contractID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract ID"})
		return
	}

	var contract database.Contract
	if err := database.DB.Where("id = ? AND organization_id = ?", contractID, orgID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if contract.Status != database.ContractStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "Only draft contracts can be activated"})
		return
	}

	var property database.Property
	if err := database.DB.First(&property, contract.PropertyID).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if property.Status != database.PropertyStatusAvailable && property.Status != database.PropertyStatusReserved {
		c.JSON(http.StatusConflict, gin.H{"error": "Property is not available"})
		return
	}

	// At most one active contract per property
	var activeCount int64
	if err := database.DB.Model(&database.Contract{}).
		Where("property_id = ? AND status = ?", contract.PropertyID, database.ContractStatusActive).
		Count(&activeCount).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if activeCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Property already has an active contract"})
		return
	}

	var tenant database.Tenant
	if err := database.DB.First(&tenant, contract.TenantID).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	now := time.Now()
	schedule := billing.GenerateSchedule(billing.ScheduleContract{
		MonthlyRent:     contract.MonthlyRent,
		SecurityDeposit: contract.SecurityDeposit,
		StartDate:       contract.StartDate,
		EndDate:         contract.EndDate,
	}, now)

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	payments := make([]database.Payment, 0, len(schedule))
	for _, line := range schedule {
		payments = append(payments, database.Payment{
			OrganizationID: orgID,
			ContractID:     contract.ID,
			TenantID:       contract.TenantID,
			Type:           line.Type,
			Status:         database.PaymentStatusPending,
			Amount:         line.Amount,
			DueDate:        line.DueDate,
			PeriodStart:    line.PeriodStart,
			PeriodEnd:      line.PeriodEnd,
		})
	}

	if len(payments) > 0 {
		if err := tx.Create(&payments).Error; err != nil {
			tx.Rollback()
			log.Printf("Error creating payment ledger: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating payment ledger"})
			return
		}
	}

	contractUpdates := map[string]interface{}{
		"status": database.ContractStatusActive,
	}
	if contract.SignedDate == nil {
		contractUpdates["signed_date"] = now
	}

	if err := tx.Model(&contract).Updates(contractUpdates).Error; err != nil {
		tx.Rollback()
		log.Printf("Error activating contract: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error activating contract"})
		return
	}

	if err := tx.Model(&property).Update("status", database.PropertyStatusRented).Error; err != nil {
		tx.Rollback()
		log.Printf("Error updating property status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating property status"})
		return
	}

	if tenant.Status != database.TenantStatusActive {
		if err := tx.Model(&tenant).Update("status", database.TenantStatusActive).Error; err != nil {
			tx.Rollback()
			log.Printf("Error updating tenant status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating tenant status"})
			return
		}
	}

	// Notify the tenant's portal user, if one exists
	var tenantUser database.User
	if err := tx.Where("tenant_id = ?", tenant.ID).First(&tenantUser).Error; err == nil {
		relatedID := contract.ID
		notification := database.Notification{
			UserID:      tenantUser.ID,
			Title:       "Lease Activated",
			Message:     fmt.Sprintf("Your lease is active. %d payment(s) were added to your ledger.", len(payments)),
			Type:        "contract",
			RelatedID:   &relatedID,
			RelatedType: "contract",
		}
		if err := tx.Create(&notification).Error; err != nil {
			tx.Rollback()
			log.Printf("Error creating notification: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating notification"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Contract activated successfully",
		"payments_generated": len(payments),
		"payments":           paymentViews(payments, now),
	})
}

// TerminateContract ends an active contract early and releases the property
func TerminateContract(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	contractID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract ID"})
		return
	}

	var contract database.Contract
	if err := database.DB.Where("id = ? AND organization_id = ?", contractID, orgID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if contract.Status != database.ContractStatusActive {
		c.JSON(http.StatusConflict, gin.H{"error": "Only active contracts can be terminated"})
		return
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	now := time.Now()
	if err := tx.Model(&contract).Updates(map[string]interface{}{
		"status":          database.ContractStatusTerminated,
		"terminated_date": now,
	}).Error; err != nil {
		tx.Rollback()
		log.Printf("Error terminating contract: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to terminate contract"})
		return
	}

	if err := tx.Model(&database.Property{}).
		Where("id = ?", contract.PropertyID).
		Update("status", database.PropertyStatusAvailable).Error; err != nil {
		tx.Rollback()
		log.Printf("Error releasing property: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release property"})
		return
	}

	// Pending rent lines after the termination date are void
	if err := tx.Model(&database.Payment{}).
		Where("contract_id = ? AND status = ? AND due_date > ?",
			contract.ID, database.PaymentStatusPending, now).
		Update("status", database.PaymentStatusCancelled).Error; err != nil {
		tx.Rollback()
		log.Printf("Error cancelling future payments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel future payments"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contract terminated successfully"})
}

// ExpireContractsSweep marks active contracts whose end date has passed as
// expired, releases their properties and marks tenants without any remaining
// active contract as former.
func ExpireContractsSweep(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	now := time.Now()

	var contracts []database.Contract
	if err := database.DB.
		Where("organization_id = ? AND status = ?", orgID, database.ContractStatusActive).
		Find(&contracts).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	expired := 0
	for _, contract := range contracts {
		if !billing.ContractExpired(contract.EndDate, now) {
			continue
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			log.Printf("Transaction error: %v", tx.Error)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		if err := tx.Model(&database.Contract{}).
			Where("id = ?", contract.ID).
			Update("status", database.ContractStatusExpired).Error; err != nil {
			tx.Rollback()
			log.Printf("Error expiring contract %d: %v", contract.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to expire contract"})
			return
		}

		if err := tx.Model(&database.Property{}).
			Where("id = ?", contract.PropertyID).
			Update("status", database.PropertyStatusAvailable).Error; err != nil {
			tx.Rollback()
			log.Printf("Error releasing property %d: %v", contract.PropertyID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release property"})
			return
		}

		var remaining int64
		if err := tx.Model(&database.Contract{}).
			Where("tenant_id = ? AND status = ? AND id <> ?",
				contract.TenantID, database.ContractStatusActive, contract.ID).
			Count(&remaining).Error; err != nil {
			tx.Rollback()
			log.Printf("Error counting tenant contracts: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		if remaining == 0 {
			if err := tx.Model(&database.Tenant{}).
				Where("id = ?", contract.TenantID).
				Update("status", database.TenantStatusFormer).Error; err != nil {
				tx.Rollback()
				log.Printf("Error updating tenant %d: %v", contract.TenantID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tenant"})
				return
			}
		}

		if err := tx.Commit().Error; err != nil {
			log.Printf("Transaction commit error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		expired++
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expiry sweep completed",
		"expired": expired,
	})
}
