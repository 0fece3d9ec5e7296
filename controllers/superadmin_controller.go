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

	"rentdesk/database"
)

// OrganizationOverview is one row of the super-admin organization console
type OrganizationOverview struct {
	ID                 uint       `json:"id"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	BillingEmail       string     `json:"billing_email"`
	PlanID             uint       `json:"plan_id"`
	PlanName           string     `json:"plan_name"`
	SubscriptionStatus string     `json:"subscription_status"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at"`
	CreatedAt          time.Time  `json:"created_at"`
	PropertyCount      int64      `json:"property_count"`
	UserCount          int64      `json:"user_count"`
}

// GetOrganizations lists all organizations with plan and usage counts
func GetOrganizations(c *gin.Context) {
	var overviews []OrganizationOverview

	err := database.DB.Table("organizations").
		Select(`
			organizations.id,
			organizations.name,
			organizations.slug,
			organizations.billing_email,
			organizations.plan_id,
			plans.name AS plan_name,
			organizations.subscription_status,
			organizations.subscription_ends_at,
			organizations.created_at,
			(SELECT COUNT(*) FROM properties WHERE properties.organization_id = organizations.id AND properties.deleted_at IS NULL) AS property_count,
			(SELECT COUNT(*) FROM users WHERE users.organization_id = organizations.id AND users.deleted_at IS NULL) AS user_count
		`).
		Joins("JOIN plans ON organizations.plan_id = plans.id").
		Where("organizations.deleted_at IS NULL").
		Order("organizations.created_at DESC").
		Find(&overviews).Error

	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve organizations"})
		return
	}

	c.JSON(http.StatusOK, overviews)
}

// SubscriptionUpdateRequest contains the data for changing an organization's
// plan or subscription status
type SubscriptionUpdateRequest struct {
	PlanID             *uint      `json:"plan_id"`
	SubscriptionStatus string     `json:"subscription_status"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at"`
}

// UpdateOrganizationSubscription changes an organization's plan or
// subscription status, with an audit record
func UpdateOrganizationSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
		return
	}

	var req SubscriptionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var org database.Organization
	if err := database.DB.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	oldValue := fmt.Sprintf("plan_id=%d status=%s", org.PlanID, org.SubscriptionStatus)

	updates := map[string]interface{}{}

	if req.PlanID != nil {
		var plan database.Plan
		if err := database.DB.First(&plan, *req.PlanID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Plan not found"})
			return
		}
		updates["plan_id"] = *req.PlanID
	}

	if req.SubscriptionStatus != "" {
		switch req.SubscriptionStatus {
		case database.SubscriptionStatusTrialing, database.SubscriptionStatusActive,
			database.SubscriptionStatusPastDue, database.SubscriptionStatusCancelled:
			updates["subscription_status"] = req.SubscriptionStatus
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription status"})
			return
		}
	}

	if req.SubscriptionEndsAt != nil {
		updates["subscription_ends_at"] = *req.SubscriptionEndsAt
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid updates provided"})
		return
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Model(&org).Updates(updates).Error; err != nil {
		tx.Rollback()
		log.Printf("Error updating subscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
		return
	}

	newValue := fmt.Sprintf("plan_id=%d status=%s", org.PlanID, org.SubscriptionStatus)
	audit := database.Audit{
		UserID:     &userID,
		Action:     "update_subscription",
		EntityType: "organization",
		EntityID:   org.ID,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := tx.Create(&audit).Error; err != nil {
		tx.Rollback()
		log.Printf("Error creating audit record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record audit entry"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription updated successfully"})
}

// PlanRequest contains the data for creating or updating a plan
type PlanRequest struct {
	Name          string   `json:"name" binding:"required"`
	Code          string   `json:"code" binding:"required"`
	MonthlyPrice  float64  `json:"monthly_price" binding:"gte=0"`
	MaxProperties int      `json:"max_properties" binding:"gte=0"`
	MaxUsers      int      `json:"max_users" binding:"gte=0"`
	Features      []string `json:"features"`
	IsActive      *bool    `json:"is_active"`
}

// CreatePlan creates a subscription plan
func CreatePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := database.Plan{
		Name:          req.Name,
		Code:          req.Code,
		MonthlyPrice:  req.MonthlyPrice,
		MaxProperties: req.MaxProperties,
		MaxUsers:      req.MaxUsers,
		Features:      req.Features,
		IsActive:      true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := database.DB.Create(&plan).Error; err != nil {
		log.Printf("Error creating plan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating plan"})
		return
	}

	audit := database.Audit{
		UserID:     &userID,
		Action:     "create_plan",
		EntityType: "plan",
		EntityID:   plan.ID,
		NewValue:   fmt.Sprintf("code=%s price=%.2f", plan.Code, plan.MonthlyPrice),
	}
	if err := database.DB.Create(&audit).Error; err != nil {
		log.Printf("Error creating audit record: %v", err)
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlans lists all plans
func GetPlans(c *gin.Context) {
	var plans []database.Plan
	if err := database.DB.Order("monthly_price ASC").Find(&plans).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// UpdatePlan updates a plan
func UpdatePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	var plan database.Plan
	if err := database.DB.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	oldValue := fmt.Sprintf("code=%s price=%.2f active=%t", plan.Code, plan.MonthlyPrice, plan.IsActive)

	plan.Name = req.Name
	plan.Code = req.Code
	plan.MonthlyPrice = req.MonthlyPrice
	plan.MaxProperties = req.MaxProperties
	plan.MaxUsers = req.MaxUsers
	plan.Features = req.Features
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&plan).Error; err != nil {
		log.Printf("Error updating plan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan"})
		return
	}

	audit := database.Audit{
		UserID:     &userID,
		Action:     "update_plan",
		EntityType: "plan",
		EntityID:   plan.ID,
		OldValue:   oldValue,
		NewValue:   fmt.Sprintf("code=%s price=%.2f active=%t", plan.Code, plan.MonthlyPrice, plan.IsActive),
	}
	if err := database.DB.Create(&audit).Error; err != nil {
		log.Printf("Error creating audit record: %v", err)
	}

	c.JSON(http.StatusOK, plan)
}

// DeletePlan removes a plan no organization is on
func DeletePlan(c *gin.Context) {
	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	var plan database.Plan
	if err := database.DB.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var orgCount int64
	if err := database.DB.Model(&database.Organization{}).Where("plan_id = ?", plan.ID).Count(&orgCount).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if orgCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Plan is in use by organizations"})
		return
	}

	if err := database.DB.Delete(&plan).Error; err != nil {
		log.Printf("Error deleting plan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted successfully"})
}
