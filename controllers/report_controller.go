package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rentdesk/billing"
	"rentdesk/config"
	"rentdesk/database"
)

// GetDashboard returns the organization's KPI snapshot
func GetDashboard(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	now := time.Now()

	var totalProperties, rentedProperties int64
	if err := database.DB.Model(&database.Property{}).
		Where("organization_id = ?", orgID).Count(&totalProperties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count properties"})
		return
	}
	if err := database.DB.Model(&database.Property{}).
		Where("organization_id = ? AND status = ?", orgID, database.PropertyStatusRented).
		Count(&rentedProperties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count rented properties"})
		return
	}

	var activeTenants int64
	if err := database.DB.Model(&database.Tenant{}).
		Where("organization_id = ? AND status = ?", orgID, database.TenantStatusActive).
		Count(&activeTenants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tenants"})
		return
	}

	var activeContracts int64
	if err := database.DB.Model(&database.Contract{}).
		Where("organization_id = ? AND status = ?", orgID, database.ContractStatusActive).
		Count(&activeContracts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count contracts"})
		return
	}

	var openMaintenance int64
	if err := database.DB.Model(&database.MaintenanceRequest{}).
		Where("organization_id = ? AND status IN ?", orgID,
			[]string{database.MaintenanceStatusOpen, database.MaintenanceStatusAssigned, database.MaintenanceStatusInProgress}).
		Count(&openMaintenance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count maintenance requests"})
		return
	}

	var lines []billing.PaymentLine
	if err := database.DB.Model(&database.Payment{}).
		Select("amount, status, type, due_date").
		Where("organization_id = ?", orgID).
		Find(&lines).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"total_properties":  totalProperties,
			"rented_properties": rentedProperties,
			"occupancy_rate":    billing.OccupancyRate(rentedProperties, totalProperties),
			"active_tenants":    activeTenants,
			"active_contracts":  activeContracts,
			"open_maintenance":  openMaintenance,
		},
		"payments": billing.Summarize(lines, now),
	})
}

// MonthlyRevenue is one row of the revenue report
type MonthlyRevenue struct {
	Month     string  `json:"month"`
	Collected float64 `json:"collected"`
	Pending   float64 `json:"pending"`
}

// GetRevenueReport returns the per-month collected/pending totals for a year.
// This goes through the raw SQL reporting handle rather than GORM.
func GetRevenueReport(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	year := time.Now().Year()
	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = parsed
	}

	// Month-bucket expression differs between drivers
	monthExpr := "to_char(due_date, 'YYYY-MM')"
	placeholder := func(i int) string { return "$" + strconv.Itoa(i) }
	if config.AppConfig.DBDriver != "postgres" {
		monthExpr = "strftime('%Y-%m', due_date)"
		placeholder = func(int) string { return "?" }
	}

	query := `
		SELECT ` + monthExpr + ` AS month,
		       COALESCE(SUM(CASE WHEN status IN ('paid', 'partial') THEN amount ELSE 0 END), 0) AS collected,
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0) AS pending
		FROM payments
		WHERE organization_id = ` + placeholder(1) + `
		  AND deleted_at IS NULL
		  AND due_date >= ` + placeholder(2) + ` AND due_date < ` + placeholder(3) + `
		GROUP BY month
		ORDER BY month ASC`

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := database.ReportDB.Query(query, orgID, start, start.AddDate(1, 0, 0))
	if err != nil {
		log.Printf("Revenue report query error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue report"})
		return
	}
	defer rows.Close()

	var report []MonthlyRevenue
	for rows.Next() {
		var row MonthlyRevenue
		if err := rows.Scan(&row.Month, &row.Collected, &row.Pending); err != nil {
			log.Printf("Revenue report scan error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read revenue report"})
			return
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Revenue report rows error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read revenue report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":   year,
		"months": report,
	})
}

// GetOverduePayments lists the organization's currently overdue ledger lines
func GetOverduePayments(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	now := time.Now()

	var payments []database.Payment
	if err := database.DB.Preload("Tenant").Preload("Contract").
		Where("organization_id = ? AND status = ? AND due_date < ?",
			orgID, database.PaymentStatusPending, now).
		Order("due_date ASC").
		Find(&payments).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve overdue payments"})
		return
	}

	c.JSON(http.StatusOK, paymentViews(payments, now))
}
