package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go"
	"gorm.io/gorm"

	"rentdesk/billing"
	"rentdesk/config"
	"rentdesk/database"
)

// PaymentView is a payment row with its derived status. The stored status
// never contains "overdue"; it is computed here, from the one shared rule.
type PaymentView struct {
	database.Payment
	DerivedStatus string `json:"derived_status"`
}

func paymentViews(payments []database.Payment, now time.Time) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, PaymentView{
			Payment:       p,
			DerivedStatus: billing.DeriveStatus(p.Status, p.DueDate, now),
		})
	}
	return views
}

// PaymentRequest contains the data for adding a manual ledger line
type PaymentRequest struct {
	ContractID uint      `json:"contract_id" binding:"required"`
	Type       string    `json:"type" binding:"required,oneof=rent deposit late_fee utility maintenance"`
	Amount     float64   `json:"amount" binding:"required,gt=0"`
	DueDate    time.Time `json:"due_date" binding:"required"`
	Notes      string    `json:"notes"`
}

// CreatePayment adds a manual ledger line (late fee, utility, ...) to a contract
func CreatePayment(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var contract database.Contract
	if err := database.DB.Where("id = ? AND organization_id = ?", req.ContractID, orgID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	payment := database.Payment{
		OrganizationID: orgID,
		ContractID:     contract.ID,
		TenantID:       contract.TenantID,
		Type:           req.Type,
		Status:         database.PaymentStatusPending,
		Amount:         req.Amount,
		DueDate:        req.DueDate,
		Notes:          req.Notes,
	}

	if err := database.DB.Create(&payment).Error; err != nil {
		log.Printf("Error creating payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating payment"})
		return
	}

	c.JSON(http.StatusCreated, paymentViews([]database.Payment{payment}, time.Now())[0])
}

// GetPayments lists payments. Managers and staff see the organization ledger,
// tenant users only their own lines. The status filter understands the
// derived "overdue" value.
func GetPayments(c *gin.Context) {
	now := time.Now()
	role := c.GetString("role")

	var query *gorm.DB

	switch role {
	case database.RoleManager, database.RoleStaff:
		orgID, ok := currentOrgID(c)
		if !ok {
			return
		}
		query = database.DB.Where("organization_id = ?", orgID)
	case database.RoleTenant:
		tenantID, ok := currentTenantID(c)
		if !ok {
			return
		}
		query = database.DB.Where("tenant_id = ?", tenantID)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	if contractID := c.Query("contract_id"); contractID != "" {
		query = query.Where("contract_id = ?", contractID)
	}
	if paymentType := c.Query("type"); paymentType != "" {
		query = query.Where("type = ?", paymentType)
	}
	if month := c.Query("month"); month != "" {
		// month is YYYY-MM; filter on the due date's bucket
		start, err := time.Parse("2006-01", month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month filter, expected YYYY-MM"})
			return
		}
		query = query.Where("due_date >= ? AND due_date < ?", start, start.AddDate(0, 1, 0))
	} else if year := c.Query("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year filter"})
			return
		}
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("due_date >= ? AND due_date < ?", start, start.AddDate(1, 0, 0))
	}

	statusFilter := c.Query("status")
	switch statusFilter {
	case "":
		// no filter
	case database.PaymentStatusOverdue:
		query = query.Where("status = ? AND due_date < ?", database.PaymentStatusPending, now)
	case database.PaymentStatusPending:
		query = query.Where("status = ? AND due_date >= ?", database.PaymentStatusPending, now)
	default:
		query = query.Where("status = ?", statusFilter)
	}

	var payments []database.Payment
	if err := query.Preload("Tenant").Order("due_date DESC").Find(&payments).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payments"})
		return
	}

	views := paymentViews(payments, now)

	lines := make([]billing.PaymentLine, 0, len(payments))
	for _, p := range payments {
		lines = append(lines, billing.PaymentLine{
			Amount:  p.Amount,
			Status:  p.Status,
			Type:    p.Type,
			DueDate: p.DueDate,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": views,
		"summary":  billing.Summarize(lines, now),
	})
}

// GetPaymentByID returns one payment with derived status
func GetPaymentByID(c *gin.Context) {
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	payment, ok := loadScopedPayment(c, uint(paymentID))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, paymentViews([]database.Payment{*payment}, time.Now())[0])
}

// loadScopedPayment fetches a payment the caller is allowed to see
func loadScopedPayment(c *gin.Context, paymentID uint) (*database.Payment, bool) {
	role := c.GetString("role")

	var query *gorm.DB
	switch role {
	case database.RoleManager, database.RoleStaff:
		orgID, ok := currentOrgID(c)
		if !ok {
			return nil, false
		}
		query = database.DB.Where("id = ? AND organization_id = ?", paymentID, orgID)
	case database.RoleTenant:
		tenantID, ok := currentTenantID(c)
		if !ok {
			return nil, false
		}
		query = database.DB.Where("id = ? AND tenant_id = ?", paymentID, tenantID)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return nil, false
	}

	var payment database.Payment
	if err := query.First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return nil, false
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return nil, false
	}

	return &payment, true
}

// RecordPaymentRequest contains the data for marking a payment as paid
type RecordPaymentRequest struct {
	Method   string     `json:"method" binding:"required,oneof=cash bank_transfer card cheque razorpay"`
	PaidDate *time.Time `json:"paid_date"`
	Partial  bool       `json:"partial"`
	Notes    string     `json:"notes"`
}

// RecordPayment marks a pending payment as paid (or partial), stamps a
// receipt number and notifies the tenant's portal user.
func RecordPayment(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var payment database.Payment
	if err := database.DB.Where("id = ? AND organization_id = ?", paymentID, orgID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if payment.Status != database.PaymentStatusPending && payment.Status != database.PaymentStatusPartial {
		c.JSON(http.StatusConflict, gin.H{"error": "Only pending payments can be recorded as paid"})
		return
	}

	paidDate := time.Now()
	if req.PaidDate != nil {
		paidDate = *req.PaidDate
	}

	newStatus := database.PaymentStatusPaid
	if req.Partial {
		newStatus = database.PaymentStatusPartial
	}

	receiptNumber := generateReceiptNumber()

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	updates := map[string]interface{}{
		"status":         newStatus,
		"method":         req.Method,
		"paid_date":      paidDate,
		"receipt_number": receiptNumber,
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if err := tx.Model(&payment).Updates(updates).Error; err != nil {
		tx.Rollback()
		log.Printf("Error recording payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	if err := createReceiptNotification(tx, &payment, receiptNumber); err != nil {
		tx.Rollback()
		log.Printf("Error creating receipt notification: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Payment recorded successfully",
		"receipt_number": receiptNumber,
		"status":         newStatus,
	})
}

// CancelPayment voids a pending ledger line
func CancelPayment(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var payment database.Payment
	if err := database.DB.Where("id = ? AND organization_id = ?", paymentID, orgID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if payment.Status != database.PaymentStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Only pending payments can be cancelled"})
		return
	}

	if err := database.DB.Model(&payment).Update("status", database.PaymentStatusCancelled).Error; err != nil {
		log.Printf("Error cancelling payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment cancelled successfully"})
}

// RefundPayment refunds a paid ledger line
func RefundPayment(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var payment database.Payment
	if err := database.DB.Where("id = ? AND organization_id = ?", paymentID, orgID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if payment.Status != database.PaymentStatusPaid && payment.Status != database.PaymentStatusPartial {
		c.JSON(http.StatusConflict, gin.H{"error": "Only paid payments can be refunded"})
		return
	}

	if err := database.DB.Model(&payment).Update("status", database.PaymentStatusRefunded).Error; err != nil {
		log.Printf("Error refunding payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refund payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment refunded successfully"})
}

// CheckoutPayment creates a Razorpay order for a pending payment so a tenant
// can pay rent online
func CheckoutPayment(c *gin.Context) {
	tenantID, ok := currentTenantID(c)
	if !ok {
		return
	}

	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var payment database.Payment
	if err := database.DB.Where("id = ? AND tenant_id = ?", paymentID, tenantID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found or doesn't belong to you"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if payment.Status != database.PaymentStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment is not pending"})
		return
	}

	client := razorpay.NewClient(config.AppConfig.RazorpayKey, config.AppConfig.RazorpaySecret)

	// Razorpay amounts are in the smallest currency unit
	amountMinor := int64(payment.Amount * 100)

	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": "INR",
		"receipt":  fmt.Sprintf("payment_%d", payment.ID),
		"notes": map[string]interface{}{
			"tenant_id":    tenantID,
			"payment_id":   payment.ID,
			"payment_type": payment.Type,
		},
	}

	gatewayOrder, err := client.Order.Create(data, nil)
	if err != nil {
		log.Printf("Razorpay order creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating payment order"})
		return
	}

	gatewayOrderID, _ := gatewayOrder["id"].(string)
	paymentDetails := fmt.Sprintf(`{"razorpay_order_id": "%s"}`, gatewayOrderID)

	if err := database.DB.Model(&payment).Updates(map[string]interface{}{
		"transaction_id":  gatewayOrderID,
		"payment_details": paymentDetails,
	}).Error; err != nil {
		log.Printf("Database error updating payment: %v", err)
		// Continue anyway, the verification step updates it again
	}

	c.JSON(http.StatusOK, gin.H{
		"razorpay_order_id": gatewayOrderID,
		"amount":            payment.Amount,
		"currency":          "INR",
		"key":               config.AppConfig.RazorpayKey,
		"payment_id":        payment.ID,
	})
}

// PaymentVerificationRequest contains the gateway callback data
type PaymentVerificationRequest struct {
	PaymentID        uint   `json:"payment_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment checks the Razorpay signature and marks the payment as paid
func VerifyPayment(c *gin.Context) {
	tenantID, ok := currentTenantID(c)
	if !ok {
		return
	}

	var req PaymentVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	data := req.GatewayOrderID + "|" + req.GatewayPaymentID
	if !verifyGatewaySignature(data, req.Signature, config.AppConfig.RazorpaySecret) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
		return
	}

	var payment database.Payment
	if err := database.DB.Where("id = ? AND tenant_id = ?", req.PaymentID, tenantID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found or doesn't belong to you"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if payment.Status != database.PaymentStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment is not pending"})
		return
	}

	receiptNumber := generateReceiptNumber()
	paymentDetails := fmt.Sprintf(`{"razorpay_order_id": "%s", "razorpay_payment_id": "%s"}`,
		req.GatewayOrderID, req.GatewayPaymentID)

	tx := database.DB.Begin()
	if tx.Error != nil {
		log.Printf("Transaction error: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := tx.Model(&payment).Updates(map[string]interface{}{
		"status":          database.PaymentStatusPaid,
		"method":          "razorpay",
		"paid_date":       time.Now(),
		"transaction_id":  req.GatewayPaymentID,
		"payment_details": paymentDetails,
		"receipt_number":  receiptNumber,
	}).Error; err != nil {
		tx.Rollback()
		log.Printf("Error updating payment record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating payment record"})
		return
	}

	if err := createReceiptNotification(tx, &payment, receiptNumber); err != nil {
		tx.Rollback()
		log.Printf("Error creating receipt notification: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating notification"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Transaction commit error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Payment verified successfully",
		"receipt_number": receiptNumber,
	})
}

// createReceiptNotification notifies the tenant's portal user that a receipt
// is available for a paid ledger line
func createReceiptNotification(tx *gorm.DB, payment *database.Payment, receiptNumber string) error {
	var tenantUser database.User
	if err := tx.Where("tenant_id = ?", payment.TenantID).First(&tenantUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No portal user; nothing to notify
			return nil
		}
		return err
	}

	relatedID := payment.ID
	notification := database.Notification{
		UserID:      tenantUser.ID,
		Title:       "Payment Receipt",
		Message:     fmt.Sprintf("Receipt %s is available for your %s payment.", receiptNumber, payment.Type),
		Type:        "payment",
		RelatedID:   &relatedID,
		RelatedType: "payment",
	}

	return tx.Create(&notification).Error
}

// generateReceiptNumber produces a unique receipt reference
func generateReceiptNumber() string {
	timestamp := time.Now().Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "RCP-" + timestamp + "-" + suffix
}

func verifyGatewaySignature(data, signature, secret string) bool {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
