package database

import (
	"time"

	"gorm.io/gorm"
)

// Organization is the multi-tenant root. Every domain record belongs to
// exactly one organization; super admins operate across all of them.
type Organization struct {
	gorm.Model
	Name               string     `json:"name"`
	Slug               string     `json:"slug" gorm:"uniqueIndex"`
	BillingEmail       string     `json:"billing_email"`
	Phone              string     `json:"phone"`
	PlanID             uint       `json:"plan_id"`
	SubscriptionStatus string     `json:"subscription_status"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at"`
	Plan               Plan       `gorm:"foreignKey:PlanID" json:"plan"`
}

// Plan represents a subscription plan organizations can be placed on
type Plan struct {
	gorm.Model
	Name          string   `json:"name"`
	Code          string   `json:"code" gorm:"uniqueIndex"`
	MonthlyPrice  float64  `json:"monthly_price"`
	MaxProperties int      `json:"max_properties"`
	MaxUsers      int      `json:"max_users"`
	Features      []string `json:"features" gorm:"serializer:json"`
	IsActive      bool     `json:"is_active"`
}

// User represents a user in the system
type User struct {
	gorm.Model
	Name           string        `json:"name"`
	Email          string        `json:"email" gorm:"uniqueIndex"`
	PasswordHash   string        `json:"-"`
	Role           string        `json:"role"`
	OrganizationID *uint         `json:"organization_id"`
	TenantID       *uint         `json:"tenant_id"`
	Phone          string        `json:"phone"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// Unit is a building, house or commercial shell containing rentable properties
type Unit struct {
	gorm.Model
	OrganizationID uint     `json:"organization_id" gorm:"index"`
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	Floors         int      `json:"floors"`
	SizeSqm        float64  `json:"size_sqm"`
	Amenities      []string `json:"amenities" gorm:"serializer:json"`
	Notes          string   `json:"notes"`
}

// Property is an individually rentable space inside a unit
type Property struct {
	gorm.Model
	OrganizationID uint    `json:"organization_id" gorm:"index"`
	UnitID         uint    `json:"unit_id"`
	Number         string  `json:"number"`
	Floor          int     `json:"floor"`
	Bedrooms       int     `json:"bedrooms"`
	Bathrooms      int     `json:"bathrooms"`
	SizeSqm        float64 `json:"size_sqm"`
	MonthlyRent    float64 `json:"monthly_rent"`
	Status         string  `json:"status"`
	Description    string  `json:"description"`
	Unit           Unit    `gorm:"foreignKey:UnitID" json:"unit"`
}

// Employment holds a tenant's employment details
type Employment struct {
	Employer      string  `json:"employer"`
	Position      string  `json:"position"`
	MonthlyIncome float64 `json:"monthly_income"`
	Phone         string  `json:"phone"`
}

// EmergencyContact holds a tenant's emergency contact details
type EmergencyContact struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Phone    string `json:"phone"`
}

// Tenant represents an applicant or resident
type Tenant struct {
	gorm.Model
	OrganizationID   uint             `json:"organization_id" gorm:"index"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	DateOfBirth      *time.Time       `json:"date_of_birth"`
	Status           string           `json:"status"`
	Employment       Employment       `json:"employment" gorm:"embedded;embeddedPrefix:employment_"`
	EmergencyContact EmergencyContact `json:"emergency_contact" gorm:"embedded;embeddedPrefix:emergency_"`
	Notes            string           `json:"notes"`
}

// Contract binds one property to one tenant for a date range
type Contract struct {
	gorm.Model
	OrganizationID  uint       `json:"organization_id" gorm:"index"`
	PropertyID      uint       `json:"property_id"`
	TenantID        uint       `json:"tenant_id"`
	Status          string     `json:"status"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	SignedDate      *time.Time `json:"signed_date"`
	TerminatedDate  *time.Time `json:"terminated_date"`
	MonthlyRent     float64    `json:"monthly_rent"`
	SecurityDeposit float64    `json:"security_deposit"`
	Terms           []string   `json:"terms" gorm:"serializer:json"`
	Property        Property   `gorm:"foreignKey:PropertyID" json:"property"`
	Tenant          Tenant     `gorm:"foreignKey:TenantID" json:"tenant"`
}

// Payment is one ledger line owed under a contract.
// An "overdue" status is never stored; it is derived from pending + due date.
type Payment struct {
	gorm.Model
	OrganizationID uint       `json:"organization_id" gorm:"index"`
	ContractID     uint       `json:"contract_id"`
	TenantID       uint       `json:"tenant_id"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	Amount         float64    `json:"amount"`
	DueDate        time.Time  `json:"due_date"`
	PaidDate       *time.Time `json:"paid_date"`
	PeriodStart    *time.Time `json:"period_start"`
	PeriodEnd      *time.Time `json:"period_end"`
	Method         string     `json:"method"`
	TransactionID  string     `json:"transaction_id"`
	ReceiptNumber  string     `json:"receipt_number"`
	PaymentDetails string     `json:"payment_details"`
	Notes          string     `json:"notes"`
	Contract       Contract   `gorm:"foreignKey:ContractID" json:"contract"`
	Tenant         Tenant     `gorm:"foreignKey:TenantID" json:"tenant"`
}

// MaintenanceRequest represents a maintenance/service request for a property
type MaintenanceRequest struct {
	gorm.Model
	OrganizationID uint       `json:"organization_id" gorm:"index"`
	PropertyID     uint       `json:"property_id"`
	TenantID       *uint      `json:"tenant_id"`
	AssignedToID   *uint      `json:"assigned_to_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	EstimatedCost  float64    `json:"estimated_cost"`
	ActualCost     float64    `json:"actual_cost"`
	CompletedAt    *time.Time `json:"completed_at"`
	Property       Property   `gorm:"foreignKey:PropertyID" json:"property"`
	Tenant         *Tenant    `gorm:"foreignKey:TenantID" json:"tenant"`
	AssignedTo     *User      `gorm:"foreignKey:AssignedToID" json:"assigned_to"`
}

// Notification represents a system notification
type Notification struct {
	gorm.Model
	UserID      uint   `json:"user_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Type        string `json:"type"`
	RelatedID   *uint  `json:"related_id"`
	RelatedType string `json:"related_type"`
	IsRead      bool   `json:"is_read"`
	User        User   `gorm:"foreignKey:UserID" json:"user"`
}

// PasswordReset represents a password reset request
type PasswordReset struct {
	gorm.Model
	UserID    uint      `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
}

// Audit represents a super-admin console audit log entry
type Audit struct {
	gorm.Model
	UserID     *uint  `json:"user_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   uint   `json:"entity_id"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
	User       *User  `gorm:"foreignKey:UserID" json:"user"`
}

// Constants for status values
const (
	UnitTypeBuilding   = "building"
	UnitTypeHouse      = "house"
	UnitTypeCommercial = "commercial"

	PropertyStatusAvailable   = "available"
	PropertyStatusReserved    = "reserved"
	PropertyStatusRented      = "rented"
	PropertyStatusMaintenance = "maintenance"

	TenantStatusPending  = "pending"
	TenantStatusApproved = "approved"
	TenantStatusActive   = "active"
	TenantStatusFormer   = "former"
	TenantStatusRejected = "rejected"

	ContractStatusDraft      = "draft"
	ContractStatusActive     = "active"
	ContractStatusExpired    = "expired"
	ContractStatusTerminated = "terminated"

	PaymentTypeRent        = "rent"
	PaymentTypeDeposit     = "deposit"
	PaymentTypeLateFee     = "late_fee"
	PaymentTypeUtility     = "utility"
	PaymentTypeMaintenance = "maintenance"

	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusPartial   = "partial"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
	// Derived only, never written to the payments table
	PaymentStatusOverdue = "overdue"

	MaintenancePriorityLow       = "low"
	MaintenancePriorityMedium    = "medium"
	MaintenancePriorityHigh      = "high"
	MaintenancePriorityEmergency = "emergency"

	MaintenanceStatusOpen       = "open"
	MaintenanceStatusAssigned   = "assigned"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusCompleted  = "completed"
	MaintenanceStatusCancelled  = "cancelled"

	SubscriptionStatusTrialing  = "trialing"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusCancelled = "cancelled"

	// User roles
	RoleSuperAdmin = "super_admin"
	RoleManager    = "manager"
	RoleStaff      = "staff"
	RoleTenant     = "tenant"
)
