package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rentdesk/config"
	"rentdesk/database"
)

var testDBCounter int64

func init() {
	gin.SetMode(gin.TestMode)
	config.AppConfig.DBDriver = "sqlite"
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.JWTExpiryHours = 1
	config.AppConfig.TrialDays = 14
}

// setupTestDB points database.DB at a fresh in-memory sqlite database.
// Each test gets its own named shared-cache DB so connections from the
// pool see the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:controllers_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&database.Plan{},
		&database.Organization{},
		&database.User{},
		&database.Unit{},
		&database.Property{},
		&database.Tenant{},
		&database.Contract{},
		&database.Payment{},
		&database.MaintenanceRequest{},
		&database.Notification{},
		&database.PasswordReset{},
		&database.Audit{},
	))

	database.DB = db

	// The raw reporting handle shares the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	database.ReportDB = sqlDB

	return db
}

// performJSON runs one handler with an authenticated context and a JSON body
func performJSON(handler gin.HandlerFunc, method, path string, body interface{}, auth map[string]interface{}, params gin.Params) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	for k, v := range auth {
		c.Set(k, v)
	}

	handler(c)
	return w
}

// managerAuth returns the context keys the auth middleware sets for a manager
func managerAuth(userID, orgID uint) map[string]interface{} {
	return map[string]interface{}{
		"user_id": userID,
		"org_id":  orgID,
		"email":   "manager@test.local",
		"role":    database.RoleManager,
	}
}

// tenantAuth returns the context keys for a tenant-portal user
func tenantAuth(userID, orgID, tenantID uint) map[string]interface{} {
	return map[string]interface{}{
		"user_id":   userID,
		"org_id":    orgID,
		"tenant_id": tenantID,
		"email":     "tenant@test.local",
		"role":      database.RoleTenant,
	}
}

func idParam(id uint) gin.Params {
	return gin.Params{{Key: "id", Value: fmt.Sprint(id)}}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// seedOrg creates a plan, organization and manager user
func seedOrg(t *testing.T, db *gorm.DB) (database.Organization, database.User) {
	t.Helper()

	plan := database.Plan{Name: "Starter", Code: "starter", MonthlyPrice: 0, MaxProperties: 10, MaxUsers: 2, IsActive: true}
	require.NoError(t, db.Create(&plan).Error)

	org := database.Organization{
		Name:               "Acme Property Management",
		Slug:               "acme-property-management",
		BillingEmail:       "billing@acme.test",
		PlanID:             plan.ID,
		SubscriptionStatus: database.SubscriptionStatusActive,
	}
	require.NoError(t, db.Create(&org).Error)

	manager := database.User{
		Name:           "Manager",
		Email:          "manager@acme.test",
		PasswordHash:   "x",
		Role:           database.RoleManager,
		OrganizationID: &org.ID,
	}
	require.NoError(t, db.Create(&manager).Error)

	return org, manager
}

// seedRental creates a unit, available property and pending tenant
func seedRental(t *testing.T, db *gorm.DB, orgID uint) (database.Property, database.Tenant) {
	t.Helper()

	unit := database.Unit{OrganizationID: orgID, Type: database.UnitTypeBuilding, Name: "Main Building"}
	require.NoError(t, db.Create(&unit).Error)

	property := database.Property{
		OrganizationID: orgID,
		UnitID:         unit.ID,
		Number:         "101",
		MonthlyRent:    1200,
		Status:         database.PropertyStatusAvailable,
	}
	require.NoError(t, db.Create(&property).Error)

	tenant := database.Tenant{
		OrganizationID: orgID,
		FirstName:      "Jordan",
		LastName:       "Lee",
		Email:          "jordan@tenants.test",
		Status:         database.TenantStatusPending,
	}
	require.NoError(t, db.Create(&tenant).Error)

	return property, tenant
}

// seedContract creates a draft contract for the given property and tenant
func seedContract(t *testing.T, db *gorm.DB, orgID uint, property database.Property, tenant database.Tenant, start, end time.Time) database.Contract {
	t.Helper()

	contract := database.Contract{
		OrganizationID:  orgID,
		PropertyID:      property.ID,
		TenantID:        tenant.ID,
		Status:          database.ContractStatusDraft,
		StartDate:       start,
		EndDate:         end,
		MonthlyRent:     property.MonthlyRent,
		SecurityDeposit: property.MonthlyRent,
	}
	require.NoError(t, db.Create(&contract).Error)
	return contract
}
