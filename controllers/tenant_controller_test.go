package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/database"
)

func TestApproveTenant(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	_, tenant := seedRental(t, db, org.ID)

	w := performJSON(ApproveTenant, http.MethodPost, "/api/tenants/1/approve", nil,
		managerAuth(manager.ID, org.ID), idParam(tenant.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded database.Tenant
	require.NoError(t, db.First(&reloaded, tenant.ID).Error)
	assert.Equal(t, database.TenantStatusApproved, reloaded.Status)
}

func TestRejectTenantOnlyFromPending(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	_, tenant := seedRental(t, db, org.ID)

	w := performJSON(RejectTenant, http.MethodPost, "/api/tenants/1/reject", nil,
		managerAuth(manager.ID, org.ID), idParam(tenant.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Rejected is terminal for the application flow
	w = performJSON(ApproveTenant, http.MethodPost, "/api/tenants/1/approve", nil,
		managerAuth(manager.ID, org.ID), idParam(tenant.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteTenantBlockedByContracts(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	property, tenant := seedRental(t, db, org.ID)
	seedContract(t, db, org.ID, property, tenant, time.Now(), time.Now().AddDate(1, 0, 0))

	w := performJSON(DeleteTenant, http.MethodDelete, "/api/tenants/1", nil,
		managerAuth(manager.ID, org.ID), idParam(tenant.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteTenantFailsClosedWhenContractLookupErrors(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	_, tenant := seedRental(t, db, org.ID)

	// With the contracts table gone the guard count errors; the tenant
	// must survive rather than be deleted on a zero count.
	require.NoError(t, db.Migrator().DropTable(&database.Contract{}))

	w := performJSON(DeleteTenant, http.MethodDelete, "/api/tenants/1", nil,
		managerAuth(manager.ID, org.ID), idParam(tenant.ID))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var reloaded database.Tenant
	require.NoError(t, db.First(&reloaded, tenant.ID).Error)
}

func TestTenantsScopedToOrganization(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	seedRental(t, db, org.ID)

	otherPlan := database.Plan{Name: "Other", Code: "other", IsActive: true}
	require.NoError(t, db.Create(&otherPlan).Error)
	otherOrg := database.Organization{Name: "Other Org", Slug: "other-org", PlanID: otherPlan.ID,
		SubscriptionStatus: database.SubscriptionStatusActive}
	require.NoError(t, db.Create(&otherOrg).Error)
	seedRental(t, db, otherOrg.ID)

	w := performJSON(GetTenants, http.MethodGet, "/api/tenants", nil,
		managerAuth(manager.ID, org.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []database.Tenant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, org.ID, rows[0].OrganizationID)
}
