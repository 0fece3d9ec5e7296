package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/database"
)

func TestMaintenanceLifecycle(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	property, _ := seedRental(t, db, org.ID)

	input := MaintenanceRequestInput{
		PropertyID:  property.ID,
		Title:       "Leaking kitchen faucet",
		Description: "Drips constantly",
		Category:    "plumbing",
		Priority:    database.MaintenancePriorityMedium,
	}
	w := performJSON(CreateMaintenanceRequest, http.MethodPost, "/api/maintenance", input,
		managerAuth(manager.ID, org.ID), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var request database.MaintenanceRequest
	require.NoError(t, db.Where("property_id = ?", property.ID).First(&request).Error)
	assert.Equal(t, database.MaintenanceStatusOpen, request.Status)

	// Assigning from open flips the status to assigned
	update := MaintenanceUpdateRequest{AssignedToID: &manager.ID}
	w = performJSON(UpdateMaintenanceRequest, http.MethodPut, "/api/maintenance/1", update,
		managerAuth(manager.ID, org.ID), idParam(request.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, db.First(&request, request.ID).Error)
	assert.Equal(t, database.MaintenanceStatusAssigned, request.Status)
	require.NotNil(t, request.AssignedToID)
	assert.Equal(t, manager.ID, *request.AssignedToID)

	w = performJSON(UpdateMaintenanceRequest, http.MethodPut, "/api/maintenance/1",
		MaintenanceUpdateRequest{Status: database.MaintenanceStatusInProgress},
		managerAuth(manager.ID, org.ID), idParam(request.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	actual := 150.0
	w = performJSON(UpdateMaintenanceRequest, http.MethodPut, "/api/maintenance/1",
		MaintenanceUpdateRequest{Status: database.MaintenanceStatusCompleted, ActualCost: &actual},
		managerAuth(manager.ID, org.ID), idParam(request.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, db.First(&request, request.ID).Error)
	assert.Equal(t, database.MaintenanceStatusCompleted, request.Status)
	assert.NotNil(t, request.CompletedAt)
	assert.Equal(t, 150.0, request.ActualCost)
}

func TestMaintenanceRejectsInvalidTransition(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	property, _ := seedRental(t, db, org.ID)

	request := database.MaintenanceRequest{
		OrganizationID: org.ID, PropertyID: property.ID,
		Title: "Broken window", Category: "general",
		Priority: database.MaintenancePriorityLow, Status: database.MaintenanceStatusOpen,
	}
	require.NoError(t, db.Create(&request).Error)

	// open cannot jump straight to completed
	w := performJSON(UpdateMaintenanceRequest, http.MethodPut, "/api/maintenance/1",
		MaintenanceUpdateRequest{Status: database.MaintenanceStatusCompleted},
		managerAuth(manager.ID, org.ID), idParam(request.ID))
	assert.Equal(t, http.StatusConflict, w.Code)

	require.NoError(t, db.Model(&request).Update("status", database.MaintenanceStatusCompleted).Error)

	// completed is terminal
	w = performJSON(UpdateMaintenanceRequest, http.MethodPut, "/api/maintenance/1",
		MaintenanceUpdateRequest{Status: database.MaintenanceStatusInProgress},
		managerAuth(manager.ID, org.ID), idParam(request.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteMaintenanceRequestOnlyWhenFinished(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	property, _ := seedRental(t, db, org.ID)

	open := database.MaintenanceRequest{
		OrganizationID: org.ID, PropertyID: property.ID,
		Title: "Squeaky door", Category: "general",
		Priority: database.MaintenancePriorityLow, Status: database.MaintenanceStatusOpen,
	}
	require.NoError(t, db.Create(&open).Error)

	completed := database.MaintenanceRequest{
		OrganizationID: org.ID, PropertyID: property.ID,
		Title: "Replaced lock", Category: "general",
		Priority: database.MaintenancePriorityLow, Status: database.MaintenanceStatusCompleted,
	}
	require.NoError(t, db.Create(&completed).Error)

	// Work in progress cannot be deleted
	w := performJSON(DeleteMaintenanceRequest, http.MethodDelete, "/api/maintenance/1", nil,
		managerAuth(manager.ID, org.ID), idParam(open.ID))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performJSON(DeleteMaintenanceRequest, http.MethodDelete, "/api/maintenance/2", nil,
		managerAuth(manager.ID, org.ID), idParam(completed.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var remaining int64
	require.NoError(t, db.Model(&database.MaintenanceRequest{}).
		Where("organization_id = ?", org.ID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestMaintenanceRejectsForeignAssignee(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	property, tenant := seedRental(t, db, org.ID)

	portalUser := database.User{Name: "Portal", Email: "p@t.test", PasswordHash: "x",
		Role: database.RoleTenant, OrganizationID: &org.ID, TenantID: &tenant.ID}
	require.NoError(t, db.Create(&portalUser).Error)

	request := database.MaintenanceRequest{
		OrganizationID: org.ID, PropertyID: property.ID,
		Title: "No hot water", Category: "plumbing",
		Priority: database.MaintenancePriorityHigh, Status: database.MaintenanceStatusOpen,
	}
	require.NoError(t, db.Create(&request).Error)

	// Tenant portal users cannot be assignees
	w := performJSON(UpdateMaintenanceRequest, http.MethodPut, "/api/maintenance/1",
		MaintenanceUpdateRequest{AssignedToID: &portalUser.ID},
		managerAuth(manager.ID, org.ID), idParam(request.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
