package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/database"
)

func TestCreatePropertyEnforcesPlanLimit(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)

	require.NoError(t, db.Model(&database.Plan{}).Where("id = ?", org.PlanID).
		Update("max_properties", 1).Error)

	unit := database.Unit{OrganizationID: org.ID, Type: database.UnitTypeBuilding, Name: "Tower A"}
	require.NoError(t, db.Create(&unit).Error)

	req := PropertyRequest{UnitID: unit.ID, Number: "101", MonthlyRent: 900}
	w := performJSON(CreateProperty, http.MethodPost, "/api/properties", req,
		managerAuth(manager.ID, org.ID), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req.Number = "102"
	w = performJSON(CreateProperty, http.MethodPost, "/api/properties", req,
		managerAuth(manager.ID, org.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePropertySingleSpaceUnits(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)

	house := database.Unit{OrganizationID: org.ID, Type: database.UnitTypeHouse, Name: "Elm Street House"}
	require.NoError(t, db.Create(&house).Error)

	req := PropertyRequest{UnitID: house.ID, Number: "main", MonthlyRent: 1500}
	w := performJSON(CreateProperty, http.MethodPost, "/api/properties", req,
		managerAuth(manager.ID, org.ID), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A house holds only one rentable property
	req.Number = "annex"
	w = performJSON(CreateProperty, http.MethodPost, "/api/properties", req,
		managerAuth(manager.ID, org.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdatePropertyCannotReleaseRented(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	property, _ := seedRental(t, db, org.ID)
	require.NoError(t, db.Model(&property).Update("status", database.PropertyStatusRented).Error)

	body := map[string]interface{}{"status": database.PropertyStatusAvailable}
	w := performJSON(UpdateProperty, http.MethodPut, "/api/properties/1", body,
		managerAuth(manager.ID, org.ID), idParam(property.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeletePropertyBlockedByContracts(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	property, tenant := seedRental(t, db, org.ID)
	seedContract(t, db, org.ID, property, tenant, time.Now(), time.Now().AddDate(1, 0, 0))

	w := performJSON(DeleteProperty, http.MethodDelete, "/api/properties/1", nil,
		managerAuth(manager.ID, org.ID), idParam(property.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteUnitBlockedByProperties(t *testing.T) {
	db := setupTestDB(t)
	org, manager := seedOrg(t, db)
	property, _ := seedRental(t, db, org.ID)

	w := performJSON(DeleteUnit, http.MethodDelete, "/api/units/1", nil,
		managerAuth(manager.ID, org.ID), idParam(property.UnitID))
	assert.Equal(t, http.StatusConflict, w.Code)
}
