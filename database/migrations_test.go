package database

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

func openTestDB(t *testing.T) {
	t.Helper()
	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:database_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	DB = db
}

func TestRunMigrationsCreatesAllTables(t *testing.T) {
	openTestDB(t)
	require.NoError(t, RunMigrations())

	for _, table := range []string{
		"plans", "organizations", "users", "units", "properties",
		"tenants", "contracts", "payments", "maintenance_requests",
		"notifications", "password_resets", "audits",
	} {
		assert.True(t, DB.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	openTestDB(t)
	require.NoError(t, RunMigrations())

	require.NoError(t, SeedDefaults("root@rentdesk.local", "hash"))
	require.NoError(t, SeedDefaults("root@rentdesk.local", "hash"))

	var planCount, adminCount int64
	DB.Model(&Plan{}).Count(&planCount)
	DB.Model(&User{}).Where("role = ?", RoleSuperAdmin).Count(&adminCount)
	assert.Equal(t, int64(3), planCount)
	assert.Equal(t, int64(1), adminCount)

	var cheapest Plan
	require.NoError(t, DB.Where("is_active = ?", true).Order("monthly_price ASC").First(&cheapest).Error)
	assert.Equal(t, "starter", cheapest.Code)
}

func TestExpireLapsedSubscriptions(t *testing.T) {
	openTestDB(t)
	require.NoError(t, RunMigrations())

	now := time.Now()
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 1, 0)

	lapsed := Organization{Name: "Lapsed", Slug: "lapsed",
		SubscriptionStatus: SubscriptionStatusTrialing, SubscriptionEndsAt: &past}
	current := Organization{Name: "Current", Slug: "current",
		SubscriptionStatus: SubscriptionStatusActive, SubscriptionEndsAt: &future}
	cancelled := Organization{Name: "Cancelled", Slug: "cancelled",
		SubscriptionStatus: SubscriptionStatusCancelled, SubscriptionEndsAt: &past}
	openEnded := Organization{Name: "Open", Slug: "open",
		SubscriptionStatus: SubscriptionStatusActive}
	require.NoError(t, DB.Create(&lapsed).Error)
	require.NoError(t, DB.Create(&current).Error)
	require.NoError(t, DB.Create(&cancelled).Error)
	require.NoError(t, DB.Create(&openEnded).Error)

	n, err := ExpireLapsedSubscriptions(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	check := func(id uint, want string) {
		var org Organization
		require.NoError(t, DB.First(&org, id).Error)
		assert.Equal(t, want, org.SubscriptionStatus)
	}
	check(lapsed.ID, SubscriptionStatusPastDue)
	check(current.ID, SubscriptionStatusActive)
	check(cancelled.ID, SubscriptionStatusCancelled)
	check(openEnded.ID, SubscriptionStatusActive)
}

func TestSerializedFieldsRoundTrip(t *testing.T) {
	openTestDB(t)
	require.NoError(t, RunMigrations())

	contract := Contract{
		OrganizationID: 1,
		PropertyID:     1,
		TenantID:       1,
		Status:         ContractStatusDraft,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
		MonthlyRent:    1000,
		Terms:          []string{"no pets", "no smoking", "12 month minimum"},
	}
	require.NoError(t, DB.Create(&contract).Error)

	var reloaded Contract
	require.NoError(t, DB.First(&reloaded, contract.ID).Error)
	assert.Equal(t, []string{"no pets", "no smoking", "12 month minimum"}, reloaded.Terms)

	unit := Unit{OrganizationID: 1, Type: UnitTypeBuilding, Name: "Tower",
		Amenities: []string{"parking", "elevator"}}
	require.NoError(t, DB.Create(&unit).Error)

	var reloadedUnit Unit
	require.NoError(t, DB.First(&reloadedUnit, unit.ID).Error)
	assert.Equal(t, []string{"parking", "elevator"}, reloadedUnit.Amenities)
}
