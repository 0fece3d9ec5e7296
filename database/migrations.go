package database

import (
	"log"
	"time"
)

// RunMigrations runs all database migrations
func RunMigrations() error {
	log.Println("Running database migrations...")

	// AutoMigrate will create tables if they don't exist
	if err := DB.AutoMigrate(
		&Plan{},
		&Organization{},
		&User{},
		&Unit{},
		&Property{},
		&Tenant{},
		&Contract{},
		&Payment{},
		&MaintenanceRequest{},
		&Notification{},
		&PasswordReset{},
		&Audit{},
	); err != nil {
		log.Printf("Migration failed: %v", err)
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaults creates the default plans and a super admin if none exist.
// The password hash must be generated by the caller so this package does not
// depend on the auth utilities.
func SeedDefaults(superAdminEmail, superAdminPasswordHash string) error {
	var planCount int64
	if err := DB.Model(&Plan{}).Count(&planCount).Error; err != nil {
		return err
	}

	if planCount == 0 {
		plans := []Plan{
			{Name: "Starter", Code: "starter", MonthlyPrice: 0, MaxProperties: 10, MaxUsers: 2,
				Features: []string{"units", "properties", "tenants", "contracts", "payments"}, IsActive: true},
			{Name: "Professional", Code: "professional", MonthlyPrice: 49, MaxProperties: 100, MaxUsers: 10,
				Features: []string{"units", "properties", "tenants", "contracts", "payments", "maintenance", "reports"}, IsActive: true},
			{Name: "Enterprise", Code: "enterprise", MonthlyPrice: 199, MaxProperties: 0, MaxUsers: 0,
				Features: []string{"units", "properties", "tenants", "contracts", "payments", "maintenance", "reports", "online_payments"}, IsActive: true},
		}
		if err := DB.Create(&plans).Error; err != nil {
			log.Printf("Failed to seed plans: %v", err)
			return err
		}
		log.Println("Default plans created")
	}

	var adminCount int64
	if err := DB.Model(&User{}).Where("role = ?", RoleSuperAdmin).Count(&adminCount).Error; err != nil {
		return err
	}

	if adminCount == 0 {
		admin := User{
			Name:         "Super Admin",
			Email:        superAdminEmail,
			PasswordHash: superAdminPasswordHash,
			Role:         RoleSuperAdmin,
		}
		if err := DB.Create(&admin).Error; err != nil {
			log.Printf("Failed to create super admin: %v", err)
			return err
		}
		log.Println("Default super admin user created")
	}

	return nil
}

// ExpireLapsedSubscriptions marks organizations whose paid period has ended
// as past_due. Called from the migrate CLI and on server start.
func ExpireLapsedSubscriptions(now time.Time) (int64, error) {
	result := DB.Model(&Organization{}).
		Where("subscription_status IN ? AND subscription_ends_at IS NOT NULL AND subscription_ends_at < ?",
			[]string{SubscriptionStatusTrialing, SubscriptionStatusActive}, now).
		Update("subscription_status", SubscriptionStatusPastDue)
	return result.RowsAffected, result.Error
}
