package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/database"
	"rentdesk/utils"
)

func TestRegisterCreatesOrganizationOnTrial(t *testing.T) {
	db := setupTestDB(t)

	plan := database.Plan{Name: "Starter", Code: "starter", MonthlyPrice: 0, IsActive: true}
	require.NoError(t, db.Create(&plan).Error)
	expensive := database.Plan{Name: "Enterprise", Code: "enterprise", MonthlyPrice: 199, IsActive: true}
	require.NoError(t, db.Create(&expensive).Error)

	req := RegisterRequest{
		OrganizationName: "Lakeside Rentals",
		Name:             "Sam Rivera",
		Email:            "sam@lakeside.test",
		Password:         "secret123",
	}
	w := performJSON(Register, http.MethodPost, "/api/auth/register", req, nil, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	var org database.Organization
	require.NoError(t, db.Where("slug = ?", "lakeside-rentals").First(&org).Error)
	assert.Equal(t, plan.ID, org.PlanID, "new organizations start on the cheapest active plan")
	assert.Equal(t, database.SubscriptionStatusTrialing, org.SubscriptionStatus)
	require.NotNil(t, org.SubscriptionEndsAt)

	var user database.User
	require.NoError(t, db.Where("email = ?", req.Email).First(&user).Error)
	assert.Equal(t, database.RoleManager, user.Role)
	require.NotNil(t, user.OrganizationID)
	assert.Equal(t, org.ID, *user.OrganizationID)
	assert.True(t, utils.CheckPasswordHash("secret123", user.PasswordHash))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	_, manager := seedOrg(t, db)

	req := RegisterRequest{
		OrganizationName: "Another Org",
		Name:             "Someone",
		Email:            manager.Email,
		Password:         "secret123",
	}
	w := performJSON(Register, http.MethodPost, "/api/auth/register", req, nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	org, _ := seedOrg(t, db)

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	user := database.User{Name: "Login User", Email: "login@acme.test", PasswordHash: hash,
		Role: database.RoleStaff, OrganizationID: &org.ID}
	require.NoError(t, db.Create(&user).Error)

	w := performJSON(Login, http.MethodPost, "/api/auth/login",
		LoginRequest{Email: user.Email, Password: "secret123"}, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	claims, err := utils.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, database.RoleStaff, claims.Role)
	require.NotNil(t, claims.OrganizationID)
	assert.Equal(t, org.ID, *claims.OrganizationID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	org, _ := seedOrg(t, db)

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	user := database.User{Name: "Login User", Email: "login@acme.test", PasswordHash: hash,
		Role: database.RoleStaff, OrganizationID: &org.ID}
	require.NoError(t, db.Create(&user).Error)

	w := performJSON(Login, http.MethodPost, "/api/auth/login",
		LoginRequest{Email: user.Email, Password: "wrongpass"}, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performJSON(Login, http.MethodPost, "/api/auth/login",
		LoginRequest{Email: "nobody@acme.test", Password: "secret123"}, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForgotPasswordResetRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	org, _ := seedOrg(t, db)

	hash, err := utils.HashPassword("oldpass1")
	require.NoError(t, err)
	user := database.User{Name: "Reset User", Email: "reset@acme.test", PasswordHash: hash,
		Role: database.RoleStaff, OrganizationID: &org.ID}
	require.NoError(t, db.Create(&user).Error)

	w := performJSON(ForgotPassword, http.MethodPost, "/api/auth/forgot-password",
		ForgotPasswordRequest{Email: user.Email}, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	w = performJSON(ResetPassword, http.MethodPost, "/api/auth/reset-password",
		ResetPasswordRequest{Token: token, NewPassword: "newpass1"}, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded database.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, utils.CheckPasswordHash("newpass1", reloaded.PasswordHash))

	// The token is single use
	w = performJSON(ResetPassword, http.MethodPost, "/api/auth/reset-password",
		ResetPasswordRequest{Token: token, NewPassword: "anotherpass"}, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForgotPasswordDoesNotRevealUnknownEmail(t *testing.T) {
	setupTestDB(t)

	w := performJSON(ForgotPassword, http.MethodPost, "/api/auth/forgot-password",
		ForgotPasswordRequest{Email: "nobody@acme.test"}, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Nil(t, body["token"])
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	org, _ := seedOrg(t, db)

	hash, err := utils.HashPassword("oldpass1")
	require.NoError(t, err)
	user := database.User{Name: "Reset User", Email: "reset@acme.test", PasswordHash: hash,
		Role: database.RoleStaff, OrganizationID: &org.ID}
	require.NoError(t, db.Create(&user).Error)

	reset := database.PasswordReset{
		UserID:    user.ID,
		Token:     utils.GenerateResetToken(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(&reset).Error)

	w := performJSON(ResetPassword, http.MethodPost, "/api/auth/reset-password",
		ResetPasswordRequest{Token: reset.Token, NewPassword: "newpass1"}, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reloaded database.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, utils.CheckPasswordHash("oldpass1", reloaded.PasswordHash))
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	db := setupTestDB(t)
	org, _ := seedOrg(t, db)

	hash, err := utils.HashPassword("oldpass1")
	require.NoError(t, err)
	user := database.User{Name: "PW User", Email: "pw@acme.test", PasswordHash: hash,
		Role: database.RoleStaff, OrganizationID: &org.ID}
	require.NoError(t, db.Create(&user).Error)

	auth := map[string]interface{}{"user_id": user.ID, "role": user.Role}

	w := performJSON(ChangePassword, http.MethodPost, "/api/profile/change-password",
		ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpass1"}, auth, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performJSON(ChangePassword, http.MethodPost, "/api/profile/change-password",
		ChangePasswordRequest{CurrentPassword: "oldpass1", NewPassword: "newpass1"}, auth, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded database.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, utils.CheckPasswordHash("newpass1", reloaded.PasswordHash))
}
