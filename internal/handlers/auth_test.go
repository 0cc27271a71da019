package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beautyshop/backend/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password",
	}
	rec, c := env.doJSONRequest(t, http.MethodPost, "/auth/register", payload, "")
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User        models.User `json:"user"`
		AccessToken string      `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "test_user", resp.User.Username)
	require.Equal(t, models.RoleCustomer, resp.User.Role)
	require.NotEmpty(t, resp.User.ID)
	require.NotEmpty(t, resp.AccessToken)

	var stored models.User
	require.NoError(t, env.DB.First(&stored, resp.User.ID).Error)
	require.NotEqual(t, "password", stored.PasswordHash)
}

func TestRegisterConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "taken", "taken@example.com", models.RoleCustomer)

	_, c := env.doJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "someone_else",
		"email":    "taken@example.com",
		"password": "password",
	}, "")
	requireHTTPError(t, env.Auth.Register(c), http.StatusConflict)

	_, c = env.doJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "taken",
		"email":    "new@example.com",
		"password": "password",
	}, "")
	requireHTTPError(t, env.Auth.Register(c), http.StatusConflict)

	_, c = env.doJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "no_password",
		"email":    "no_password@example.com",
	}, "")
	requireHTTPError(t, env.Auth.Register(c), http.StatusBadRequest)

	_, c = env.doJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "bad_role",
		"email":    "bad_role@example.com",
		"password": "password",
		"role":     "superuser",
	}, "")
	requireHTTPError(t, env.Auth.Register(c), http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "test_user", "test@example.com", models.RoleCustomer)

	rec, c := env.doJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password",
	}, "")
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])

	_, c = env.doJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong",
	}, "")
	requireHTTPError(t, env.Auth.Login(c), http.StatusUnauthorized)

	_, c = env.doJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password",
	}, "")
	requireHTTPError(t, env.Auth.Login(c), http.StatusUnauthorized)
}

func TestLoginBlockedUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "blocked_user", "blocked@example.com", models.RoleCustomer)
	require.NoError(t, env.DB.Model(&user).Update("blocked", true).Error)

	_, c := env.doJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "blocked@example.com",
		"password": "password",
	}, "")
	requireHTTPError(t, env.Auth.Login(c), http.StatusForbidden)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "test_user", "test@example.com", models.RoleCustomer)
	token := env.tokenFor(t, user)

	rec, c := env.doJSONRequest(t, http.MethodPost, "/auth/logout", nil, token)
	require.NoError(t, env.MW.RequireAuth(env.Auth.Logout)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.TokenBlocklist{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// the same token no longer passes auth
	_, c = env.doJSONRequest(t, http.MethodGet, "/users/me", nil, token)
	err := env.MW.RequireAuth(env.Users.Me)(c)
	requireHTTPError(t, err, http.StatusUnauthorized)
}

func TestLogoutIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "test_user", "test@example.com", models.RoleCustomer)
	token := env.tokenFor(t, user)

	rec, c := env.doJSONRequest(t, http.MethodPost, "/auth/logout", nil, token)
	require.NoError(t, env.MW.RequireAuth(env.Auth.Logout)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// second logout hits the blocklisted jti in the auth middleware
	_, c = env.doJSONRequest(t, http.MethodPost, "/auth/logout", nil, token)
	err := env.MW.RequireAuth(env.Auth.Logout)(c)
	requireHTTPError(t, err, http.StatusUnauthorized)

	var count int64
	require.NoError(t, env.DB.Model(&models.TokenBlocklist{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
