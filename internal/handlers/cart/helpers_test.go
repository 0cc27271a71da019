package cart

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beautyshop/backend/internal/config"
	"github.com/beautyshop/backend/internal/hash"
	authmw "github.com/beautyshop/backend/internal/middleware/auth"
	"github.com/beautyshop/backend/internal/models"
	"github.com/beautyshop/backend/internal/tokens"
)

type testEnv struct {
	DB        *gorm.DB
	E         *echo.Echo
	MW        *authmw.Middleware
	JWTSecret []byte
	Cart      *CartHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	secret := []byte("test-jwt-secret")
	return &testEnv{
		DB:        db,
		E:         echo.New(),
		MW:        &authmw.Middleware{DB: db, JWTSecret: secret},
		JWTSecret: secret,
		Cart:      &CartHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(t *testing.T, method, path string, payload any, token string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) createUser(t *testing.T, username, email string) models.User {
	t.Helper()

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	require.NoError(t, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) tokenFor(t *testing.T, u models.User) string {
	t.Helper()

	token, err := tokens.SignAccessToken(u.ID, u.Role, env.JWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (env *testEnv) createProduct(t *testing.T, name string, price float64) models.Product {
	t.Helper()

	cat := models.Category{Name: name + "-cat", Label: name}
	require.NoError(t, env.DB.Create(&cat).Error)
	prod := models.Product{Name: name, Price: price, InStock: true, CategoryID: cat.ID}
	require.NoError(t, env.DB.Create(&prod).Error)
	return prod
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
}
