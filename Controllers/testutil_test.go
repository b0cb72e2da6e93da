package Controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flawiddsouza/streaks-and-todo-sub000/FiberConfig"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
	"github.com/flawiddsouza/streaks-and-todo-sub000/middleware"
)

// setupTest builds an isolated in-memory database, wires the full route
// table onto a fresh fiber app and returns a jwt cookie for an admin user.
func setupTest(t *testing.T) (*fiber.App, *gorm.DB, string) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))

	// middleware.Verify resolves users through the package-level handle
	Models.DB = db

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := Models.User{Name: "Admin", Username: "admin", Password: passwordHash, Permission: 4}
	require.NoError(t, db.Create(&user).Error)

	claims := jwt.RegisteredClaims{
		Issuer:    strconv.Itoa(int(user.Id)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.SecretKey())
	require.NoError(t, err)

	app := fiber.New()
	FiberConfig.SetupRoutes(app, db)

	return app, db, token
}

func doRequest(t *testing.T, app *fiber.App, method, url, jwtCookie string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if jwtCookie != "" {
		req.AddCookie(&http.Cookie{Name: "jwt", Value: jwtCookie})
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createGroup(t *testing.T, db *gorm.DB, name, groupType string) Models.Group {
	t.Helper()
	group := Models.Group{Name: name, Type: groupType}
	require.NoError(t, db.Create(&group).Error)
	return group
}
