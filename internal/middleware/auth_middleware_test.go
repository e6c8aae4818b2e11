package middleware

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/service"
	"estampa-fina/pkg/jwt"
)

type fixture struct {
	app   *fiber.App
	auth  service.AuthService
	users repository.UserRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	users := repository.NewUserRepo(db)
	auth := service.NewAuthService(users, jwt.NewIssuer("middleware-secret", time.Hour, "test"), nil, 0)

	app := fiber.New()
	protected := app.Group("", RequireAuth(auth))
	protected.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalUserName).(string))
	})
	protected.Delete("/users", RequireCapability(permission.DeleteUser), func(c *fiber.Ctx) error {
		return c.SendStatus(204)
	})
	protected.Get("/postal", RequireAnyCapability(permission.CreateClient, permission.EditClient), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	protected.Get("/orders", RequireRole(permission.Customer), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})

	return &fixture{app: app, auth: auth, users: users}
}

func (f *fixture) login(t *testing.T, name string, role permission.Role, overrides model.PermissionSet) string {
	t.Helper()
	u := &model.User{Email: name + "@estampafina.com.br", Name: name, Role: role, Active: true}
	require.NoError(t, u.SetPassword("secret1"))
	u.ResetPermissions()
	set := u.Permissions.Data()
	for c, v := range overrides {
		set[c] = v
	}
	u.Permissions = datatypes.NewJSONType(set)
	require.NoError(t, f.users.Create(u))

	resp, err := f.auth.Login(u.Email, "secret1")
	require.NoError(t, err)
	return resp.Token
}

func (f *fixture) do(t *testing.T, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	f := setup(t)
	token := f.login(t, "ana", permission.Operator, nil)

	assert.Equal(t, 200, f.do(t, "GET", "/me", token))
	assert.Equal(t, 401, f.do(t, "GET", "/me", ""))
	assert.Equal(t, 401, f.do(t, "GET", "/me", "garbage"))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Token "+token)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	resp, err = f.app.Test(httptest.NewRequest("GET", "/me?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequireCapability(t *testing.T) {
	f := setup(t)
	admin := f.login(t, "admin", permission.Administrator, nil)
	manager := f.login(t, "gerente", permission.Manager, nil)
	granted := f.login(t, "gerente2", permission.Manager, model.PermissionSet{permission.DeleteUser: true})

	assert.Equal(t, 204, f.do(t, "DELETE", "/users", admin))
	assert.Equal(t, 403, f.do(t, "DELETE", "/users", manager))
	assert.Equal(t, 204, f.do(t, "DELETE", "/users", granted))
}

func TestRequireAnyCapability(t *testing.T) {
	f := setup(t)
	operator := f.login(t, "operador", permission.Operator, nil)
	editOnly := f.login(t, "editor", permission.Operator, model.PermissionSet{permission.CreateClient: false})
	none := f.login(t, "nada", permission.Operator, model.PermissionSet{permission.CreateClient: false, permission.EditClient: false})

	assert.Equal(t, 200, f.do(t, "GET", "/postal", operator))
	assert.Equal(t, 200, f.do(t, "GET", "/postal", editOnly))
	assert.Equal(t, 403, f.do(t, "GET", "/postal", none))
}

func TestRequireRole(t *testing.T) {
	f := setup(t)
	customer := f.login(t, "cliente", permission.Customer, nil)
	admin := f.login(t, "admin", permission.Administrator, nil)

	assert.Equal(t, 200, f.do(t, "GET", "/orders", customer))
	assert.Equal(t, 403, f.do(t, "GET", "/orders", admin))
}
