package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creatorcart/backend/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func run(t *testing.T, mw echo.MiddlewareFunc, configure func(*http.Request)) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))

	return rec, c
}

func bearerToken(t *testing.T, userID, role string) string {
	token, err := auth.GenerateJWT(userID, role, testSecret, 1)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestJWT(t *testing.T) {
	t.Run("Success - Valid token sets identity", func(t *testing.T) {
		rec, c := run(t, JWT(testSecret), func(req *http.Request) {
			req.Header.Set("Authorization", bearerToken(t, "user-1", "creator"))
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", c.Get(ContextUserID))
		assert.Equal(t, "creator", c.Get(ContextUserRole))
	})

	t.Run("Error - Missing header", func(t *testing.T) {
		rec, _ := run(t, JWT(testSecret), nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Error - Malformed token", func(t *testing.T) {
		rec, _ := run(t, JWT(testSecret), func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer garbage")
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalJWT(t *testing.T) {
	t.Run("Anonymous passes without identity", func(t *testing.T) {
		rec, c := run(t, OptionalJWT(testSecret), nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, c.Get(ContextUserID))
	})

	t.Run("Valid token sets identity", func(t *testing.T) {
		rec, c := run(t, OptionalJWT(testSecret), func(req *http.Request) {
			req.Header.Set("Authorization", bearerToken(t, "user-2", "creator"))
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-2", c.Get(ContextUserID))
	})

	t.Run("Invalid token passes anonymously", func(t *testing.T) {
		rec, c := run(t, OptionalJWT(testSecret), func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer garbage")
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, c.Get(ContextUserID))
	})
}

func TestRequireRole(t *testing.T) {
	withRole := func(role string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if role != "" {
					c.Set(ContextUserRole, role)
				}
				return next(c)
			}
		}
	}

	t.Run("Success - Allowed role", func(t *testing.T) {
		mw := func(next echo.HandlerFunc) echo.HandlerFunc {
			return withRole("admin")(RequireRole("admin", "creator")(next))
		}
		rec, _ := run(t, mw, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Error - Disallowed role", func(t *testing.T) {
		mw := func(next echo.HandlerFunc) echo.HandlerFunc {
			return withRole("brand")(RequireRole("admin")(next))
		}
		rec, _ := run(t, mw, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Error - No identity", func(t *testing.T) {
		rec, _ := run(t, RequireRole("admin"), nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestInternalOrRole(t *testing.T) {
	mw := InternalOrRole("internal-token", testSecret, "admin")

	t.Run("Success - Internal token", func(t *testing.T) {
		rec, c := run(t, mw, func(req *http.Request) {
			req.Header.Set("X-Internal-Token", "internal-token")
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, c.Get(ContextInternal))
	})

	t.Run("Success - Admin JWT", func(t *testing.T) {
		rec, _ := run(t, mw, func(req *http.Request) {
			req.Header.Set("Authorization", bearerToken(t, "admin-1", "admin"))
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Error - Wrong internal token and no JWT", func(t *testing.T) {
		rec, _ := run(t, mw, func(req *http.Request) {
			req.Header.Set("X-Internal-Token", "wrong")
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Error - Non-admin JWT", func(t *testing.T) {
		rec, _ := run(t, mw, func(req *http.Request) {
			req.Header.Set("Authorization", bearerToken(t, "user-1", "creator"))
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Error - Empty configured token never matches", func(t *testing.T) {
		open := InternalOrRole("", testSecret, "admin")
		rec, _ := run(t, open, func(req *http.Request) {
			req.Header.Set("X-Internal-Token", "")
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
