package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/middleware"
	"github.com/ivory-interiors/ivory-orders-api/models"
)

// setupTestDB builds an in-memory database with the full schema and wires
// it into the config package for the handlers under test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Order{},
		&models.Stage{},
		&models.Event{},
		&models.MediaFile{},
		&models.InstallationAppointment{},
		&models.CustomerRating{},
		&models.OrderSequence{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware sets up the Gin context the way the real JWT
// middleware does, without validating a token.
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)

		mockClaims := &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{
				Role: role,
			},
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

// createTestStaff inserts a staff user and returns it
func createTestStaff(t *testing.T, db *gorm.DB) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: "auth0|staff123",
		Name:    "Priya Staff",
		Email:   "priya@ivoryinteriors.com",
		Role:    "staff",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create staff user: %v", err)
	}
	return user
}

// parseResponse unmarshals the recorded response body
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response should be valid JSON: %v", err)
	}
	return response
}

// assertErrorCode asserts the standard error envelope carries the code
func assertErrorCode(t *testing.T, response map[string]interface{}, code string) {
	t.Helper()

	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, code, errorData["code"])
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)

	// Stand-in for Auth0's /userinfo endpoint
	userinfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mock-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"auth0|newstaff","email":"sam@ivoryinteriors.com","name":"Sam Field"}`))
	}))
	defer userinfoServer.Close()

	originalConfig := config.GetConfig()
	defer config.SetConfig(originalConfig)
	config.SetConfig(&config.Config{
		DatabaseURL: "test",
		Auth0Domain: userinfoServer.URL,
	})

	t.Run("creates staff profile from userinfo", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/users", mockAuthMiddleware("auth0|newstaff", "staff", "mock-token"), CreateUser)

		req, _ := http.NewRequest(http.MethodPost, "/users", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		response := parseResponse(t, w)
		assert.True(t, response["success"].(bool))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "auth0|newstaff", data["auth0_id"])
		assert.Equal(t, "Sam Field", data["name"])
		assert.Equal(t, "staff", data["role"])
	})

	t.Run("rejects duplicate profile", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/users", mockAuthMiddleware("auth0|newstaff", "staff", "mock-token"), CreateUser)

		req, _ := http.NewRequest(http.MethodPost, "/users", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assertErrorCode(t, parseResponse(t, w), "USER_EXISTS")
	})

	t.Run("admin role claim is honored", func(t *testing.T) {
		adminServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"sub":"auth0|boss","email":"boss@ivoryinteriors.com","name":"Boss"}`))
		}))
		defer adminServer.Close()
		config.SetConfig(&config.Config{DatabaseURL: "test", Auth0Domain: adminServer.URL})

		router := setupTestRouter()
		router.POST("/users", mockAuthMiddleware("auth0|boss", "admin", "mock-token"), CreateUser)

		req, _ := http.NewRequest(http.MethodPost, "/users", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		data := parseResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "admin", data["role"])
	})

	_ = db
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestStaff(t, db)

	t.Run("returns the current staff profile", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/users/me", mockAuthMiddleware(staff.Auth0ID, staff.Role, "mock-token"), GetMyProfile)

		req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		data := parseResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, staff.Email, data["email"])
	})

	t.Run("unknown token subject gets USER_NOT_FOUND", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/users/me", mockAuthMiddleware("auth0|nobody", "staff", "mock-token"), GetMyProfile)

		req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorCode(t, parseResponse(t, w), "USER_NOT_FOUND")
	})

	t.Run("missing auth context gets UNAUTHORIZED", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/users/me", GetMyProfile)

		req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assertErrorCode(t, parseResponse(t, w), "UNAUTHORIZED")
	})
}
