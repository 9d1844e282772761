package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/katchinsky/reflux-tg-bot/config"
	"github.com/katchinsky/reflux-tg-bot/models"
	"github.com/katchinsky/reflux-tg-bot/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("userID")})
	})
	return r
}

func doAuthRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsSignedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authTestRouter()

	token, err := utils.GenerateJWT(42)
	require.NoError(t, err)

	w := doAuthRequest(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":42}`, w.Body.String())
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authTestRouter()

	require.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "").Code)
	require.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "Token abc").Code)
	require.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "Bearer not-a-jwt").Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "other-secret")
	token, err := utils.GenerateJWT(42)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "test-secret")
	w := doAuthRequest(authTestRouter(), "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareResolvesTelegramClaim(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	user := models.User{TelegramUserID: 123456, Timezone: "UTC", Language: "en"}
	require.NoError(t, db.Create(&user).Error)

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"tgId": 123456})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	w := doAuthRequest(authTestRouter(), "Bearer "+signed)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, fmt.Sprintf(`{"user_id":%d}`, user.ID), w.Body.String())

	// Unknown telegram id is rejected even with a valid signature.
	token = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"tgId": 999999})
	signed, err = token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, doAuthRequest(authTestRouter(), "Bearer "+signed).Code)
}
