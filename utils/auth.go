package utils

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
)

var jwtSecret = []byte(func() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	return "supersecretkey"
}())

// SetJwtSecret replaces the signing secret; main calls this once with the
// configured value before any token is issued.
func SetJwtSecret(secret string) {
	jwtSecret = []byte(secret)
}

func JwtSecret() []byte {
	return jwtSecret
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	return string(bytes), err
}

func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(password),
	)
	return err == nil
}

func GenerateJWT(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		claims,
	)

	return token.SignedString(jwtSecret)
}

// Actor is the acting user as resolved from the session token. The role
// comes from the server's own claims, never from request payloads, and is
// fixed for the duration of the request.
type Actor struct {
	UserID uint
	Role   constants.Role
}

// CurrentActor pulls the authenticated actor out of the gin context set
// by the auth middleware.
func CurrentActor(c *gin.Context) (Actor, bool) {
	userID, ok := c.Get("user_id")
	if !ok {
		return Actor{}, false
	}
	role, ok := c.Get("role")
	if !ok {
		return Actor{}, false
	}

	id, ok := userID.(uint)
	if !ok {
		return Actor{}, false
	}
	r, ok := role.(constants.Role)
	if !ok {
		return Actor{}, false
	}

	return Actor{UserID: id, Role: r}, true
}
