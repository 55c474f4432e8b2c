// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/worldclasstravels/wct_backend/config"
	"github.com/worldclasstravels/wct_backend/models"
)

const principalContextKey = "principal"

// JwtCustomClaims for JWT token. Role is only present on admin tokens.
type JwtCustomClaims struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.StandardClaims
}

// Principal is the resolved caller identity, tagged by kind. Exactly one of
// Admin or User is set.
type Principal struct {
	Admin *models.AdminPrincipal
	User  *models.User
}

// IsAdmin reports whether the principal carries an elevated role.
func (p *Principal) IsAdmin() bool {
	return p.Admin != nil && (p.Admin.Role == models.RoleAdmin || p.Admin.Role == models.RoleSuperAdmin)
}

// GetJWTSecret returns the JWT secret from environment variables
func GetJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET environment variable is required")
	}
	return secret
}

// GetAdminJWTSecret returns the admin token secret, falling back to the user
// secret when no dedicated one is configured.
func GetAdminJWTSecret() string {
	if secret := os.Getenv("ADMIN_JWT_SECRET"); secret != "" {
		return secret
	}
	return GetJWTSecret()
}

func tokenTTL(envKey string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(envKey); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			return ttl
		}
		log.Printf("Warning: invalid %s value %q, using default", envKey, raw)
	}
	return fallback
}

// GenerateJWT mints a user session token. TTL comes from JWT_EXPIRES_IN
// (default 30 days).
func GenerateJWT(userID, email string) (string, error) {
	ttl := tokenTTL("JWT_EXPIRES_IN", 720*time.Hour)

	claims := &JwtCustomClaims{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(GetJWTSecret()))
}

// GenerateAdminJWT mints an admin session token carrying the role claim.
// TTL comes from ADMIN_JWT_EXPIRES_IN (default 24 hours).
func GenerateAdminJWT(adminID, role string) (string, error) {
	ttl := tokenTTL("ADMIN_JWT_EXPIRES_IN", 24*time.Hour)

	claims := &JwtCustomClaims{
		UserID: adminID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(GetAdminJWTSecret()))
}

// ParseToken validates a token string and returns its claims. Admin tokens
// are verified against the admin secret, user tokens against the user secret.
func ParseToken(tokenString string) (*JwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		if claims, ok := token.Claims.(*JwtCustomClaims); ok && claims.Role != "" {
			return []byte(GetAdminJWTSecret()), nil
		}
		return []byte(GetJWTSecret()), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the x-auth-token header used by the admin dashboard.
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Request().Header.Get("x-auth-token")
}

// Protect authenticates the request and attaches a tagged Principal to the
// context. Admin role claims are trusted without a database lookup; regular
// subjects must still exist in the users collection. Every token failure
// collapses to a uniform 401.
func Protect(db *mongo.Client, admin *models.AdminPrincipal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := extractToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "You are not logged in. Please log in to get access.",
				})
			}

			claims, err := ParseToken(tokenString)
			if err != nil {
				log.Printf("Token validation failed: %v", err)
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or expired token. Please log in again.",
				})
			}

			// Elevated role: the admin is a configured singleton, not a record
			if claims.Role == models.RoleAdmin || claims.Role == models.RoleSuperAdmin {
				if admin == nil || claims.UserID != admin.ID {
					return c.JSON(http.StatusUnauthorized, models.Response{
						Status:  http.StatusUnauthorized,
						Message: "Invalid or expired token. Please log in again.",
					})
				}
				c.Set(principalContextKey, &Principal{Admin: admin})
				return next(c)
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or expired token. Please log in again.",
				})
			}

			var user models.User
			err = config.GetCollection(db, "users").FindOne(c.Request().Context(), bson.M{"_id": userID}).Decode(&user)
			if err != nil {
				if err == mongo.ErrNoDocuments {
					return c.JSON(http.StatusUnauthorized, models.Response{
						Status:  http.StatusUnauthorized,
						Message: "The account belonging to this token no longer exists.",
					})
				}
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to resolve account",
				})
			}

			user.Password = ""
			c.Set(principalContextKey, &Principal{User: &user})
			return next(c)
		}
	}
}

// RequireAdmin rejects any request whose principal lacks an elevated role.
// It composes after Protect and performs its own independent check.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := GetPrincipal(c)
			if principal == nil || !principal.IsAdmin() {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Not authorized to perform this action. Admin access required.",
				})
			}
			return next(c)
		}
	}
}

// GetPrincipal returns the principal attached by Protect, or nil.
func GetPrincipal(c echo.Context) *Principal {
	principal, ok := c.Get(principalContextKey).(*Principal)
	if !ok {
		return nil
	}
	return principal
}
