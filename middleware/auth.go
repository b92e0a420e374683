package middleware

import (
	"net/http"
	"strings"
	"time"

	"table-order-api/config"
	"table-order-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims resolve a session token to {role, tenant}. RestaurantID is 0
// for the super admin, who is not bound to any tenant.
type Claims struct {
	Role         models.Role `json:"role"`
	RestaurantID uint        `json:"restaurant_id"`
	StaffID      uint        `json:"staff_id,omitempty"`
	Name         string      `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func signed(claims Claims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret())
}

// GenerateStaffToken creates a signed JWT for a kitchen staff login
func GenerateStaffToken(staff *models.Staff) (string, error) {
	return signed(Claims{
		Role:         models.RoleKitchenStaff,
		RestaurantID: staff.RestaurantID,
		StaffID:      staff.ID,
		Name:         staff.FullName,
	})
}

// GenerateAdminToken creates a signed JWT for a tenant admin login
func GenerateAdminToken(r *models.Restaurant) (string, error) {
	return signed(Claims{
		Role:         models.RoleAdmin,
		RestaurantID: r.ID,
		Name:         r.Name,
	})
}

// GenerateSuperAdminToken creates a signed JWT for the super admin
func GenerateSuperAdminToken() (string, error) {
	return signed(Claims{Role: models.RoleSuperAdmin, Name: "super admin"})
}

// ParseToken validates a signed token and returns its claims
func ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return config.JWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// AuthRequired validates the JWT and injects claims into context
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			c.Abort()
			return
		}
		claims, err := ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found in context"})
			c.Abort()
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied. Required role(s): " + rolesString(roles)})
		c.Abort()
	}
}

func rolesString(roles []models.Role) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += ", "
		}
		s += string(r)
	}
	return s
}

// TenantRequired resolves the :tenant path segment to a restaurant and
// injects it into context. A blocked tenant is rejected outright, so a
// flip to is_blocked force-expires every cached session of that tenant
// on its next request and no queued write lands afterward.
func TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurant models.Restaurant
		if err := config.DB.Where("slug = ?", c.Param("tenant")).First(&restaurant).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			c.Abort()
			return
		}
		if restaurant.IsBlocked {
			c.JSON(http.StatusForbidden, gin.H{"error": "Restaurant is blocked", "session_expired": true})
			c.Abort()
			return
		}
		c.Set("restaurant", &restaurant)
		c.Next()
	}
}

// TenantMatchRequired ensures the caller's token belongs to the tenant
// in the path. Runs after AuthRequired and TenantRequired.
func TenantMatchRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		restaurant := GetRestaurant(c)
		if claims == nil || restaurant == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Session context missing"})
			c.Abort()
			return
		}
		if claims.Role != models.RoleSuperAdmin && claims.RestaurantID != restaurant.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "This session does not belong to this restaurant"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetClaims extracts the caller's session claims from context
func GetClaims(c *gin.Context) *Claims {
	if val, ok := c.Get("claims"); ok {
		return val.(*Claims)
	}
	return nil
}

// GetRestaurant extracts the resolved tenant from context
func GetRestaurant(c *gin.Context) *models.Restaurant {
	if val, ok := c.Get("restaurant"); ok {
		return val.(*models.Restaurant)
	}
	return nil
}
