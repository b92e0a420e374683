package middleware

import (
	"net/http"
	"time"

	"table-order-api/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TableSessionCookie gates the customer ordering path
const TableSessionCookie = "table_session"

// TableSession is the signed cookie payload a customer gets after
// scanning a table QR code. It is the only credential the ordering
// path requires.
type TableSession struct {
	RestaurantID  uint   `json:"restaurant_id"`
	TableNo       int    `json:"table_no"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	jwt.RegisteredClaims
}

// IssueTableSession signs a table session cookie value
func IssueTableSession(restaurantID uint, tableNo int, customerName, customerPhone string) (string, error) {
	session := TableSession{
		RestaurantID:  restaurantID,
		TableNo:       tableNo,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, session)
	return token.SignedString(config.JWTSecret())
}

// TableSessionRequired enforces the signed cookie on the customer
// ordering path only. It also checks the session's tenant matches the
// tenant in the path, so a cookie from one restaurant cannot order at
// another.
func TableSessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(TableSessionCookie)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Table session required. Scan the table QR code to start."})
			c.Abort()
			return
		}
		session := &TableSession{}
		token, err := jwt.ParseWithClaims(cookie, session, func(t *jwt.Token) (interface{}, error) {
			return config.JWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired table session"})
			c.Abort()
			return
		}
		restaurant := GetRestaurant(c)
		if restaurant == nil || session.RestaurantID != restaurant.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Table session does not belong to this restaurant"})
			c.Abort()
			return
		}
		c.Set("tableSession", session)
		c.Next()
	}
}

// GetTableSession extracts the customer table session from context
func GetTableSession(c *gin.Context) *TableSession {
	if val, ok := c.Get("tableSession"); ok {
		return val.(*TableSession)
	}
	return nil
}
