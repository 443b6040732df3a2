package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andympr/my-wedding-backend/internal/models"
	"github.com/andympr/my-wedding-backend/pkg/errors"
	"github.com/andympr/my-wedding-backend/pkg/response"
)

// CtxGuestKey holds the guest resolved from the self-service token.
const CtxGuestKey = "guest"

// GuestToken resolves the :token route parameter to a guest record and aborts
// with 401 when the token is missing or unknown.
func GuestToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			response.Error(c, errors.ErrUnauthorized.WithMessage("Token requerido"))
			c.Abort()
			return
		}

		var guest models.Guest
		err := db.WithContext(c.Request.Context()).
			Preload("Companion").
			Where("token = ?", token).
			Take(&guest).Error
		if err != nil {
			response.Error(c, errors.ErrUnauthorized.WithMessage("Token inválido"))
			c.Abort()
			return
		}

		c.Set(CtxGuestKey, &guest)
		c.Next()
	}
}

// GuestFromContext extracts the guest stored by GuestToken.
func GuestFromContext(c *gin.Context) (*models.Guest, bool) {
	v, ok := c.Get(CtxGuestKey)
	if !ok {
		return nil, false
	}
	guest, ok := v.(*models.Guest)
	return guest, ok && guest != nil
}
