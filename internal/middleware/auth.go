package middleware

import (
	"errors"
	"net/http"
	"stackqa/internal/log"
	"stackqa/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CheckUserKey = "profile"
	// SessionKey 登录层写入 session 的 profile id
	SessionKey = "profile_id"
)

// AuthRequired rejects requests without a resolved profile.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentProfile(c).Anonymous() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the profile from session and sets it on the context.
// Unknown ids are treated as anonymous.
func LoadUser(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		profileID := session.Get(SessionKey)

		if profileID != nil {
			var profile models.Profile
			err := conn.WithContext(c.Request.Context()).First(&profile, profileID).Error
			switch {
			case err == nil:
				c.Set(CheckUserKey, &profile)
			case errors.Is(err, gorm.ErrRecordNotFound):
			default:
				log.L.Warn("load session profile failed", zap.Any("profile_id", profileID), zap.Error(err))
			}
		}
		c.Next()
	}
}

// CurrentProfile returns the requester, nil when anonymous.
func CurrentProfile(c *gin.Context) *models.Profile {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	profile, _ := v.(*models.Profile)
	return profile
}
