package middleware

import (
	"context"

	"pooldesk/internal/auth"
	"pooldesk/internal/lifecycle"
	"pooldesk/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "CurrentUser"

type UserGetter interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// InjectUser находит пользователя по cookie-сессии или Bearer-токену
// и кладёт его в gin.Context, а его id в контекст запроса как автора изменений.
func InjectUser(users UserGetter, issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := sessionUserID(c)
		if uid == 0 && issuer != nil {
			if token := auth.ExtractToken(c.Request); token != "" {
				if claims, err := issuer.Parse(token); err == nil {
					uid = claims.UserID
				}
			}
		}

		if uid > 0 {
			if user, err := users.GetUser(c.Request.Context(), uid); err == nil {
				c.Set(currentUserKey, *user)
				c.Request = c.Request.WithContext(lifecycle.WithActor(c.Request.Context(), user.ID))
			}
		}

		c.Next()
	}
}

func sessionUserID(c *gin.Context) uint {
	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		return uid
	}
	return 0
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
