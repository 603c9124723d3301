package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"agent-hub/domain/dto"
	"agent-hub/infrastructure/configuration"
)

// Auth validates the dashboard's bearer JWT and exposes its subject as
// user_id on the request context.
func Auth() gin.HandlerFunc {
	res := dto.Err("401", "Unauthorized")
	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		parts := strings.Split(authorization, "Bearer ")
		if len(parts) != 2 || parts[1] == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(configuration.C.App.SecretKey), nil
		})
		if err != nil || !token.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, describe(err, res))
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			ctx.Set("user_id", sub)
		}
		ctx.Next()
	}
}

func describe(err error, res dto.Res) dto.Res {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			res.ResponseMessage = "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			res.ResponseMessage = "Timing is everything"
		}
	}
	return res
}

// WebhookSecret guards engine-facing callback routes with a shared
// header secret. Routes stay open when no secret is configured, which
// keeps local development friction-free.
func WebhookSecret() gin.HandlerFunc {
	return requireHeaderSecret("X-Webhook-Secret", func() string {
		return configuration.C.Engine.WebhookSecret
	})
}

// CronSecret guards scheduler-triggered routes like the inbox poll.
func CronSecret() gin.HandlerFunc {
	return requireHeaderSecret("X-Cron-Secret", func() string {
		return configuration.C.Engine.CronSecret
	})
}

func requireHeaderSecret(header string, secret func() string) gin.HandlerFunc {
	res := dto.Err("403", "Forbidden")
	return func(ctx *gin.Context) {
		expected := secret()
		if expected == "" {
			ctx.Next()
			return
		}
		provided := ctx.Request.Header.Get(header)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusForbidden, res)
			return
		}
		ctx.Next()
	}
}
