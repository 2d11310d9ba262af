// Package jwtmw はAPIクライアント向けのJWT認証ミドルウェアを提供します。
package jwtmw

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// EnvKeyJWTSecret はHS256署名シークレットを保持する環境変数名です。
	EnvKeyJWTSecret = "JWT_SECRET"
	// ContextClientID はコンテキストに格納するクライアントID（subクレーム）のキーです。
	ContextClientID = "clientID"
)

// SecretFromEnv は環境変数からJWTシークレットを読み込みます。
func SecretFromEnv() string {
	return os.Getenv(EnvKeyJWTSecret)
}

// AuthRequired returns a Gin middleware function that validates HS256 bearer tokens
// and restricts access to authenticated API clients only.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorizationヘッダーを取得
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		if secret == "" {
			// サーバーの設定不備（JWT_SECRET未設定）
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 2. 署名を検証（HMACのみ許可）
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 3. subクレームをクライアントIDとして保持
		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Set(ContextClientID, sub)
		}
		c.Next()
	}
}
