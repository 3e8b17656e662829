package interceptors

import (
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-jose/go-jose/v3"

	"github.com/cardlink/go-cardlink-server/global"
)

const (
	tokenExpiryHours = 30 * 24 // 30 days
)

// SessionMiddleware validates the signed session token and stores the
// subject address on the request context
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		// Parse JWS message
		object, err := jose.ParseSigned(auth)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
			return
		}

		// Verify the signature
		payload, err := object.Verify(global.PublicKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Failed to verify session token"})
			return
		}

		var claims map[string]interface{}
		if uErr := json.Unmarshal(payload, &claims); uErr != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session token payload"})
			return
		}
		exp, ok := claims["exp"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session token payload (exp missing)"})
			return
		}
		if int64(exp) < time.Now().Unix() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session token expired"})
			return
		}
		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session token payload (sub missing)"})
			return
		}

		c.Set("subjectAddress", sub)
		c.Next()
	}
}

// GenerateSessionToken signs a session token for the given address with the
// servers ed25519 key
func GenerateSessionToken(serverPrivateKey ed25519.PrivateKey, address string) (string, error) {
	pl := map[string]interface{}{
		"iss": global.Conf.Cardlink.ServerDomain,
		"sub": address,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * tokenExpiryHours).Unix(),
		"aud": "cardlink",
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.EdDSA, Key: serverPrivateKey}, nil)
	if err != nil {
		return "", err
	}

	plBytes, plErr := json.Marshal(pl)
	if plErr != nil {
		return "", plErr
	}
	object, err := signer.Sign(plBytes)
	if err != nil {
		return "", err
	}

	return object.CompactSerialize()
}
