package superadmin

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"hackreg-backend/entity"
	jwt2 "hackreg-backend/jwt"
)

// GenerateToken mints a Superadmin access token directly from the signing
// key, for bootstrapping before any Superadmin user exists in the store.
func GenerateToken(exp time.Time, key string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &jwt2.AccessClaims{
		Role: entity.RoleSuperadmin,
		StandardClaims: &jwt.StandardClaims{
			ExpiresAt: exp.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    jwt2.Issuer,
		},
	})

	ss, err := token.SignedString([]byte(key))
	if err != nil {
		fmt.Println("Signing failure:", err)
		return "", err
	}

	return ss, nil
}
