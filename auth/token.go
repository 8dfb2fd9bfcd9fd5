// Package auth holds the credential primitives of the API: bcrypt password
// hashing and HS256 JWT issuing and verification.
package auth

import (
	"time"

	"github.com/Luismorlan/conduit/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const DefaultTokenTTL = 7200 * time.Second

var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload: the user's id and email plus the registered
// expiry fields.
type Claims struct {
	Id    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWT signs and verifies tokens with a shared HMAC secret.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWT) Issue(user *model.User) (string, error) {
	now := j.now()
	claims := Claims{
		Id:    user.Id,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the claims. Every failure is
// reported as ErrInvalidToken.
func (j *JWT) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid || claims.Id == "" {
		return nil, errors.Wrapf(ErrInvalidToken, "%v", err)
	}
	return claims, nil
}
