package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"FlockCheck/config"
)

// Kiosk stations authenticate with a JWT identifying the station and its
// campus. The shared generator is used by both this package and the auth
// middleware.

const (
	IdentityKey = "station_id"
	CampusKey   = "campus_id"
)

var sharedGenerator *jwt.HertzJWTMiddleware

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})

	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator returns the shared generator (used by the auth middleware).
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// GenerateStationToken issues a kiosk station token. campusID may be zero for
// stations not bound to a campus.
func GenerateStationToken(stationID string, campusID int64) (accessToken string, expiresIn int, err error) {
	if sharedGenerator == nil {
		return "", 0, fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute)

	claims := jwtv5.MapClaims{
		IdentityKey: stationID,
		CampusKey:   campusID,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	tokenObj := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	accessToken, err = tokenObj.SignedString([]byte(config.Cfg.JWTSecret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate station token: %w", err)
	}

	expiresIn = int(time.Until(expiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	return accessToken, expiresIn, nil
}

// ValidateStationToken parses a station token and returns the station id.
func ValidateStationToken(tokenString string) (stationID string, err error) {
	token, err := jwtv5.ParseWithClaims(tokenString, jwtv5.MapClaims{}, func(token *jwtv5.Token) (interface{}, error) {
		if token.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Cfg.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse station token: %w", err)
	}

	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid station token")
	}

	stationID, ok = claims[IdentityKey].(string)
	if !ok || stationID == "" {
		return "", fmt.Errorf("station token missing identity claim")
	}

	return stationID, nil
}
