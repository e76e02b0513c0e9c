package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// GenerateDeviceToken signs a token carrying the installation's device id.
// Device identity has to stay stable for as long as the install lives,
// so the expiry is a year rather than a session-sized window.
func GenerateDeviceToken(deviceID string) (string, error) {
	secretStr := os.Getenv("JWT_SECRET")
	if secretStr == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	jwtSecret := []byte(secretStr)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"device_id": deviceID,
		"exp":       time.Now().Add(365 * 24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseDeviceToken validates a device token and returns the device id claim.
func ParseDeviceToken(tokenString string) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid device token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	deviceID, ok := claims["device_id"].(string)
	if !ok || deviceID == "" {
		return "", fmt.Errorf("device_id claim missing")
	}

	return deviceID, nil
}
