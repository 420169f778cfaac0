package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"FlockCheck/config"
)

// Supervisor PINs are stored hashed with a deployment salt, salt + ":" + pin,
// so a leaked table does not yield usable PINs.

func HashPIN(pin string) string {
	key := config.Cfg.SupervisorPINSalt

	sum := sha256.Sum256([]byte(key + ":" + pin))

	return hex.EncodeToString(sum[:])
}
