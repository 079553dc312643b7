package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ReferralCode derives a short, stable referral code from a user id using
// SHA-256. Eight hex characters keep codes shareable while leaving collision
// odds negligible at this user scale.
func ReferralCode(userID uint) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("referral:%d", userID)))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}
