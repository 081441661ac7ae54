package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GetGravatarURL builds a Gravatar URL for an email address. Default size is
// 200px; "mp" gives a neutral placeholder for addresses without a profile.
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}

	email = strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(email))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
