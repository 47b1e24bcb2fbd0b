package util

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileExt returns the lower-cased extension without the leading dot.
func FileExt(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
}

// ExtensionAccepted checks a file name against the resource's accepted
// extensions. An empty accept list means any type is allowed.
func ExtensionAccepted(fileName string, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}
	ext := FileExt(fileName)
	for _, a := range accepted {
		if strings.TrimPrefix(strings.ToLower(a), ".") == ext {
			return true
		}
	}
	return false
}

// UniqueFileName prefixes the original name with a timestamp and a short
// uuid so repeated uploads of the same file never collide in storage.
func UniqueFileName(original string) string {
	base := filepath.Base(original)
	return fmt.Sprintf("%d_%s_%s", time.Now().Unix(), uuid.New().String()[:8], base)
}

// BuildSubmissionPath lays out submission objects as
// submissions/<pathway>/<user>/<resource>/<file>.
func BuildSubmissionPath(pathwayID string, userID uint, resourceID, fileName string) string {
	return fmt.Sprintf("submissions/%s/%d/%s/%s", pathwayID, userID, resourceID, fileName)
}
