package utils

import (
	"path/filepath"
	"strings"
)

// CleanFilename turns an uploaded filename into a presentable title:
// extension stripped, separators turned into spaces.
func CleanFilename(filename string) string {
	ext := filepath.Ext(filename)
	clean := strings.TrimSuffix(filepath.Base(filename), ext)
	clean = strings.ReplaceAll(clean, "_", " ")
	clean = strings.ReplaceAll(clean, "-", " ")
	return strings.TrimSpace(clean)
}
