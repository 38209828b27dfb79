package engine

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultFontPath looks for a TrueType font in ./fonts, then in the usual
// system locations. It returns "" if none is found.
func DefaultFontPath() string {
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".ttf" || ext == ".ttc" {
				return filepath.Join("fonts", entry.Name())
			}
		}
	}

	for _, p := range systemFontPaths(runtime.GOOS) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func systemFontPaths(goos string) []string {
	switch goos {
	case "windows":
		return []string{`C:\Windows\Fonts\arial.ttf`}
	case "darwin":
		return []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		return []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}
}
