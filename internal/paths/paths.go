// Package paths provides path and name validation for every filesystem-touching
// operation in the engine. All checks fail closed: empty or suspicious input is
// rejected before any I/O happens.
package paths

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// documentExtensions is the allow-list of document file types the engine
// will open for reading. Matching is case-insensitive.
var documentExtensions = map[string]bool{
	".pdf":  true,
	".tif":  true,
	".tiff": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// reservedNames are device names rejected as folder names regardless of case.
var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// invalidNameChars are characters that cannot appear in a folder name.
const invalidNameChars = `<>:"/\|?*`

// MaxFolderNameLength bounds user-supplied folder names.
const MaxFolderNameLength = 200

// IsSafePath reports whether path may be handed to the filesystem layer.
// Each rule rejects independently so a bug in one does not approve a
// traversal the others would have caught:
//
//   - any occurrence of ".." or "~" rejects
//   - a doubled separator rejects unless it is a leading UNC prefix
//   - a path that normalization changes while containing ".." rejects
func IsSafePath(path string) bool {
	if path == "" || strings.TrimSpace(path) == "" {
		return false
	}

	if strings.Contains(path, "..") || strings.Contains(path, "~") {
		return false
	}

	if hasDoubledSeparator(path) {
		return false
	}

	cleaned := filepath.Clean(path)
	if cleaned != path && strings.Contains(path, "..") {
		return false
	}

	return true
}

// IsValidDocumentFile reports whether path carries a recognized document
// extension. The extension check is case-insensitive.
func IsValidDocumentFile(path string) bool {
	if path == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return documentExtensions[ext]
}

// IsValidFolderName reports whether name is acceptable as a case or
// extraction folder name.
func IsValidFolderName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false
	}
	if len(name) > MaxFolderNameLength {
		return false
	}
	if reservedNames[strings.ToLower(trimmed)] {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
		if strings.ContainsRune(invalidNameChars, r) {
			return false
		}
	}
	return true
}

// IsValidDirectory reports whether path is safe and refers to an existing
// directory. Stat failures of any kind yield false, never an error.
func IsValidDirectory(ctx context.Context, path string) bool {
	if !IsSafePath(path) {
		return false
	}
	if err := ctx.Err(); err != nil {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func hasDoubledSeparator(path string) bool {
	for _, sep := range []string{"//", `\\`} {
		idx := strings.Index(path, sep)
		for idx >= 0 {
			// A doubled separator is tolerated only as a Windows UNC prefix.
			if idx != 0 || sep != `\\` {
				return true
			}
			next := strings.Index(path[idx+len(sep):], sep)
			if next < 0 {
				break
			}
			idx += len(sep) + next
		}
	}
	return false
}
