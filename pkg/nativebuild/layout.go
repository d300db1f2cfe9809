package nativebuild

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Default layout names.
const (
	DefaultLibraryDir = "super_native_extensions"
	DefaultToolDir    = "cargokit"

	PosixScript   = "build_ohos.sh"
	WindowsScript = "build_ohos.bat"
)

// ErrInvalidModulePath is returned for empty or relative module paths.
var ErrInvalidModulePath = errors.New("invalid module path")

// Layout names the sibling directories the build script lives in. The script
// directory is always two levels above the module path, then LibraryDir, then
// ToolDir.
type Layout struct {
	LibraryDir string
	ToolDir    string
}

// DefaultLayout returns the stock super_native_extensions/cargokit layout.
func DefaultLayout() Layout {
	return Layout{LibraryDir: DefaultLibraryDir, ToolDir: DefaultToolDir}
}

func (l Layout) withDefaults() Layout {
	if l.LibraryDir == "" {
		l.LibraryDir = DefaultLibraryDir
	}
	if l.ToolDir == "" {
		l.ToolDir = DefaultToolDir
	}
	return l
}

// ScriptDir returns modulePath/../../LibraryDir/ToolDir joined with the
// family's separator. The path is not cleaned.
func (l Layout) ScriptDir(family Family, modulePath string) string {
	l = l.withDefaults()
	sep := family.Separator()
	return strings.Join([]string{modulePath, "..", "..", l.LibraryDir, l.ToolDir}, sep)
}

// ScriptName returns the build script file name for family.
func ScriptName(family Family) string {
	if family == Windows {
		return WindowsScript
	}
	return PosixScript
}

// IsAbs reports whether p is absolute under family's rules, independent of
// the host the check runs on.
func IsAbs(family Family, p string) bool {
	if family == Windows {
		if strings.HasPrefix(p, `\\`) || strings.HasPrefix(p, "//") {
			return true
		}
		return len(p) >= 3 && isDriveLetter(p[0]) && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
	}
	return strings.HasPrefix(p, "/")
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// CheckModulePath validates modulePath for family.
func CheckModulePath(family Family, modulePath string) error {
	if strings.TrimSpace(modulePath) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidModulePath)
	}
	if !IsAbs(family, modulePath) {
		return fmt.Errorf("%w: %q is not absolute on %s", ErrInvalidModulePath, modulePath, family)
	}
	return nil
}

// cleanDir lexically resolves ".." elements of dir for family.
func cleanDir(family Family, dir string) string {
	if family != Windows {
		return path.Clean(dir)
	}

	slashed := strings.ReplaceAll(dir, `\`, "/")
	prefix := ""
	switch {
	case strings.HasPrefix(slashed, "//"):
		prefix = "//"
		slashed = slashed[2:]
	case len(slashed) >= 2 && slashed[1] == ':':
		prefix = slashed[:2]
		slashed = slashed[2:]
	}
	cleaned := path.Clean("/" + slashed)
	if prefix == "//" {
		cleaned = strings.TrimPrefix(cleaned, "/")
	}
	return strings.ReplaceAll(prefix+cleaned, "/", `\`)
}
