package nativebuild

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Family is the host operating-system family. Only two are distinguished.
type Family int

const (
	// Other covers every non-Windows host (Linux, macOS, BSDs, ...).
	Other Family = iota
	// Windows covers every windows/* GOOS.
	Windows
)

// ErrInvalidFamily is returned by ParseFamily for unknown names.
var ErrInvalidFamily = errors.New("invalid os family")

func (f Family) String() string {
	switch f {
	case Windows:
		return "windows"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Separator returns the path separator used when composing commands for f.
func (f Family) Separator() string {
	if f == Windows {
		return `\`
	}
	return "/"
}

// DetectFamily reports the family of the running host.
func DetectFamily() Family {
	return familyOf(runtime.GOOS)
}

func familyOf(goos string) Family {
	if goos == "windows" {
		return Windows
	}
	return Other
}

// ParseFamily maps a user-supplied name to a Family. "auto" and the empty
// string detect the running host.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return DetectFamily(), nil
	case "windows", "windows_nt", "win":
		return Windows, nil
	case "other", "posix", "unix", "linux", "darwin", "macos":
		return Other, nil
	default:
		return Other, fmt.Errorf("%w: %q", ErrInvalidFamily, name)
	}
}
