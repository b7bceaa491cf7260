// Package pathkey implements OS-aware equality and ordering of path segments.
//
// Every lookup, child-map key and name-collision check in the explorer tree goes
// through a [Profile] so behavior can be parameterized by platform in tests.
package pathkey

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/text/cases"
)

// Separator is the separator used in explorer tree paths
const Separator = "/"

// Profile describes the path rules of a target operating system.
type Profile struct {
	Name          string
	CaseSensitive bool
	// IllegalChars lists characters that may not appear in a name segment
	IllegalChars string
	// IllegalControl rejects ASCII control characters
	IllegalControl bool
	// ReservedNames rejects device names such as CON, NUL or LPT1
	ReservedNames bool
	// NoTrailingDotSpace rejects names ending with '.' or ' '
	NoTrailingDotSpace bool
	// BackslashSeparator treats '\' as a path separator in addition to '/'
	BackslashSeparator bool
	// MaxNameLength is the maximum segment length in bytes; 0 means unlimited
	MaxNameLength int
}

// Built-in profiles
var (
	Linux = &Profile{
		Name:          "linux",
		CaseSensitive: true,
		MaxNameLength: 255,
	}
	Darwin = &Profile{
		Name:          "darwin",
		MaxNameLength: 255,
	}
	Windows = &Profile{
		Name:               "windows",
		IllegalChars:       `<>:"|?*`,
		IllegalControl:     true,
		ReservedNames:      true,
		NoTrailingDotSpace: true,
		BackslashSeparator: true,
		MaxNameLength:      255,
	}
)

// Current returns the profile of the running platform
func Current() *Profile {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin", "ios":
		return Darwin
	default:
		return Linux
	}
}

// Lookup resolves a profile by name. The empty string returns [Current].
func Lookup(name string) (*Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return Current(), nil
	case "linux", "posix", "unix":
		return Linux, nil
	case "darwin", "macos", "mac":
		return Darwin, nil
	case "windows", "win":
		return Windows, nil
	}
	return nil, fmt.Errorf("unknown os profile: %q", name)
}

func (p *Profile) String() string {
	return p.Name
}

// Normalize returns the comparison key of a segment or path. Case-sensitive
// profiles return s unchanged; the others fold case. The original casing is
// kept by callers for display.
func (p *Profile) Normalize(s string) string {
	if p.CaseSensitive {
		return s
	}
	// Casers are stateful so one is created per call
	return cases.Fold().String(s)
}

// Equal reports whether a and b name the same entry under this profile
func (p *Profile) Equal(a, b string) bool {
	if p.CaseSensitive {
		return a == b
	}
	return a == b || p.Normalize(a) == p.Normalize(b)
}

// Compare orders a and b by their normalized keys
func (p *Profile) Compare(a, b string) int {
	return strings.Compare(p.Normalize(a), p.Normalize(b))
}

// IsSeparator reports whether c separates path segments under this profile
func (p *Profile) IsSeparator(c rune) bool {
	return c == '/' || (p.BackslashSeparator && c == '\\')
}

// Split breaks a tree path into its segments, dropping empty ones so that
// leading, trailing and doubled separators are ignored. "/" yields no segments.
func (p *Profile) Split(path string) []string {
	return strings.FieldsFunc(path, p.IsSeparator)
}

// Join appends name to a parent path without doubling the separator
func (p *Profile) Join(parent, name string) string {
	if parent == "" {
		return name
	}
	if strings.HasSuffix(parent, Separator) {
		return parent + name
	}
	return parent + Separator + name
}

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// ValidSegment reports whether seg is a legal single name under this profile.
// Separators are not considered; callers split candidates first.
func (p *Profile) ValidSegment(seg string) bool {
	if seg == "" || seg == "." || seg == ".." {
		return false
	}
	if p.MaxNameLength > 0 && len(seg) > p.MaxNameLength {
		return false
	}
	for _, c := range seg {
		if p.IllegalControl && c < 0x20 {
			return false
		}
		if strings.ContainsRune(p.IllegalChars, c) {
			return false
		}
	}
	if p.NoTrailingDotSpace && (strings.HasSuffix(seg, ".") || strings.HasSuffix(seg, " ")) {
		return false
	}
	if p.ReservedNames {
		base, _, _ := strings.Cut(seg, ".")
		if _, ok := reservedNames[strings.ToUpper(strings.TrimSpace(base))]; ok {
			return false
		}
	}
	return true
}
