package model

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/explorerfs/pathkey"
)

// ViolationKind is the reason a candidate name was rejected
type ViolationKind uint8

const (
	ViolationEmpty ViolationKind = iota + 1
	ViolationIllegalCharacter
	ViolationAbsolutePath
	ViolationNotDirectory
	ViolationAlreadyExists
	// ViolationWhitespace flags a segment with leading or trailing whitespace.
	// It is only a warning.
	ViolationWhitespace
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationEmpty:
		return "empty name"
	case ViolationIllegalCharacter:
		return "invalid characters"
	case ViolationAbsolutePath:
		return "absolute path not allowed"
	case ViolationNotDirectory:
		return "not a directory"
	case ViolationAlreadyExists:
		return "already exists"
	case ViolationWhitespace:
		return "leading or trailing whitespace"
	default:
		return fmt.Sprintf("ViolationKind(%d)", uint8(k))
	}
}

type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Violation describes why a candidate name cannot be used as is
type Violation struct {
	Kind     ViolationKind
	Segment  string // Offending path segment; empty when the whole name is at fault
	Severity Severity
}

// IsError reports whether the name must be rejected
func (v *Violation) IsError() bool {
	return v != nil && v.Severity == SeverityError
}

// Message returns a user-facing description
func (v *Violation) Message() string {
	switch v.Kind {
	case ViolationEmpty:
		return "A file or folder name must be provided."
	case ViolationIllegalCharacter:
		return fmt.Sprintf("The name %q is not valid as a file or folder name.", v.Segment)
	case ViolationAbsolutePath:
		return "A file or folder name cannot start with a slash."
	case ViolationNotDirectory:
		return fmt.Sprintf("%q is a file and cannot contain other entries.", v.Segment)
	case ViolationAlreadyExists:
		return fmt.Sprintf("A file or folder %q already exists at this location.", v.Segment)
	case ViolationWhitespace:
		return fmt.Sprintf("Leading or trailing whitespace detected in %q.", v.Segment)
	}
	return v.Kind.String()
}

func (v *Violation) String() string {
	return v.Severity.String() + ": " + v.Kind.String()
}

func isNameSeparator(c rune) bool {
	return c == '/' || c == '\\'
}

// ValidateName checks a candidate name for a new child of parent, or for
// renaming self (nil when creating). The candidate may hold several segments
// separated by '/' or '\' to create nested entries. A nil profile uses the
// parent's. The first violation found is returned; nil means the name is valid.
//
// Checks, in order: empty name, characters illegal for the profile, leading
// separator, descending through a file or onto an existing path, and a
// collision with a sibling other than self.
func ValidateName(parent, self *Node, name string, profile *pathkey.Profile) *Violation {
	if parent != nil {
		defer parent.rlock()()
		if profile == nil {
			profile = parent.profile
		}
	}
	if profile == nil {
		profile = pathkey.Current()
	}
	return validateNameLocked(parent, self, name, profile)
}

func validateNameLocked(parent, self *Node, name string, profile *pathkey.Profile) *Violation {
	if strings.TrimSpace(name) == "" {
		return &Violation{Kind: ViolationEmpty}
	}

	segs := strings.FieldsFunc(name, isNameSeparator)
	for _, seg := range segs {
		if !profile.ValidSegment(seg) {
			return &Violation{Kind: ViolationIllegalCharacter, Segment: seg}
		}
	}

	if isNameSeparator(rune(name[0])) {
		return &Violation{Kind: ViolationAbsolutePath}
	}

	if parent != nil {
		if len(segs) > 1 {
			cur := parent
			for i, seg := range segs {
				child, ok := lookupChildLocked(cur, seg, profile)
				if !ok {
					break
				}
				if i == len(segs)-1 {
					return &Violation{Kind: ViolationAlreadyExists, Segment: seg}
				}
				if !child.stat.IsDirectory() {
					return &Violation{Kind: ViolationNotDirectory, Segment: seg}
				}
				cur = child
			}
		} else if existing, ok := lookupChildLocked(parent, segs[0], profile); ok && existing != self {
			return &Violation{Kind: ViolationAlreadyExists, Segment: segs[0]}
		}
	}

	for _, seg := range segs {
		if seg != strings.TrimSpace(seg) {
			return &Violation{Kind: ViolationWhitespace, Segment: seg, Severity: SeverityWarning}
		}
	}
	return nil
}

// lookupChildLocked finds a child of n under the rules of profile, which may
// differ from the profile n's keys were built with
func lookupChildLocked(n *Node, name string, profile *pathkey.Profile) (*Node, bool) {
	if n.profile == profile {
		return n.getChildLocked(name)
	}
	for _, ch := range n.children {
		if profile.Equal(ch.name, name) {
			return ch, true
		}
	}
	return nil, false
}
