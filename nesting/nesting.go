// Package nesting groups related sibling entries under a primary entry,
// driven by configured name patterns such as "*.ts" -> "${capture}.js".
package nesting

import (
	"cmp"
	"path"
	"slices"
	"strings"

	"github.com/brettbedarf/explorerfs/pathkey"
)

// Item is a sibling entry offered for grouping
type Item struct {
	Name  string
	IsDir bool
}

// Group is one top-level entry of a nested listing. Index and Nested refer to
// positions in the slice passed to [Engine.Nest].
type Group struct {
	Index  int
	Nested []int
}

type rule struct {
	primary string // normalized primary pattern
	star    int    // index of '*' in primary; -1 for an exact name
	deps    []string
}

// Engine applies a fixed set of nesting patterns. A zero or disabled Engine
// returns every entry as its own group.
type Engine struct {
	enabled bool
	rules   []rule
	profile *pathkey.Profile
}

// New builds an engine from primary -> dependents patterns. Dependents are
// comma-separated; empty patterns are ignored.
//
// Primary patterns match a file name exactly or contain a single '*' whose
// match is the capture. Dependent patterns may use the variables $(capture),
// ${capture}, ${basename}, ${extname} and ${dirname}. A '*' in a dependent is
// the capture for '*' primaries and a wildcard for exact-name primaries.
func New(enabled bool, patterns map[string]string, profile *pathkey.Profile) *Engine {
	if profile == nil {
		profile = pathkey.Current()
	}
	e := &Engine{enabled: enabled, profile: profile}
	for primary, deps := range patterns {
		primary = strings.TrimSpace(primary)
		if primary == "" || strings.Count(primary, "*") > 1 {
			continue
		}
		r := rule{primary: profile.Normalize(primary)}
		r.star = strings.IndexByte(r.primary, '*')
		for dep := range strings.SplitSeq(deps, ",") {
			if dep = strings.TrimSpace(dep); dep != "" {
				r.deps = append(r.deps, profile.Normalize(dep))
			}
		}
		if len(r.deps) > 0 {
			e.rules = append(e.rules, r)
		}
	}
	// exact names first, then the most literal characters
	slices.SortFunc(e.rules, func(a, b rule) int {
		if (a.star < 0) != (b.star < 0) {
			if a.star < 0 {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(len(b.primary), len(a.primary)); c != 0 {
			return c
		}
		return strings.Compare(a.primary, b.primary)
	})
	return e
}

// Enabled reports whether Nest groups anything
func (e *Engine) Enabled() bool {
	return e != nil && e.enabled && len(e.rules) > 0
}

// Nest groups items in order. Only files can be primaries; dependents can be
// files or directories. Nesting is one level deep: an entry that was claimed
// is never a primary and a primary that claimed entries is never claimed.
// dirname is the name of the directory holding the items.
func (e *Engine) Nest(dirname string, items []Item) []Group {
	if !e.Enabled() {
		groups := make([]Group, len(items))
		for i := range items {
			groups[i] = Group{Index: i}
		}
		return groups
	}

	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = e.profile.Normalize(it.Name)
	}
	claimed := make([]bool, len(items))
	nested := make([][]int, len(items))

	for i, it := range items {
		if it.IsDir || claimed[i] {
			continue
		}
		matchers := e.dependentsFor(keys[i], e.profile.Normalize(dirname))
		if len(matchers) == 0 {
			continue
		}
		for j := range items {
			if j == i || claimed[j] || len(nested[j]) > 0 {
				continue
			}
			for _, m := range matchers {
				if ok, _ := path.Match(m, keys[j]); ok {
					claimed[j] = true
					nested[i] = append(nested[i], j)
					break
				}
			}
		}
	}

	groups := make([]Group, 0, len(items))
	for i := range items {
		if !claimed[i] {
			groups = append(groups, Group{Index: i, Nested: nested[i]})
		}
	}
	return groups
}

// dependentsFor returns the dependent match patterns of the first rule whose
// primary matches name
func (e *Engine) dependentsFor(name, dirname string) []string {
	for _, r := range e.rules {
		capture, ok := r.match(name)
		if !ok {
			continue
		}
		base, ext := splitExt(name)
		vars := map[string]string{
			"capture":  capture,
			"basename": base,
			"extname":  ext,
			"dirname":  dirname,
		}
		out := make([]string, 0, len(r.deps))
		for _, dep := range r.deps {
			out = append(out, expand(dep, vars, r.star >= 0))
		}
		return out
	}
	return nil
}

func (r rule) match(name string) (capture string, ok bool) {
	if r.star < 0 {
		return "", name == r.primary
	}
	prefix, suffix := r.primary[:r.star], r.primary[r.star+1:]
	if len(name) < len(prefix)+len(suffix) || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	return name[len(prefix) : len(name)-len(suffix)], true
}

// expand substitutes variables in a dependent pattern and escapes it for
// path.Match. A bare '*' stands for the primary's capture when stem is set and
// stays a wildcard for exact-name primaries.
func expand(tmpl string, vars map[string]string, stem bool) string {
	var b strings.Builder
	for i := 0; i < len(tmpl); {
		if name, n := variableAt(tmpl[i:]); n > 0 {
			if v, ok := vars[name]; ok {
				b.WriteString(escape(v))
				i += n
				continue
			}
		}
		c := tmpl[i]
		if c == '*' && stem {
			b.WriteString(escape(vars["capture"]))
			i++
			continue
		}
		if c != '*' && strings.IndexByte(`\?[]`, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// variableAt parses "$(name)" or "${name}" at the start of s
func variableAt(s string) (name string, n int) {
	if len(s) < 3 || s[0] != '$' {
		return "", 0
	}
	var closer byte
	switch s[1] {
	case '(':
		closer = ')'
	case '{':
		closer = '}'
	default:
		return "", 0
	}
	end := strings.IndexByte(s[2:], closer)
	if end < 0 {
		return "", 0
	}
	return s[2 : 2+end], end + 3
}

func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(`\*?[]`, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitExt splits "a.b.ts" into "a.b" and "ts". Leading dots do not start an
// extension.
func splitExt(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
