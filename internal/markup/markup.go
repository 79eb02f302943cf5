// Package markup converts between Sprout's lightweight markdown subset and
// Anki's rich-text HTML dialect. Both directions run an explicit ordered
// list of named passes so the lossy behavior stays auditable: round trips
// preserve semantic structure for the supported subset, not bytes.
package markup

import "regexp"

// Pass is one named transformation step. Order matters: passes whose
// markers share a delimiter character must run widest first.
type Pass struct {
	Name  string
	Apply func(string) string
}

// run applies passes in order.
func run(passes []Pass, text string) string {
	for _, p := range passes {
		text = p.Apply(text)
	}
	return text
}

// replacePass builds a pass from a single regex substitution.
func replacePass(name, pattern, replacement string) Pass {
	re := regexp.MustCompile(pattern)
	return Pass{
		Name: name,
		Apply: func(s string) string {
			return re.ReplaceAllString(s, replacement)
		},
	}
}

// funcPass builds a pass from a regex and a match-rewriting function.
func funcPass(name, pattern string, fn func(groups []string) string) Pass {
	re := regexp.MustCompile(pattern)
	return Pass{
		Name: name,
		Apply: func(s string) string {
			return re.ReplaceAllStringFunc(s, func(match string) string {
				return fn(re.FindStringSubmatch(match))
			})
		},
	}
}
