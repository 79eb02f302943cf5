package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Placeholder markers protecting meaningful tags from the strip pass.
// The control characters never appear in field text.
const (
	placeholderOpen  = "\x01"
	placeholderClose = "\x02"
)

// protectedTags are meaningful to Anki but have no markdown equivalent.
// They survive the tag strip via a reversible placeholder substitution.
var protectedTags = []string{"u", "sub", "sup"}

// blockPasses convert block-level structure. They run before inline
// passes so block contents still carry their inline tags when rewritten.
var blockPasses = []Pass{
	funcPass("heading", `(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`, func(groups []string) string {
		level := int(groups[1][0] - '0')
		return "\n\n" + strings.Repeat("#", level) + " " + strings.TrimSpace(groups[2]) + "\n\n"
	}),
	replacePass("rule", `(?i)<hr[^>]*>`, "\n\n---\n\n"),
	funcPass("blockquote", `(?is)<blockquote[^>]*>(.*?)</blockquote>`, func(groups []string) string {
		lines := strings.Split(strings.TrimSpace(groups[1]), "\n")
		for i, line := range lines {
			lines[i] = "> " + strings.TrimSpace(line)
		}
		return "\n\n" + strings.Join(lines, "\n") + "\n\n"
	}),
	funcPass("preformatted", `(?is)<pre[^>]*>(?:\s*<code[^>]*>)?(.*?)(?:</code>\s*)?</pre>`, func(groups []string) string {
		return "\n\n```\n" + strings.TrimSpace(groups[1]) + "\n```\n\n"
	}),
	funcPass("table", `(?is)<table[^>]*>(.*?)</table>`, func(groups []string) string {
		return convertTable(groups[1])
	}),
	funcPass("ordered-list", `(?is)<ol[^>]*>(.*?)</ol>`, func(groups []string) string {
		return convertList(groups[1], true)
	}),
	funcPass("unordered-list", `(?is)<ul[^>]*>(.*?)</ul>`, func(groups []string) string {
		return convertList(groups[1], false)
	}),
}

// inlinePasses convert inline formatting tags to markdown markers.
var inlinePasses = []Pass{
	replacePass("bold", `(?is)<(?:b|strong)[^>]*>(.*?)</(?:b|strong)>`, "**$1**"),
	replacePass("italic", `(?is)<(?:i|em)[^>]*>(.*?)</(?:i|em)>`, "*$1*"),
	replacePass("strikethrough", `(?is)<(?:s|del|strike)[^>]*>(.*?)</(?:s|del|strike)>`, "~~$1~~"),
	replacePass("inline-code", `(?is)<code[^>]*>(.*?)</code>`, "`$1`"),
	replacePass("highlight", `(?is)<mark[^>]*>(.*?)</mark>`, "==$1=="),
}

// breakPasses normalize explicit breaks and paragraph containers into
// newlines before the strip pass removes whatever markup remains.
var breakPasses = []Pass{
	replacePass("line-break", `(?i)<br\s*/?>`, "\n"),
	replacePass("paragraph-close", `(?i)</(?:p|div)>`, "\n\n"),
	replacePass("paragraph-open", `(?i)<(?:p|div)[^>]*>`, ""),
}

var (
	stripTagPattern = regexp.MustCompile(`<[^>]+>`)
	protectPatterns = buildProtectPatterns()
)

type protectPattern struct {
	re          *regexp.Regexp
	placeholder string
	restored    string
}

func buildProtectPatterns() []protectPattern {
	var out []protectPattern
	for _, tag := range protectedTags {
		out = append(out,
			protectPattern{
				re:          regexp.MustCompile(`(?i)<` + tag + `[^>]*>`),
				placeholder: placeholderOpen + tag + placeholderClose,
				restored:    "<" + tag + ">",
			},
			protectPattern{
				re:          regexp.MustCompile(`(?i)</` + tag + `>`),
				placeholder: placeholderOpen + "/" + tag + placeholderClose,
				restored:    "</" + tag + ">",
			},
		)
	}
	return out
}

// stripPasses remove all remaining tags, keeping the protected set via a
// reversible placeholder substitution, then decode HTML entities.
var stripPasses = []Pass{
	{Name: "protect-tags", Apply: func(s string) string {
		for _, p := range protectPatterns {
			s = p.re.ReplaceAllString(s, p.placeholder)
		}
		return s
	}},
	{Name: "strip-tags", Apply: func(s string) string {
		return stripTagPattern.ReplaceAllString(s, "")
	}},
	{Name: "restore-tags", Apply: func(s string) string {
		for _, p := range protectPatterns {
			s = strings.ReplaceAll(s, p.placeholder, p.restored)
		}
		return s
	}},
	{Name: "decode-entities", Apply: func(s string) string {
		s = html.UnescapeString(s)
		// &nbsp; decodes to U+00A0; field text wants a plain space.
		return strings.ReplaceAll(s, "\u00a0", " ")
	}},
}

// cleanupPasses remove empty-marker artifacts left by stripped or empty
// tags and normalize list glyphs to the dash marker.
var cleanupPasses = []Pass{
	replacePass("empty-bold", `\*\*(\s*)\*\*`, "$1"),
	replacePass("empty-strikethrough", `~~(\s*)~~`, "$1"),
	replacePass("empty-highlight", `==(\s*)==`, "$1"),
	replacePass("bullet-glyphs", `(?m)^[ \t]*[•‣◦+*][ \t]+`, "- "),
	replacePass("collapse-blank-lines", `\n{3,}`, "\n\n"),
	{Name: "trim", Apply: strings.TrimSpace},
}

// toMarkdownPasses is the full inbound chain: blocks, then inline, then
// break normalization, then strip/decode, then cleanup.
var toMarkdownPasses = concat(blockPasses, inlinePasses, breakPasses, stripPasses, cleanupPasses)

func concat(chains ...[]Pass) []Pass {
	var out []Pass
	for _, c := range chains {
		out = append(out, c...)
	}
	return out
}

// ToMarkdown converts Anki field HTML to Sprout markdown. The conversion
// is lossy: unsupported structure is flattened to plain text.
func ToMarkdown(text string) string {
	return run(toMarkdownPasses, text)
}

var (
	rowPattern  = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellPattern = regexp.MustCompile(`(?is)<t[hd][^>]*>(.*?)</t[hd]>`)
	itemPattern = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
)

func convertTable(inner string) string {
	var lines []string
	for i, row := range rowPattern.FindAllStringSubmatch(inner, -1) {
		var cells []string
		for _, cell := range cellPattern.FindAllStringSubmatch(row[1], -1) {
			cells = append(cells, strings.TrimSpace(cell[1]))
		}
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			seps := make([]string, len(cells))
			for j := range seps {
				seps[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}

func convertList(inner string, ordered bool) string {
	var lines []string
	for i, item := range itemPattern.FindAllStringSubmatch(inner, -1) {
		text := strings.TrimSpace(item[1])
		if ordered {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, text))
		} else {
			lines = append(lines, "- "+text)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}
