package markup

// toHTMLPasses converts markdown inline markers to Anki's HTML tags.
// Bold runs before italic because both use the asterisk delimiter; the
// same holds for the underscore variants.
var toHTMLPasses = []Pass{
	replacePass("bold-asterisk", `\*\*([^*]+?)\*\*`, "<b>$1</b>"),
	replacePass("bold-underscore", `__([^_]+?)__`, "<b>$1</b>"),
	replacePass("italic-asterisk", `\*([^*\n]+?)\*`, "<i>$1</i>"),
	replacePass("italic-underscore", `\b_([^_\n]+?)_\b`, "<i>$1</i>"),
	replacePass("strikethrough", `~~([^~]+?)~~`, "<s>$1</s>"),
	replacePass("highlight", `==([^=\n]+?)==`, "<mark>$1</mark>"),
	replacePass("line-break", `\r?\n`, "<br>"),
}

// ToHTML converts Sprout field markdown to Anki HTML.
func ToHTML(text string) string {
	return run(toHTMLPasses, text)
}
