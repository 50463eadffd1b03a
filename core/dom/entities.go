package dom

import "strings"

// amp stands in for '&' while a document is parsed. The parser never sees a
// character reference, so entities, &nbsp; padding and raw '&' in URLs reach
// the output exactly as written. U+E000 is private use and does not occur in
// editor exports.
const amp = "\ue000"

var (
	protect = strings.NewReplacer("&", amp)
	restore = strings.NewReplacer(amp, "&")
	// unescapeAttr undoes what html.Render adds to attribute values that were
	// not escaped in the source. '"' stays escaped since values are quoted
	// with it.
	unescapeAttr = strings.NewReplacer("&#39;", "'", "&lt;", "<", "&gt;", ">")
)

// source converts tree data back to the characters of the source markup.
func source(s string) string {
	if !strings.Contains(s, amp) {
		return s
	}
	return restore.Replace(s)
}

// tree converts source characters to the form stored in the tree.
func tree(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return protect.Replace(s)
}

// escapeText prepares text data for raw output. Only a '<' that would open
// a tag or comment needs escaping; the parser never produces one.
func escapeText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && i+1 < len(s) && opensMarkup(s[i+1]) {
			b.WriteString(amp + "lt;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func opensMarkup(c byte) bool {
	return c == '/' || c == '!' || c == '?' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
