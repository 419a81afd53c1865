package chunker

import (
	"regexp"
	"strings"
)

// Patterns that mark a fragment as navigation. Matching is case-sensitive.
var navigationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\[\s*[A-Za-z\s]+\s*\]\s*\(`),     // fragment opens with a bare link
	regexp.MustCompile(`^\s*(?:!?\[[^\]]*\]\([^)]*\)\s*)+$`), // nothing but links/images
	regexp.MustCompile(`^\s*\*\s*\[\s*`),                     // menu item
	regexp.MustCompile(`logo\s*\)`),
	regexp.MustCompile(`javascript:void`),
	regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`), // image markdown
	regexp.MustCompile(`Previous\s+Next`),
	regexp.MustCompile(`View All`),
	regexp.MustCompile(`Read More`),
}

var lowValueKeywords = []string{
	"javascript", "void(0)", "image", "png", "jpg", "svg",
	"icon/", "storage/images", "logo",
}

// maxKeywordHits is the number of distinct low-value keywords tolerated.
const maxKeywordHits = 2

var (
	imageMarkdownRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkOnlyLineRe  = regexp.MustCompile(`(?m)^[ \t]*\[[ \t]*[A-Za-z \t]+[ \t]*\][ \t]*\([^)]+\)[ \t]*$`)
	jsLinkTargetRe  = regexp.MustCompile(`\]\s*\(javascript:[^)]*\)+`)
	hspaceRunRe     = regexp.MustCompile(`[ \t\f\v\r]+`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// IsNavigation reports whether text is primarily navigation or page chrome.
func IsNavigation(text string) bool {
	for _, re := range navigationPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range lowValueKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits > maxKeywordHits
}

// FilterText strips navigation syntax from a whole document: image markdown,
// lines holding a single bare link, and javascript: link targets. Whitespace
// runs inside a line collapse to one space; newlines are kept so headings and
// paragraphs survive for the chunker.
func FilterText(text string) string {
	text = imageMarkdownRe.ReplaceAllString(text, "")
	text = linkOnlyLineRe.ReplaceAllString(text, "")
	text = jsLinkTargetRe.ReplaceAllString(text, "]")
	text = hspaceRunRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
