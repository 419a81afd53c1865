package loader

import (
	"regexp"
	"strings"
)

var (
	pageLabelRe  = regexp.MustCompile(`(?i)[-\s]*Page\s+\d+[-\s]*`)
	pageDashRe   = regexp.MustCompile(`(?m)^[ \t]*-[ \t]*\d+[ \t]*-[ \t]*$`)
	webFooterRe  = regexp.MustCompile(`(?m)^.*?www\..*?\..*?$`)
	copyrightRe  = regexp.MustCompile(`(?mi)^.*?Copyright.*?$`)
	spaceRunRe   = regexp.MustCompile(` {2,}`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdown strips page numbers, web header/footer lines and copyright
// lines from extracted document text, then normalizes spacing.
func CleanMarkdown(content string) string {
	content = pageLabelRe.ReplaceAllString(content, " ")
	content = pageDashRe.ReplaceAllString(content, "")
	content = webFooterRe.ReplaceAllString(content, "")
	content = copyrightRe.ReplaceAllString(content, "")
	content = spaceRunRe.ReplaceAllString(content, " ")
	content = blankLinesRe.ReplaceAllString(content, "\n\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	content = blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(content)
}
