package parsing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern   = regexp.MustCompile(`<(?i:[a-z!/][^>]*)>`)
	spacePattern     = regexp.MustCompile(`[ \t\f\v]+`)
	blankRunsPattern = regexp.MustCompile(`\n{3,}`)
)

// jobContentSelectors are tried in order to find the posting body.
var jobContentSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
}

// CleanJobText returns the readable text of a job posting. HTML input is
// reduced to the posting body with list items kept as "- " lines; plain text
// only has its whitespace normalized.
func CleanJobText(input string) (string, error) {
	if !htmlTagPattern.MatchString(input) {
		return cleanText(input), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return "", formatError("failed to parse HTML", err)
	}
	doc.Find("nav, footer, header, script, style, noscript, form, .cookie-banner, .apply-button").Remove()

	content := doc.Find("body")
	for _, selector := range jobContentSelectors {
		if s := doc.Find(selector); s.Length() > 0 {
			content = s.First()
			break
		}
	}
	if content.Length() == 0 {
		return "", formatError("HTML has no body", nil)
	}

	content.Find("br").ReplaceWithHtml("\n")
	content.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n- ")
		s.AppendHtml("\n")
	})
	content.Find("p, div, h1, h2, h3, h4, h5, h6, ul, ol, section, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := cleanText(content.Text())
	if text == "" {
		return "", formatError(fmt.Sprintf("no text found in %d bytes of HTML", len(input)), nil)
	}
	return text, nil
}

// cleanText normalizes line endings and inner whitespace and collapses runs
// of blank lines.
func cleanText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
	}
	result := blankRunsPattern.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}
