package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const minExtractedTextLength = 50

// noisePatterns match class/id tokens that mark navigation, ads, and other
// non-article chrome; any element whose combined class+id matches one is
// dropped from consideration.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bnav\b`), regexp.MustCompile(`\bnavigation\b`), regexp.MustCompile(`\bmenu\b`),
	regexp.MustCompile(`\bheader\b`), regexp.MustCompile(`\bfooter\b`), regexp.MustCompile(`\bsidebar\b`),
	regexp.MustCompile(`\bside-bar\b`), regexp.MustCompile(`\bwidget\b`), regexp.MustCompile(`\bbanner\b`),
	regexp.MustCompile(`\bad\b`), regexp.MustCompile(`\bcomment\b`), regexp.MustCompile(`\bcomments\b`),
	regexp.MustCompile(`\bshare\b`), regexp.MustCompile(`\bbutton\b`), regexp.MustCompile(`\bbtn\b`),
	regexp.MustCompile(`\bsubscribe\b`), regexp.MustCompile(`\bfollow\b`), regexp.MustCompile(`\blike\b`),
	regexp.MustCompile(`\bsocial\b`), regexp.MustCompile(`\brelated\b`), regexp.MustCompile(`\brecommend\b`),
	regexp.MustCompile(`\bpopular\b`), regexp.MustCompile(`\btrending\b`), regexp.MustCompile(`\btag\b`),
	regexp.MustCompile(`\bcategory\b`), regexp.MustCompile(`\bauthor-info\b`), regexp.MustCompile(`\bbreadcrumb\b`),
	regexp.MustCompile(`\badvertisement\b`), regexp.MustCompile(`\bsponsored\b`), regexp.MustCompile(`\bpromo\b`),
}

var invalidTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(more|continue|read)\s*$`),
	regexp.MustCompile(`(?i)^\s*javascript\s*required`),
	regexp.MustCompile(`(?i)^\s*(please\s+)?enable.*javascript`),
}

var titleSuffixPattern = regexp.MustCompile(`\s*[-_|–:]\s*[^-_|–:]*$`)

// SmartExtractorResult is the salvage output when configured selectors
// miss or a site's layout has drifted.
type SmartExtractorResult struct {
	Title       string
	Content     string
	PublishTime *time.Time
}

// SmartExtractor extracts title/content/time without relying on any
// per-source CSS selector configuration.
type SmartExtractor struct {
	Time *TimeExtractor
}

// NewSmartExtractor returns a ready-to-use extractor.
func NewSmartExtractor() *SmartExtractor {
	return &SmartExtractor{Time: &TimeExtractor{}}
}

// ExtractAll salvages title, content, and publish time from doc.
func (e *SmartExtractor) ExtractAll(doc *goquery.Document, pageURL string) SmartExtractorResult {
	doc.Find("script, style, noscript, iframe, svg").Remove()

	result := SmartExtractorResult{
		Title:   e.extractTitle(doc),
		Content: e.extractContent(doc),
	}
	if dt := e.Time.ExtractPublishTime(doc, pageURL); dt != nil {
		result.PublishTime = dt
	} else if dt := fromURLPath(pageURL); dt != nil {
		result.PublishTime = dt
	}
	return result
}

func (e *SmartExtractor) extractTitle(doc *goquery.Document) string {
	if h1 := cleanText(doc.Find("h1").First().Text()); h1 != "" && len(h1) > 5 && len(h1) < 200 {
		return h1
	}

	if raw := cleanText(doc.Find("title").First().Text()); raw != "" {
		trimmed := titleSuffixPattern.ReplaceAllString(raw, "")
		if len(trimmed) > 5 {
			return trimmed
		}
	}

	if content, ok := doc.Find(`meta[property="og:title"], meta[name="og:title"]`).First().Attr("content"); ok {
		if title := cleanText(content); len(title) > 5 {
			return title
		}
	}

	for _, tag := range []string{"h2", "h3", "h4", "h5", "h6"} {
		if title := cleanText(doc.Find(tag).First().Text()); len(title) > 10 {
			return title
		}
	}

	return ""
}

func (e *SmartExtractor) extractContent(doc *goquery.Document) string {
	for _, tag := range []string{"article", "main"} {
		sel := doc.Find(tag).First()
		if sel.Length() == 0 {
			continue
		}
		if content := textFromElement(sel); len(content) > minExtractedTextLength {
			return content
		}
	}

	var bestContent string
	var bestLength int
	doc.Find("div").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 100 {
			return false
		}
		if isNoise(s) {
			return true
		}
		content := textFromElement(s)
		if len(content) > bestLength && len(content) > minExtractedTextLength {
			bestLength = len(content)
			bestContent = content
		}
		return true
	})
	if bestContent != "" {
		return bestContent
	}

	var paragraphs []string
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 50 {
			return false
		}
		if text := cleanText(s.Text()); len(text) > 20 {
			paragraphs = append(paragraphs, text)
		}
		return true
	})
	return strings.Join(paragraphs, " ")
}

func textFromElement(s *goquery.Selection) string {
	var texts []string
	s.Find("p, div, span, h1, h2, h3, h4, h5, h6, li, td").Each(func(_ int, child *goquery.Selection) {
		if isNoise(child) {
			return
		}
		if text := cleanText(child.Text()); len(text) > 10 {
			texts = append(texts, text)
		}
	})
	if len(texts) > 0 {
		return strings.Join(texts, " ")
	}
	return cleanText(s.Text())
}

func isNoise(s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	combined := strings.ToLower(class + " " + id)
	for _, p := range noisePatterns {
		if p.MatchString(combined) {
			return true
		}
	}
	return false
}

var whitespaceCollapse = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	s = whitespaceCollapse.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	for _, p := range invalidTextPatterns {
		if p.MatchString(s) {
			return ""
		}
	}
	return s
}
