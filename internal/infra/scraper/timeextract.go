package scraper

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// dateKeywords maps a language code to the phrases that typically precede
// a publish date on that language's news sites.
var dateKeywords = map[string][]string{
	"zh": {"发布时间", "发布日期", "发表时间", "发表日期", "上传时间", "更新时间"},
	"ru": {"Опубликовано", "дата публикации", "обновлено"},
	"kk": {"Жарияланған", "Жариялану уақыты", "жарияланды"},
	"en": {"Published", "Publish date", "Date published", "Posted", "Updated", "Last updated"},
}

var languageOrder = []string{"zh", "ru", "kk", "en"}

var metaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[property="article:modified_time"]`,
	`meta[property="og:published_time"]`,
	`meta[property="og:updated_time"]`,
	`meta[itemprop="datePublished"]`,
	`meta[itemprop="dateModified"]`,
	`meta[name="twitter:created_at"]`,
	`meta[name="pubdate"]`,
	`meta[name="publish_date"]`,
	`meta[name="date"]`,
	`meta[name="article:published"]`,
	`meta[name="article:published_time"]`,
	`meta[name="DC.date"]`,
	`meta[name="DC.date.created"]`,
	`meta[name="DC.date.issued"]`,
}

var urlDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/(\d{4})[/-](\d{2})[/-](\d{2})/`),
	regexp.MustCompile(`/(\d{4})(\d{2})(\d{2})/`),
	regexp.MustCompile(`/(\d{2})[/-](\d{2})[/-](\d{4})/`),
	regexp.MustCompile(`/(\d{4})[/-](\d{2})/`),
}

var jsonLDTimeFields = []string{
	"datePublished", "dateModified", "dateCreated", "publishDate",
	"uploadDate", "date", "publishedDate", "publicationDate",
}

var isoPattern = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
}

// TimeExtractor locates a page's publish time using the priority ladder:
// JSON-LD, meta tags, URL path, then a body-text keyword scan across
// zh/ru/kk/en date phrases, falling back to a loose natural-language parse.
type TimeExtractor struct{}

// ExtractPublishTime runs the full ladder against a parsed document and
// the page's own URL, returning a UTC instant or nil.
func (t *TimeExtractor) ExtractPublishTime(doc *goquery.Document, pageURL string) *time.Time {
	if dt := t.fromJSONLD(doc); dt != nil {
		return dt
	}
	if dt := t.fromMetaTags(doc); dt != nil {
		return dt
	}
	if dt := fromURLPath(pageURL); dt != nil {
		return dt
	}
	if dt := t.fromBodyText(doc); dt != nil {
		return dt
	}
	return nil
}

func (t *TimeExtractor) fromJSONLD(doc *goquery.Document) *time.Time {
	var found *time.Time
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		for _, candidate := range collectJSONLDTimes(data, 5) {
			if dt, ok := ParseDateTimeString(candidate); ok {
				found = &dt
				return false
			}
		}
		return true
	})
	return found
}

func collectJSONLDTimes(data any, maxDepth int) []string {
	if maxDepth <= 0 {
		return nil
	}
	var out []string
	switch v := data.(type) {
	case map[string]any:
		for _, key := range jsonLDTimeFields {
			if s, ok := v[key].(string); ok && s != "" {
				out = append(out, s)
			}
		}
		for _, nested := range v {
			out = append(out, collectJSONLDTimes(nested, maxDepth-1)...)
		}
	case []any:
		for _, item := range v {
			out = append(out, collectJSONLDTimes(item, maxDepth-1)...)
		}
	}
	return out
}

func (t *TimeExtractor) fromMetaTags(doc *goquery.Document) *time.Time {
	for _, sel := range metaSelectors {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok || content == "" {
			continue
		}
		if dt, ok := ParseDateTimeString(content); ok {
			return &dt
		}
	}
	return nil
}

func fromURLPath(pageURL string) *time.Time {
	for _, pattern := range urlDatePatterns {
		m := pattern.FindStringSubmatch(pageURL)
		if m == nil {
			continue
		}
		groups := m[1:]
		var y, mo, d int
		var err error
		switch len(groups) {
		case 3:
			y, mo, d, err = resolveYMD(groups)
		case 2:
			y, err = strconv.Atoi(groups[0])
			if err == nil {
				mo, err = strconv.Atoi(groups[1])
				d = 1
			}
		}
		if err != nil || y <= 2000 || y >= 2100 || mo < 1 || mo > 12 || d < 1 || d > 31 {
			continue
		}
		dt := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		return &dt
	}
	return nil
}

// resolveYMD handles both /YYYY/MM/DD/ and the /DD/MM/YYYY/ variant seen on
// Russian/Kazakh sites, detected by which group is 4 digits long.
func resolveYMD(groups []string) (y, mo, d int, err error) {
	if len(groups[0]) == 4 {
		y, err = strconv.Atoi(groups[0])
		if err == nil {
			mo, err = strconv.Atoi(groups[1])
		}
		if err == nil {
			d, err = strconv.Atoi(groups[2])
		}
		return
	}
	d, err = strconv.Atoi(groups[0])
	if err == nil {
		mo, err = strconv.Atoi(groups[1])
	}
	if err == nil {
		y, err = strconv.Atoi(groups[2])
	}
	return
}

func (t *TimeExtractor) fromBodyText(doc *goquery.Document) *time.Time {
	for _, lang := range languageOrder {
		for _, keyword := range dateKeywords[lang] {
			var result *time.Time
			doc.Find("time, span, div, p, small, td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := strings.TrimSpace(s.Text())
				if !strings.Contains(text, keyword) {
					return true
				}
				if dt := ExtractDateFromText(text); dt != nil {
					result = dt
					return false
				}
				return true
			})
			if result != nil {
				return result
			}
		}
	}

	var attrResult *time.Time
	doc.Find("time[datetime]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("datetime"); ok {
			if dt, ok := ParseDateTimeString(v); ok {
				attrResult = &dt
				return false
			}
		}
		return true
	})
	if attrResult != nil {
		return attrResult
	}

	return ExtractDateFromText(doc.Text())
}

// ExtractDateFromText scans free text for an ISO date/time first, then
// falls back to a loose natural-language parse.
func ExtractDateFromText(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, pattern := range isoPattern {
		if m := pattern.FindString(text); m != "" {
			if dt, ok := ParseDateTimeString(m); ok {
				return &dt
			}
		}
	}
	if dt, err := dateparse.ParseAny(text); err == nil {
		dt = dt.UTC()
		return &dt
	}
	return nil
}

var timeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"02/01/2006",
}

// ParseDateTimeString parses a timestamp using the ISO/common-format
// layouts first, and dateparse.ParseAny as a general-purpose fallback.
// Naive (no offset) timestamps are assumed UTC; a trailing Z is treated as
// an explicit UTC offset.
func ParseDateTimeString(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
