package keyword

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/infra/llm"
)

// Generator produces the report-level keyword seed the clustering and
// event-selection stages filter against. It asks an AI collaborator for a
// short, comma-separated keyword list and falls back to simple tokenization
// of the report title when the AI call fails or returns nothing usable.
type Generator struct {
	Chat llm.ChatClient
}

// NewGenerator builds a Generator; chat may be nil, in which case Generate
// always falls back to title tokenization.
func NewGenerator(chat llm.ChatClient) *Generator {
	return &Generator{Chat: chat}
}

const defaultMaxKeywords = 10

var keywordTokenPattern = regexp.MustCompile(`[\p{L}\p{N}]{2,40}`)

// Generate asks the AI collaborator for up to max keywords relevant to
// title within [start, end], optionally steered by a user-supplied prompt
// and rendered in language. It never returns an error: on any failure it
// falls back to tokenizing the title.
func (g *Generator) Generate(ctx context.Context, title string, start, end time.Time, userPrompt, language string, max int) []string {
	if max <= 0 {
		max = defaultMaxKeywords
	}
	if g.Chat == nil {
		return fallbackKeywords(title, max)
	}

	system := buildSystemPrompt(language, max)
	user := buildUserMessage(title, start, end, userPrompt)

	response, err := g.Chat.StreamChat(ctx, system, user, nil)
	if err != nil || strings.TrimSpace(response) == "" {
		return fallbackKeywords(title, max)
	}

	keywords := parseKeywords(response, max)
	if len(keywords) == 0 {
		return fallbackKeywords(title, max)
	}
	return keywords
}

func buildSystemPrompt(language string, max int) string {
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = "en"
	}
	return fmt.Sprintf(
		"You are a news research assistant. Given a report topic and time range, "+
			"propose up to %d concise search keywords or phrases that would surface "+
			"the most relevant news coverage. Respond in %s with a single line of "+
			"comma-separated keywords and nothing else.",
		max, lang,
	)
}

func buildUserMessage(title string, start, end time.Time, userPrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", title)
	fmt.Fprintf(&b, "Time range: %s to %s\n", start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if strings.TrimSpace(userPrompt) != "" {
		fmt.Fprintf(&b, "Additional guidance: %s\n", userPrompt)
	}
	return b.String()
}

func parseKeywords(response string, max int) []string {
	// AI responses sometimes wrap the list in a sentence or add a leading
	// label ("Keywords: a, b, c"); take the last colon-delimited segment
	// before splitting on commas.
	line := response
	if idx := strings.LastIndex(line, ":"); idx >= 0 && idx < len(line)-1 {
		line = line[idx+1:]
	}

	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(line, ",") {
		word := strings.ToLower(strings.TrimSpace(part))
		if word == "" || stopwords[word] || seen[word] {
			continue
		}
		if !keywordTokenPattern.MatchString(word) {
			continue
		}
		seen[word] = true
		out = append(out, word)
		if len(out) >= max {
			break
		}
	}
	return out
}

func fallbackKeywords(title string, max int) []string {
	tokens := tokenize(title)
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) >= max {
			break
		}
	}
	return out
}
