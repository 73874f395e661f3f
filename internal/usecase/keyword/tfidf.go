// Package keyword extracts the keyword sets the Report Agent uses to score
// and title its event clusters (TF-IDF and TextRank), plus an AI-backed
// generator for the report's overall topic seed.
package keyword

import (
	"math"
	"sort"

	"github.com/myki-jim/newssys-sub000/internal/pkg/simhash"
)

// Term is one extracted keyword with its relevance weight.
type Term struct {
	Word  string
	Score float64
}

var tokenizer = simhash.New()

func tokenize(text string) []string {
	raw := tokenizer.Tokenize(text)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if len([]rune(t)) < 2 {
			continue
		}
		if stopwords[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TFIDFModel scores terms by frequency within a document against the
// inverse frequency across the whole fitted corpus. The corpus is every
// cluster text in one extraction batch, so document frequency reflects how
// distinctive a word is among the reporting period's event clusters.
type TFIDFModel struct {
	docs [][]string
	df   map[string]int
}

// Fit builds document-frequency counts from texts, one document per cluster.
func Fit(texts []string) *TFIDFModel {
	m := &TFIDFModel{df: make(map[string]int)}
	for _, text := range texts {
		tokens := tokenize(text)
		m.docs = append(m.docs, tokens)
		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				m.df[t]++
			}
		}
	}
	return m
}

// TopTerms returns the top-k TF-IDF terms for the document at docIndex, as
// ordered when passed to Fit.
func (m *TFIDFModel) TopTerms(docIndex, topK int) []Term {
	if docIndex < 0 || docIndex >= len(m.docs) {
		return nil
	}
	tokens := m.docs[docIndex]
	if len(tokens) == 0 {
		return nil
	}
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	n := float64(len(m.docs))
	terms := make([]Term, 0, len(tf))
	for word, count := range tf {
		idf := math.Log(n/(1+float64(m.df[word]))) + 1
		score := (float64(count) / float64(len(tokens))) * idf
		terms = append(terms, Term{Word: word, Score: score})
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Score > terms[j].Score })
	if len(terms) > topK {
		terms = terms[:topK]
	}
	return terms
}

// MergeWeighted combines two ranked term lists under fixed weights (the
// TF-IDF/TextRank 0.6/0.4 blend), summing scores for terms that appear in
// both lists, and returns the top-k merged terms.
func MergeWeighted(a []Term, weightA float64, b []Term, weightB float64, topK int) []Term {
	scores := make(map[string]float64)
	for _, t := range a {
		scores[t.Word] += t.Score * weightA
	}
	for _, t := range b {
		scores[t.Word] += t.Score * weightB
	}
	merged := make([]Term, 0, len(scores))
	for word, score := range scores {
		merged = append(merged, Term{Word: word, Score: score})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}
