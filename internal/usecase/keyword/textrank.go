package keyword

import (
	"math"
	"sort"
)

const (
	textRankWindow     = 4
	textRankDamping    = 0.85
	textRankIterations = 30
	textRankTolerance  = 1e-4
)

// TextRank extracts the top-k keywords from text via a word co-occurrence
// graph scored with a PageRank-style iteration, the graph-based complement
// to TFIDFModel's frequency-based scoring.
func TextRank(text string, topK int) []Term {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	index := make(map[string]int)
	var vocab []string
	for _, t := range tokens {
		if _, ok := index[t]; !ok {
			index[t] = len(vocab)
			vocab = append(vocab, t)
		}
	}

	n := len(vocab)
	weights := make([]map[int]float64, n)
	for i := range weights {
		weights[i] = make(map[int]float64)
	}
	for i := range tokens {
		for j := i + 1; j < len(tokens) && j <= i+textRankWindow; j++ {
			a, b := index[tokens[i]], index[tokens[j]]
			if a == b {
				continue
			}
			weights[a][b]++
			weights[b][a]++
		}
	}

	outWeightSum := make([]float64, n)
	for i := 0; i < n; i++ {
		for _, w := range weights[i] {
			outWeightSum[i] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0
	}
	for iter := 0; iter < textRankIterations; iter++ {
		next := make([]float64, n)
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			sum := 0.0
			for j, w := range weights[i] {
				if outWeightSum[j] > 0 {
					sum += w / outWeightSum[j] * scores[j]
				}
			}
			next[i] = (1 - textRankDamping) + textRankDamping*sum
			if delta := math.Abs(next[i] - scores[i]); delta > maxDelta {
				maxDelta = delta
			}
		}
		scores = next
		if maxDelta < textRankTolerance {
			break
		}
	}

	terms := make([]Term, n)
	for i, word := range vocab {
		terms[i] = Term{Word: word, Score: scores[i]}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Score > terms[j].Score })
	if len(terms) > topK {
		terms = terms[:topK]
	}
	return terms
}
