package keyword

var stopwords = buildStopwords()

func buildStopwords() map[string]bool {
	words := []string{
		"the", "a", "an", "and", "or", "but", "if", "then", "else", "of", "to", "in", "on",
		"at", "by", "for", "with", "about", "against", "between", "into", "through", "during",
		"before", "after", "above", "below", "from", "up", "down", "is", "are", "was", "were",
		"be", "been", "being", "have", "has", "had", "do", "does", "did", "will", "would",
		"should", "could", "can", "may", "might", "must", "shall", "this", "that", "these",
		"those", "it", "its", "as", "not", "no", "nor", "so", "than", "too", "very", "just",
		"also", "said", "says", "according", "reported", "report", "officials", "statement",
	}
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}
