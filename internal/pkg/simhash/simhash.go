// Package simhash computes 64-bit locality-sensitive fingerprints for
// near-duplicate text detection and clusters texts by Hamming similarity.
package simhash

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// TokenType selects how SimHash splits text into tokens.
type TokenType string

const (
	TokenWord TokenType = "word"
	TokenChar TokenType = "char"
)

// DefaultThreshold is the near-duplicate similarity cutoff used throughout
// the clustering and scoring pipeline.
const DefaultThreshold = 0.85

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// SimHash computes fixed-width fingerprints over a configurable bit width
// and tokenizer.
type SimHash struct {
	Bits      int
	TokenType TokenType
}

// New returns a 64-bit word-tokenized SimHash, the default used by the
// clustering and scoring pipeline.
func New() *SimHash {
	return &SimHash{Bits: 64, TokenType: TokenWord}
}

// Tokenize lowercases text, strips punctuation (keeping CJK and word
// characters), and splits into tokens: ASCII runs split on whitespace; CJK
// runs split one code point per token.
func (s *SimHash) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)
	text = nonWordRun.ReplaceAllString(text, " ")

	if s.TokenType == TokenChar {
		return strings.Fields(strings.ReplaceAll(text, " ", ""))
	}

	var tokens []string
	for _, part := range strings.Fields(text) {
		if isCJK(part) {
			for _, r := range part {
				tokens = append(tokens, string(r))
			}
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

func isCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// tokenHashBits returns the leading s.Bits bits of SHA-256(token) as a
// big.Int, mirroring the Python implementation's hex-prefix truncation.
func (s *SimHash) tokenHashBits(token string) *big.Int {
	sum := sha256.Sum256([]byte(token))
	hexDigest := hex.EncodeToString(sum[:])
	nibbles := s.Bits / 4
	if nibbles > len(hexDigest) {
		nibbles = len(hexDigest)
	}
	v := new(big.Int)
	v.SetString(hexDigest[:nibbles], 16)
	return v
}

// ComputeHash returns the unweighted SimHash of text: bit i is set iff the
// accumulated +1/-1 weight across all tokens' hash bit i is non-negative.
func (s *SimHash) ComputeHash(text string) uint64 {
	return s.ComputeHashWeighted(text, nil)
}

// ComputeHashWeighted computes SimHash with an optional per-token external
// weight multiplier layered on top of token frequency, supplementing
// ComputeHash for callers (e.g. keyword-weighted clustering) that want
// some tokens to dominate the fingerprint.
func (s *SimHash) ComputeHashWeighted(text string, weights map[string]float64) uint64 {
	tokens := s.Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}

	weightVec := make([]float64, s.Bits)
	for token, count := range freq {
		hashInt := s.tokenHashBits(token)
		w := float64(count)
		if weights != nil {
			if extra, ok := weights[token]; ok {
				w *= extra
			}
		}
		for i := 0; i < s.Bits; i++ {
			if hashInt.Bit(i) == 1 {
				weightVec[i] += w
			} else {
				weightVec[i] -= w
			}
		}
	}

	var result uint64
	for i := 0; i < s.Bits; i++ {
		if weightVec[i] >= 0 {
			result |= 1 << uint(i)
		}
	}
	return result
}

// HammingDistance returns the number of differing bits between h1 and h2.
func HammingDistance(h1, h2 uint64) int {
	x := h1 ^ h2
	count := 0
	for x != 0 {
		count++
		x &= x - 1
	}
	return count
}

// Similarity returns 1 - hamming(h1,h2)/bits, in [0,1].
func (s *SimHash) Similarity(h1, h2 uint64) float64 {
	return 1.0 - float64(HammingDistance(h1, h2))/float64(s.Bits)
}

// IsDuplicate reports whether h1 and h2 meet threshold similarity.
func (s *SimHash) IsDuplicate(h1, h2 uint64, threshold float64) bool {
	return s.Similarity(h1, h2) >= threshold
}

// Cluster implements single-pass greedy near-duplicate clustering: the
// first unassigned (id, hash) pair starts a cluster and absorbs every
// later unassigned id within threshold similarity of it. It returns a
// partition of ids — every id appears in exactly one cluster, either as a
// representative key or inside that representative's duplicate list.
type Cluster struct {
	Bits      int
	Threshold float64
	TokenType TokenType
}

// NewCluster returns a clusterer using the default 64-bit word SimHash and
// DefaultThreshold.
func NewCluster() *Cluster {
	return &Cluster{Bits: 64, Threshold: DefaultThreshold, TokenType: TokenWord}
}

func (c *Cluster) simhash() *SimHash {
	return &SimHash{Bits: c.Bits, TokenType: c.TokenType}
}

// ClusterTexts clusters texts (keyed by the parallel ids slice) and returns
// {representative_id: [duplicate_ids]}. The representative of each cluster
// is simply the first id encountered in input order within that cluster;
// callers that need the longest-content representative (the spec's
// downstream convention) re-pick from cluster members afterward.
func (c *Cluster) ClusterTexts(texts []string, ids []int64) map[int64][]int64 {
	if len(texts) == 0 {
		return map[int64][]int64{}
	}
	sh := c.simhash()
	hashes := make([]uint64, len(texts))
	for i, t := range texts {
		hashes[i] = sh.ComputeHash(t)
	}

	clusters := make(map[int64][]int64)
	assigned := make(map[int64]bool, len(ids))

	for i, id := range ids {
		if assigned[id] {
			continue
		}
		clusters[id] = []int64{}
		assigned[id] = true

		for j := i + 1; j < len(ids); j++ {
			otherID := ids[j]
			if assigned[otherID] {
				continue
			}
			if sh.IsDuplicate(hashes[i], hashes[j], c.Threshold) {
				clusters[id] = append(clusters[id], otherID)
				assigned[otherID] = true
			}
		}
	}
	return clusters
}

// DuplicatePair is a near-duplicate pair found by FindDuplicates.
type DuplicatePair struct {
	ID1        int64
	ID2        int64
	Similarity float64
}

// FindDuplicates returns every pair of texts at or above threshold
// similarity, sorted by similarity descending.
func (c *Cluster) FindDuplicates(texts []string, ids []int64) []DuplicatePair {
	if len(texts) == 0 {
		return nil
	}
	sh := c.simhash()
	hashes := make([]uint64, len(texts))
	for i, t := range texts {
		hashes[i] = sh.ComputeHash(t)
	}

	var pairs []DuplicatePair
	for i := 0; i < len(hashes); i++ {
		for j := i + 1; j < len(hashes); j++ {
			sim := sh.Similarity(hashes[i], hashes[j])
			if sim >= c.Threshold {
				pairs = append(pairs, DuplicatePair{ID1: ids[i], ID2: ids[j], Similarity: sim})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Similarity > pairs[j].Similarity })
	return pairs
}

// NearestMatch is one result of FindNearest.
type NearestMatch struct {
	ID         int64
	Similarity float64
}

// FindNearest ranks candidates by similarity to query and returns the
// top-k, supplementing ClusterTexts with a point-query used by the
// keyword-search dedup path to check one new article against stored ones
// without a full reclustering pass.
func (c *Cluster) FindNearest(query string, candidates []string, candidateIDs []int64, topK int) []NearestMatch {
	if len(candidates) == 0 {
		return nil
	}
	sh := c.simhash()
	queryHash := sh.ComputeHash(query)

	matches := make([]NearestMatch, len(candidates))
	for i, cand := range candidates {
		matches[i] = NearestMatch{ID: candidateIDs[i], Similarity: sh.Similarity(queryHash, sh.ComputeHash(cand))}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches
}

// TextSimilaritySimple computes word-overlap Jaccard similarity, a cheap
// fallback kept alongside SimHash. It is used only in tests to cross-check
// the clustering invariant that every pair above its output threshold also
// clusters under SimHash; it is not on the production path.
func TextSimilaritySimple(text1, text2 string) float64 {
	norm := func(s string) map[string]struct{} {
		s = nonWordRun.ReplaceAllString(strings.ToLower(s), " ")
		set := make(map[string]struct{})
		for _, w := range strings.Fields(s) {
			set[w] = struct{}{}
		}
		return set
	}
	words1, words2 := norm(text1), norm(text2)
	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}
	intersection := 0
	for w := range words1 {
		if _, ok := words2[w]; ok {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
