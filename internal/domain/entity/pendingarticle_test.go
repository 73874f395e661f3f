package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLHash_Stable(t *testing.T) {
	u := "https://example.com/a"
	assert.Equal(t, "bea8252ff4e80f41719ea13cdf007273", URLHash(u))
	assert.Equal(t, URLHash(u), URLHash(u))
}

func TestPendingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from PendingStatus
		to   PendingStatus
		want bool
	}{
		{"pending to crawling", PendingStatusPending, PendingStatusCrawling, true},
		{"pending to abandoned", PendingStatusPending, PendingStatusAbandoned, true},
		{"crawling to completed", PendingStatusCrawling, PendingStatusCompleted, true},
		{"crawling to failed", PendingStatusCrawling, PendingStatusFailed, true},
		{"failed retries to crawling", PendingStatusFailed, PendingStatusCrawling, true},
		{"completed is terminal", PendingStatusCompleted, PendingStatusCrawling, false},
		{"abandoned is terminal", PendingStatusAbandoned, PendingStatusPending, false},
		{"low_quality is terminal", PendingStatusLowQuality, PendingStatusCrawling, false},
		{"pending cannot jump to completed", PendingStatusPending, PendingStatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewPendingArticle(t *testing.T) {
	p := NewPendingArticle(1, nil, "https://example.com/a")
	assert.Equal(t, PendingStatusPending, p.Status)
	assert.Equal(t, "bea8252ff4e80f41719ea13cdf007273", p.URLHash)
	assert.NoError(t, p.Validate())
}

func TestPendingArticle_Validate_HashMismatch(t *testing.T) {
	p := NewPendingArticle(1, nil, "https://example.com/a")
	p.URLHash = "deadbeef"
	err := p.Validate()
	assert.Error(t, err)
}
