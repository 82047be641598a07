package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	h := func(n int) time.Time { return time.Date(2024, 5, 8, n, 0, 0, 0, time.UTC) }
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", h(10), h(11), h(10), h(11), true},
		{"partial", h(10), h(12), h(11), h(13), true},
		{"contained", h(10), h(14), h(11), h(12), true},
		{"touching", h(10), h(11), h(11), h(12), false},
		{"touching before", h(11), h(12), h(10), h(11), false},
		{"apart", h(8), h(9), h(10), h(11), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Ola", CleanString("  Ola\t"))
	assert.Equal(t, "ola", CleanString(" OLA ", true))
}
