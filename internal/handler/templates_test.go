package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DukeRupert/tesis/internal/domain"
)

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Ana María Pérez":  "AM",
		"García, Lucía":    "GL",
		"ñandú":            "Ñ",
		"  ":               "",
		"Óscar  Ibáñez X.": "ÓI",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, initials(in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "corto", truncate("corto", 10))
	assert.Equal(t, "revisió…", truncate("revisión final", 7))
	assert.Equal(t, "exacto", truncate("exacto", 6))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "05/03/2024", formatTime(ts, dateLayout))
	assert.Equal(t, "05/03/2024 14:30", formatTime(ts, dateTimeLayout))
	assert.Empty(t, formatTime(time.Time{}, dateLayout))
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "bg-yellow-100 text-yellow-800", statusColor(domain.ReviewStatusObserved))
	assert.Equal(t, "bg-blue-100 text-blue-800", statusColor(domain.ProposalStatusSubmitted))
	assert.Equal(t, "bg-gray-100 text-gray-600", statusColor("archived"))
}

func TestCSRFField(t *testing.T) {
	got := string(csrfField(`a"b<c`))
	assert.Equal(t, `<input type="hidden" name="csrf_token" value="a&#34;b&lt;c">`, got)
}
