package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-03-10T07:30:00Z", want},
		{"iso without zone", "2024-03-10T07:30:00", want},
		{"space separated", "2024-03-10 07:30:00", want},
		{"minutes only", "2024-03-10 07:30", want},
		{"slashes", "2024/03/10 07:30", want},
		{"us style", "03/10/2024 07:30", want},
		{"date only", " 2024-03-10 ", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input, nil)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseTimestamp("yesterday", time.UTC)
	assert.Error(t, err)
}

func TestTimeToMinutes(t *testing.T) {
	m, err := TimeToMinutes("06:45")
	require.NoError(t, err)
	assert.Equal(t, 405, m)

	_, err = TimeToMinutes("25:00")
	assert.Error(t, err)
}

func TestAtClock(t *testing.T) {
	ref := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	got, err := AtClock(ref, "07:15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 7, 15, 0, 0, time.UTC), got)
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2024-03-10", nil)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Day())

	_, err = ParseDay("10.03.2024", nil)
	assert.Error(t, err)
}
