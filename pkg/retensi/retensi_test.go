package retensi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
		want  string
	}{
		{name: "storage layout", input: "2023-12-31", ok: true, want: "2023-12-31"},
		{name: "display layout", input: "31-12-2023", ok: true, want: "2023-12-31"},
		{name: "timestamp", input: "2023-12-31T00:00:00Z", ok: true, want: "2023-12-31"},
		{name: "datetime", input: "2023-12-31 10:11:12", ok: true, want: "2023-12-31"},
		{name: "blank", input: "  ", ok: false},
		{name: "garbage", input: "tiga puluh", ok: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, ok := ParseDate(test.input)
			require.Equal(t, test.ok, ok)
			if test.ok {
				assert.Equal(t, test.want, d.Format(StorageLayout))
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2024, time.January, 1, 8, 30, 0, 0, time.UTC)

	assert.True(t, IsExpired("2023-12-31", now), "day after end is expired")
	assert.False(t, IsExpired("2024-01-01", now), "end day itself is not expired")
	assert.False(t, IsExpired("2025-06-01", now))
	assert.False(t, IsExpired("", now), "missing date never forces a transfer")
	assert.False(t, IsExpired("bukan tanggal", now))
}

func TestDeriveInactivePeriod(t *testing.T) {
	p, ok := DeriveInactivePeriod("31-12-2023", 5)
	require.True(t, ok)
	assert.Equal(t, "01-01-2024", p.DisplayStart())
	assert.Equal(t, "31-12-2028", p.DisplayEnd())
	assert.Equal(t, "2024-01-01", p.StorageStart())
	assert.Equal(t, "2028-12-31", p.StorageEnd())

	p, ok = DeriveInactivePeriod("2020-03-15", 1)
	require.True(t, ok)
	assert.Equal(t, "2021-01-01", p.StorageStart())
	assert.Equal(t, "2021-12-31", p.StorageEnd())

	_, ok = DeriveInactivePeriod("", 5)
	assert.False(t, ok)

	_, ok = DeriveInactivePeriod("2020-03-15", -1)
	assert.False(t, ok)
}
