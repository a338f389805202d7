package datedim

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

func TestCreateDateTable_Daily(t *testing.T) {
	rows, err := CreateDateTable("2024-01-01", "2024-01-03", WithFrequency("D"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	want := []struct {
		id                     string
		year, month, day, week int
	}{
		{"20240101", 2024, 1, 1, 1},
		{"20240102", 2024, 1, 2, 1},
		{"20240103", 2024, 1, 3, 1},
	}
	for i, w := range want {
		assert.Equal(t, w.id, rows[i].DateID)
		assert.Equal(t, w.year, rows[i].Year)
		assert.Equal(t, w.month, rows[i].Month)
		assert.Equal(t, w.day, rows[i].Day)
		assert.Equal(t, w.week, rows[i].Week)
		assert.Equal(t, time.UTC, rows[i].TimestampUTC.Location())
	}
}

func TestCreateDateTable_ISOWeekAcrossYearBoundary(t *testing.T) {
	rows, err := CreateDateTable("2020-12-31", "2021-01-04", WithFrequency("D"))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	weeks := make([]int, len(rows))
	for i, r := range rows {
		weeks[i] = r.Week
	}
	// 2020 has 53 ISO weeks; 2021-01-04 is the first Monday of week 1.
	assert.Equal(t, []int{53, 53, 53, 53, 1}, weeks)
	assert.Equal(t, 2021, rows[1].Year)
}

func TestCreateDateTable_DefaultFrequencyIsMinute(t *testing.T) {
	rows, err := CreateDateTable("2024-03-10 10:00", "2024-03-10 10:05")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, time.Minute, rows[1].DimensionDate.Sub(rows[0].DimensionDate))
	assert.Equal(t, "20240310", rows[5].DateID)
}

func TestCreateDateTable_Multiples(t *testing.T) {
	tests := []struct {
		freq string
		end  string
		want int
	}{
		{"6H", "2024-01-02", 5},
		{"15min", "2024-01-01 01:00", 5},
		{"T", "2024-01-01 00:02", 3},
		{"30S", "2024-01-01 00:01", 3},
		{"500ms", "2024-01-01 00:00:01", 3},
		{"2D", "2024-01-06", 3},
	}

	for _, tt := range tests {
		t.Run(tt.freq, func(t *testing.T) {
			rows, err := CreateDateTable("2024-01-01", tt.end, WithFrequency(tt.freq))
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestCreateDateTable_SingleInstant(t *testing.T) {
	rows, err := CreateDateTable("2024-02-29", "2024-02-29", WithFrequency("D"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "20240229", rows[0].DateID)
}

func TestCreateDateTable_Timezone(t *testing.T) {
	rows, err := CreateDateTable("2024-01-01", "2024-01-01", WithTimezone("America/Sao_Paulo"), WithFrequency("D"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, 0, r.DimensionDate.Hour())
	assert.Equal(t, "America/Sao_Paulo", r.DimensionDate.Location().String())
	assert.Equal(t, 3, r.TimestampUTC.Hour())
	assert.True(t, r.DimensionDate.Equal(r.TimestampUTC))
}

func TestCreateDateTable_DailyStepKeepsLocalMidnightAcrossDST(t *testing.T) {
	rows, err := CreateDateTable("2024-03-30", "2024-04-01", WithTimezone("Europe/Lisbon"), WithFrequency("D"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 0, r.DimensionDate.Hour(), r.DimensionDate.String())
	}
}

func TestCreateDateTable_InvalidArguments(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		opts       []Option
	}{
		{"bad start", "2024-13-01", "2024-12-31", nil},
		{"bad end", "2024-01-01", "tomorrow", nil},
		{"end before start", "2024-01-02", "2024-01-01", nil},
		{"unknown frequency", "2024-01-01", "2024-01-02", []Option{WithFrequency("fortnight")}},
		{"zero multiple", "2024-01-01", "2024-01-02", []Option{WithFrequency("0D")}},
		{"unknown timezone", "2024-01-01", "2024-01-02", []Option{WithTimezone("Mars/Olympus_Mons")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateDateTable(tt.start, tt.end, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, dbhandler.ErrInvalidArgument))
		})
	}
}

func TestParseDate_RFC3339(t *testing.T) {
	got, err := ParseDate("2024-06-01T12:00:00+02:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, time.UTC, got.Location())
}

func TestToTable(t *testing.T) {
	rows, err := CreateDateTable("2024-01-01", "2024-01-02", WithFrequency("D"))
	require.NoError(t, err)

	table := ToTable(rows)
	assert.Equal(t,
		[]string{"dimension_date", "date_id", "dimension_timestamp_utc", "year", "month", "day", "week"},
		table.ColumnNames())
	require.Equal(t, 2, table.Len())
	assert.True(t, table.Get(1, "date_id").Equal(dbhandler.StringValue("20240102")))
	assert.True(t, table.Get(1, "day").Equal(dbhandler.IntValue(2)))
	assert.Equal(t, dbhandler.KindTime, table.Get(0, "dimension_date").Kind())
}

func TestParseFrequency_RejectsOverflowingMultiple(t *testing.T) {
	for _, freq := range []string{"3000000H", "200000D", "9223372036854775807ms", "99999999999999999999S"} {
		_, err := ParseFrequency(freq)
		require.Error(t, err, freq)
		assert.True(t, errors.Is(err, dbhandler.ErrInvalidArgument), freq)
	}

	f, err := ParseFrequency("2562047H")
	require.NoError(t, err, "largest whole-hour step that fits a Duration")
	assert.Greater(t, f.Duration, time.Duration(0))
}

func TestCreateDateTable_OverflowingFrequencyFails(t *testing.T) {
	_, err := CreateDateTable("2024-01-01", "2024-01-03", WithFrequency("3000000H"))
	assert.True(t, errors.Is(err, dbhandler.ErrInvalidArgument))
}

func TestCreateDateTable_LargeStepStaysInRange(t *testing.T) {
	rows, err := CreateDateTable("2024-01-01", "2024-01-03", WithFrequency("100000H"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "20240101", rows[0].DateID)
}

func TestCreateDateTable_LongRangeAtFineStep(t *testing.T) {
	rows, err := CreateDateTable("2024-01-01", "2024-01-02", WithFrequency("S"))
	require.NoError(t, err)
	require.Len(t, rows, 86401)

	from := rows[0].DimensionDate
	last := rows[len(rows)-1].DimensionDate
	assert.Equal(t, 24*time.Hour, last.Sub(from))
	for i := 1; i < len(rows); i++ {
		if !rows[i].DimensionDate.After(rows[i-1].DimensionDate) {
			t.Fatalf("row %d does not advance", i)
		}
	}
}
