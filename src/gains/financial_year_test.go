package gains

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinancialYear(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{date(2022, time.April, 1), "2022-23"},
		{date(2023, time.March, 31), "2022-23"},
		{date(2023, time.April, 1), "2023-24"},
		{date(2022, time.December, 15), "2022-23"},
		{date(2022, time.January, 15), "2021-22"},
		{date(2099, time.June, 1), "2099-00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FinancialYear(tc.date), "date %s", tc.date.Format("2006-01-02"))
	}
}

func TestFinancialYearStart(t *testing.T) {
	start, err := FinancialYearStart("2022-23")
	require.NoError(t, err)
	assert.Equal(t, 2022, start)

	for _, bad := range []string{"", "2022", "abcd-ef", "1776-77"} {
		_, err := FinancialYearStart(bad)
		assert.Error(t, err, "label %q", bad)
	}
}

func TestEquityLTCGExemption(t *testing.T) {
	assert.InDelta(t, 100000.0, EquityLTCGExemption("2022-23"), 1e-9)
	assert.InDelta(t, 100000.0, EquityLTCGExemption("2023-24"), 1e-9)
	assert.InDelta(t, 125000.0, EquityLTCGExemption("2024-25"), 1e-9)
	assert.InDelta(t, 125000.0, EquityLTCGExemption("2025-26"), 1e-9)
	assert.InDelta(t, 100000.0, EquityLTCGExemption("garbage"), 1e-9)
}
