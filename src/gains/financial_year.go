package gains

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The Indian financial year runs 1 April through 31 March and is written as
// "2022-23" for the year starting April 2022.

// FinancialYear returns the financial year a date falls in.
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// FinancialYearStart parses the starting calendar year out of a financial
// year label, e.g. "2022-23" -> 2022.
func FinancialYearStart(fy string) (int, error) {
	head, _, ok := strings.Cut(fy, "-")
	if !ok {
		return 0, fmt.Errorf("invalid financial year %q", fy)
	}
	start, err := strconv.Atoi(head)
	if err != nil || start < 1900 || start > 2200 {
		return 0, fmt.Errorf("invalid financial year %q", fy)
	}
	return start, nil
}

// EquityLTCGExemption is the statutory annual exemption on equity LTCG for a
// financial year: 1,00,000 since FY 2018-19, raised to 1,25,000 from
// FY 2024-25. Unknown labels fall back to the base amount.
func EquityLTCGExemption(fy string) float64 {
	start, err := FinancialYearStart(fy)
	if err != nil {
		return 100000
	}
	if start >= 2024 {
		return 125000
	}
	return 100000
}
