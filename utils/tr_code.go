// utils/tr_code.go
package utils

import (
	"fmt"
	"time"
)

// BillDay is the date part of a bill number.
func BillDay(t time.Time) string {
	return t.UTC().Format("20060102")
}

// GenBillNumber formats PREFIX-YYYYMMDD-NNNN.
func GenBillNumber(prefix string, t time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, BillDay(t), seq)
}

// DateOnly truncates t to its calendar day at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return DateOnly(t), nil
}
