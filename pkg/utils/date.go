package utils

import (
	"fmt"
	"time"
)

// Formatos aceitos nas datas de relatório (v3 usa ISO, relatórios legados YYYYMMDD)
var dateLayouts = []string{time.DateOnly, "20060102"}

func ParseDate(dateStr string) (*time.Time, error) {
	var date time.Time

	if dateStr == "" {
		return &date, nil
	}

	for _, layout := range dateLayouts {
		if incomingDate, err := time.Parse(layout, dateStr); err == nil {
			return &incomingDate, nil
		}
	}

	return nil, fmt.Errorf("invalid date %q", dateStr)
}

// LookbackRange devolve o intervalo [hoje-days, ontem] em UTC, truncado ao dia
func LookbackRange(now time.Time, days int) (time.Time, time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	if days < 1 {
		days = 1
	}
	return today.AddDate(0, 0, -days), today.AddDate(0, 0, -1)
}
