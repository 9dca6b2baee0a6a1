package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vfg2006/ppc-automation/internal/domain"
)

// DaypartWindow aplica um multiplicador de lance nos dias e no intervalo
// de horas [StartHour, EndHour) informados
type DaypartWindow struct {
	Days       []time.Weekday
	StartHour  int
	EndHour    int
	Multiplier float64
}

func (w DaypartWindow) Covers(day time.Weekday, hour int) bool {
	if hour < w.StartHour || hour >= w.EndHour {
		return false
	}
	for _, d := range w.Days {
		if d == day {
			return true
		}
	}
	return false
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseSchedule interpreta entradas no formato "mon-fri 08-12 1.2; sat,sun 0-24 0.8".
// Sobreposição de faixas não é tratada aqui, ver ValidateSchedule.
func ParseSchedule(raw string) ([]DaypartWindow, error) {
	var windows []DaypartWindow

	for i, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Fields(entry)
		if len(parts) != 3 {
			return nil, domain.NewValidationError("dayparting_schedule", "entry %d %q: expected \"<days> <start>-<end> <multiplier>\"", i, entry)
		}

		days, err := parseDays(parts[0])
		if err != nil {
			return nil, domain.NewValidationError("dayparting_schedule", "entry %d: %v", i, err)
		}

		start, end, err := parseHours(parts[1])
		if err != nil {
			return nil, domain.NewValidationError("dayparting_schedule", "entry %d: %v", i, err)
		}

		multiplier, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, domain.NewValidationError("dayparting_schedule", "entry %d: invalid multiplier %q", i, parts[2])
		}

		windows = append(windows, DaypartWindow{
			Days:       days,
			StartHour:  start,
			EndHour:    end,
			Multiplier: multiplier,
		})
	}

	return windows, nil
}

func parseDays(s string) ([]time.Weekday, error) {
	s = strings.ToLower(s)
	if s == "*" || s == "all" {
		return []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}, nil
	}

	var days []time.Weekday
	for _, token := range strings.Split(s, ",") {
		from, to, isRange := strings.Cut(token, "-")
		start, ok := weekdays[from]
		if !ok {
			return nil, fmt.Errorf("unknown day %q", from)
		}
		if !isRange {
			days = append(days, start)
			continue
		}
		end, ok := weekdays[to]
		if !ok {
			return nil, fmt.Errorf("unknown day %q", to)
		}
		for d := start; ; d = (d + 1) % 7 {
			days = append(days, d)
			if d == end {
				break
			}
		}
	}
	return days, nil
}

func parseHours(s string) (int, int, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid hour range %q", s)
	}
	start, err := strconv.Atoi(from)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start hour %q", from)
	}
	end, err := strconv.Atoi(to)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end hour %q", to)
	}
	return start, end, nil
}

// ValidateSchedule rejeita faixas inválidas e faixas sobrepostas no mesmo dia
func ValidateSchedule(windows []DaypartWindow, minMultiplier, maxMultiplier float64) error {
	for i, w := range windows {
		if len(w.Days) == 0 {
			return domain.NewValidationError("dayparting_schedule", "window %d has no days", i)
		}
		if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
			return domain.NewValidationError("dayparting_schedule", "window %d has invalid hours %d-%d", i, w.StartHour, w.EndHour)
		}
		if w.Multiplier <= 0 {
			return domain.NewValidationError("dayparting_schedule", "window %d multiplier must be positive", i)
		}
		if maxMultiplier > 0 && (w.Multiplier < minMultiplier || w.Multiplier > maxMultiplier) {
			return domain.NewValidationError("dayparting_schedule", "window %d multiplier %.2f outside [%.2f, %.2f]", i, w.Multiplier, minMultiplier, maxMultiplier)
		}
	}

	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			a, b := windows[i], windows[j]
			if !sharesDay(a.Days, b.Days) {
				continue
			}
			if a.StartHour < b.EndHour && b.StartHour < a.EndHour {
				return domain.NewValidationError("dayparting_schedule", "windows %d and %d overlap", i, j)
			}
		}
	}

	return nil
}

func sharesDay(a, b []time.Weekday) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
