package expenses

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Trend pairs a value with its direction relative to the previous value.
type Trend struct {
	Value decimal.Decimal
	Arrow string // "↑", "↓", "=", and "-" for the first value
}

// Trends compares each value to its predecessor. The first value has no
// predecessor and gets "-".
func Trends(values []decimal.Decimal) []Trend {
	if len(values) == 0 {
		return nil
	}
	trends := make([]Trend, 0, len(values))
	trends = append(trends, Trend{Value: values[0], Arrow: "-"})
	for i := 1; i < len(values); i++ {
		arrow := "="
		switch {
		case values[i].GreaterThan(values[i-1]):
			arrow = "↑"
		case values[i].LessThan(values[i-1]):
			arrow = "↓"
		}
		trends = append(trends, Trend{Value: values[i], Arrow: arrow})
	}
	return trends
}

// MonthKey is a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (m MonthKey) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

func (m MonthKey) before(o MonthKey) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// MonthSummary totals one calendar month of records.
type MonthSummary struct {
	Month    MonthKey
	Expenses decimal.Decimal
	Income   decimal.Decimal
	Count    int
}

// Net returns income minus expenses for the month.
func (m MonthSummary) Net() decimal.Decimal { return m.Income.Sub(m.Expenses) }

// MonthlySummary aggregates the given records per calendar month, oldest
// month first so the totals feed straight into Trends. Callers pass the view
// they mean to summarize, usually the active records.
func MonthlySummary(records Records) []MonthSummary {
	byMonth := make(map[MonthKey]*MonthSummary)
	for _, r := range records {
		key := MonthKey{Year: r.Date.Year(), Month: r.Date.Month()}
		m, ok := byMonth[key]
		if !ok {
			m = &MonthSummary{Month: key, Expenses: decimal.Zero, Income: decimal.Zero}
			byMonth[key] = m
		}
		switch r.Type {
		case Income:
			m.Income = m.Income.Add(r.Amount)
		default:
			m.Expenses = m.Expenses.Add(r.Amount)
		}
		m.Count++
	}

	months := make([]MonthSummary, 0, len(byMonth))
	for _, m := range byMonth {
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month.before(months[j].Month) })
	return months
}
