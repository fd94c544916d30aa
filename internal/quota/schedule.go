package quota

import (
	"math"
	"time"
)

// WindowMonths is the length of the rolling projection window.
const WindowMonths = 12

const monthLayout = "2006-01"

// Allocate splits totalValue into equal slices, one per payment term,
// and buckets each slice by its month offset round(days/30). Terms that
// round to the same offset accumulate into one bucket, so the sum of
// the result always equals totalValue up to rounding error.
//
// An empty term list or a zero value yields an empty map, not an error:
// an order without parseable terms simply consumes no monthly budget.
func Allocate(totalValue float64, termsDays []int) map[int]float64 {
	result := map[int]float64{}
	if totalValue == 0 || len(termsDays) == 0 {
		return result
	}
	slice := totalValue / float64(len(termsDays))
	for _, days := range termsDays {
		offset := int(math.Round(float64(days) / 30.0))
		result[offset] += slice
	}
	return result
}

// Window returns the 12 contiguous "YYYY-MM" labels starting at ref's
// own month. Advancing ref shifts the whole window; no separate state
// distinguishes current from future months.
func Window(ref time.Time) []string {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	labels := make([]string, 0, WindowMonths)
	for i := 0; i < WindowMonths; i++ {
		labels = append(labels, start.AddDate(0, i, 0).Format(monthLayout))
	}
	return labels
}

// MonthOffset returns the integer month difference target - shipment
// for two "YYYY-MM" labels.
func MonthOffset(shipment, target string) (int, error) {
	s, err := time.Parse(monthLayout, shipment)
	if err != nil {
		return 0, err
	}
	t, err := time.Parse(monthLayout, target)
	if err != nil {
		return 0, err
	}
	return (t.Year()-s.Year())*12 + int(t.Month()) - int(s.Month()), nil
}

// MonthLabel formats a date's calendar month as "YYYY-MM".
func MonthLabel(t time.Time) string {
	return t.Format(monthLayout)
}

// FirstOfMonth truncates a date to the first day of its month in UTC.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// InstallmentAt returns the amount the order allocates to the target
// month. Months before the shipment month resolve to 0, as do months
// the amortization never reaches.
func (o Order) InstallmentAt(month string) float64 {
	offset, err := MonthOffset(MonthLabel(o.ShipmentDate), month)
	if err != nil || offset < 0 {
		return 0
	}
	return o.Installments[offset]
}
