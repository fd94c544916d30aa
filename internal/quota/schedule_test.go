package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitrine-retail/vitrine/internal/shared"
)

func TestAllocateEqualSlices(t *testing.T) {
	result := Allocate(9000, ParseTerms("90/120/150"))
	require.Equal(t, map[int]float64{3: 3000, 4: 3000, 5: 3000}, result)
}

func TestAllocateAccumulatesSameBucket(t *testing.T) {
	// 90 and 100 days both round to offset 3; slices must sum, not overwrite.
	result := Allocate(9000, []int{90, 100})
	require.Len(t, result, 1)
	require.InDelta(t, 9000, result[3], 1e-9)
}

func TestAllocateEmptyInputs(t *testing.T) {
	require.Empty(t, Allocate(9000, nil))
	require.Empty(t, Allocate(0, []int{30, 60}))
}

func TestAllocatePreservesTotal(t *testing.T) {
	cases := []struct {
		total float64
		terms []int
	}{
		{9000, []int{90, 120, 150}},
		{10000, []int{30, 60, 90, 120, 150, 180, 210}},
		{99.99, []int{30, 45, 60}},
		{1234.56, []int{15, 15, 15}},
		{5000, []int{75, 89, 90, 104}},
	}
	for _, tc := range cases {
		result := Allocate(tc.total, tc.terms)
		var sum float64
		for _, amount := range result {
			sum += amount
		}
		require.InDelta(t, tc.total, sum, 1e-6*float64(len(tc.terms)))
	}
}

func TestAllocateHalfUpRounding(t *testing.T) {
	// 45 days rounds to offset 2, 44 days down to offset 1.
	require.Equal(t, map[int]float64{2: 100}, Allocate(100, []int{45}))
	require.Equal(t, map[int]float64{1: 100}, Allocate(100, []int{44}))
}

func TestWindow(t *testing.T) {
	ref := time.Date(2024, time.November, 17, 10, 0, 0, 0, time.UTC)
	window := Window(ref)
	require.Len(t, window, WindowMonths)
	require.Equal(t, "2024-11", window[0])
	require.Equal(t, "2024-12", window[1])
	require.Equal(t, "2025-01", window[2])
	require.Equal(t, "2025-10", window[11])

	// Contiguous with no gaps or duplicates.
	for i := 1; i < len(window); i++ {
		offset, err := MonthOffset(window[i-1], window[i])
		require.NoError(t, err)
		require.Equal(t, 1, offset)
	}
}

func TestWindowShiftsWithReference(t *testing.T) {
	a := Window(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	b := Window(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, a[1:], b[:11])
}

func TestMonthOffset(t *testing.T) {
	cases := []struct {
		shipment, target string
		want             int
	}{
		{"2024-01", "2024-01", 0},
		{"2024-01", "2024-04", 3},
		{"2024-11", "2025-02", 3},
		{"2024-06", "2024-03", -3},
	}
	for _, tc := range cases {
		got, err := MonthOffset(tc.shipment, tc.target)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s -> %s", tc.shipment, tc.target)
	}

	_, err := MonthOffset("2024-1", "2024-02")
	require.Error(t, err)
}

func TestInstallmentAt(t *testing.T) {
	order := Order{
		StoreID:      1,
		TotalValue:   9000,
		ShipmentDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Installments: Allocate(9000, []int{90, 120, 150}),
		CreatedBy:    shared.RoleBuyer,
		Status:       StatusPending,
	}
	require.InDelta(t, 3000, order.InstallmentAt("2024-09"), 1e-9)
	require.InDelta(t, 3000, order.InstallmentAt("2024-10"), 1e-9)
	require.Zero(t, order.InstallmentAt("2024-06"))
	// Months before shipment always resolve to 0.
	require.Zero(t, order.InstallmentAt("2024-01"))
	require.Zero(t, order.InstallmentAt("2026-01"))
}

func TestFirstOfMonth(t *testing.T) {
	got := FirstOfMonth(time.Date(2024, time.May, 23, 14, 30, 0, 0, time.UTC))
	require.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), got)
}
