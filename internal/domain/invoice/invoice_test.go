package invoice

import (
	"errors"
	"testing"

	"killbill-service/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name string
		last *Invoice
		want string
	}{
		{"first invoice", nil, "INV-0001"},
		{"increments suffix", &Invoice{ID: 3, InvoiceNumber: "INV-0003"}, "INV-0004"},
		{"grows past four digits", &Invoice{ID: 9999, InvoiceNumber: "INV-9999"}, "INV-10000"},
		{"suffix wins over id", &Invoice{ID: 2, InvoiceNumber: "INV-0041"}, "INV-0042"},
		{"uses last dash", &Invoice{ID: 5, InvoiceNumber: "ACME-2024-0007"}, "INV-0008"},
		{"unparsable falls back to id", &Invoice{ID: 12, InvoiceNumber: "INV-ABC"}, "INV-0013"},
		{"no dash parses whole string", &Invoice{ID: 1, InvoiceNumber: "17"}, "INV-0018"},
		{"empty falls back to id", &Invoice{ID: 7}, "INV-0008"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextNumber(tt.last))
		})
	}
}

func TestFreeNumber(t *testing.T) {
	taken := map[string]bool{"INV-0003": true, "INV-0004": true}
	lookup := func(number string) (bool, error) { return taken[number], nil }

	got, err := FreeNumber("INV-0003", lookup)
	require.NoError(t, err)
	assert.Equal(t, "INV-0005", got)

	got, err = FreeNumber("INV-0007", lookup)
	require.NoError(t, err)
	assert.Equal(t, "INV-0007", got)

	_, err = FreeNumber("INV-0001", func(string) (bool, error) { return false, errors.New("db down") })
	assert.EqualError(t, err, "db down")
}

func TestComputeStatus(t *testing.T) {
	due := clock.Date(2024, 3, 1)

	assert.Equal(t, StatusUnpaid, ComputeStatus(StatusUnpaid, due, clock.Date(2024, 2, 20)))
	assert.Equal(t, StatusUnpaid, ComputeStatus(StatusUnpaid, due, due), "due today is not overdue")
	assert.Equal(t, StatusOverdue, ComputeStatus(StatusUnpaid, due, clock.Date(2024, 3, 2)))
	assert.Equal(t, StatusUnpaid, ComputeStatus(StatusOverdue, due, clock.Date(2024, 2, 1)), "moving the due date clears overdue")
}

func TestComputeStatus_PaidIsTerminal(t *testing.T) {
	due := clock.Date(2024, 3, 1)

	assert.Equal(t, StatusPaid, ComputeStatus(StatusPaid, due, clock.Date(2030, 1, 1)))
	assert.Equal(t, StatusPaid, ComputeStatus(StatusPaid, due, clock.Date(2020, 1, 1)))
}

func TestDaysOverdue(t *testing.T) {
	inv := &Invoice{DueDate: clock.Date(2024, 2, 25), Status: StatusOverdue}

	assert.Equal(t, 0, inv.DaysOverdue(clock.Date(2024, 2, 20)))
	assert.Equal(t, 0, inv.DaysOverdue(clock.Date(2024, 2, 25)))
	assert.Equal(t, 5, inv.DaysOverdue(clock.Date(2024, 3, 1)))
}

func TestPrepare(t *testing.T) {
	inv := &Invoice{DueDate: clock.Date(2024, 1, 31), Status: StatusUnpaid}

	inv.Prepare(clock.Date(2024, 2, 1))
	assert.Equal(t, StatusOverdue, inv.Status)
	assert.True(t, inv.IsOpen())

	inv.Status = StatusPaid
	inv.Prepare(clock.Date(2024, 2, 1))
	assert.Equal(t, StatusPaid, inv.Status)
	assert.False(t, inv.IsOpen())
}
