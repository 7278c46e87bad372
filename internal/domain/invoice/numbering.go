package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

const numberPrefix = "INV-"

// FormatNumber renders the sequence value n as an invoice number.
func FormatNumber(n int64) string {
	return fmt.Sprintf("%s%04d", numberPrefix, n)
}

// NextNumber derives the number following last, the most recently created
// invoice. The numeric suffix after the final dash is incremented; when it
// does not parse, last.ID+1 is used instead. It never fails.
func NextNumber(last *Invoice) string {
	if last == nil {
		return FormatNumber(1)
	}

	suffix := last.InvoiceNumber
	if i := strings.LastIndex(suffix, "-"); i >= 0 {
		suffix = suffix[i+1:]
	}

	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return FormatNumber(last.ID + 1)
	}
	return FormatNumber(n + 1)
}

// FreeNumber returns candidate, or the first number after it that taken
// reports as unused. It must run under the numbering lock.
func FreeNumber(candidate string, taken func(number string) (bool, error)) (string, error) {
	for {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = NextNumber(&Invoice{InvoiceNumber: candidate})
	}
}
