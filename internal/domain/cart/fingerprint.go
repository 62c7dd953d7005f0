// internal/domain/cart/fingerprint.go
package cart

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// Fingerprint identifies the cart contents a shipping quote was computed for.
// Any change to a line quantity, the item count or the subtotal yields a
// different value.
func Fingerprint(lines []LineItem, itemCount int, subtotal decimal.Decimal) string {
	pairs := make([]string, 0, len(lines))
	for _, line := range lines {
		pairs = append(pairs, strconv.FormatUint(uint64(line.ItemID), 10)+":"+strconv.Itoa(line.Quantity))
	}
	sort.Strings(pairs)

	var b strings.Builder
	b.WriteString(strings.Join(pairs, ","))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(itemCount))
	b.WriteByte('|')
	b.WriteString(subtotal.StringFixed(2))

	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// NormalizePostalCode strips everything but digits and requires exactly 8 of them
func NormalizePostalCode(raw string) (string, bool) {
	digits := onlyDigits(raw)
	if len(digits) != 8 {
		return "", false
	}
	return digits, true
}

// FormatPostalCode renders 01001000 as 01001-000
func FormatPostalCode(digits string) string {
	if len(digits) != 8 {
		return digits
	}
	return digits[:5] + "-" + digits[5:]
}

func onlyDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
