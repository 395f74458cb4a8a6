package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ        = regexp.MustCompile(`^[\p{L}\p{N} _'.\-]{1,50}$`)
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,30}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) > 50 {
		s = string([]rune(s)[:50])
	}
	return s, reQ.MatchString(s)
}

// Limit parses a page size, clamping to [1,max] and falling back to def.
func Limit(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ID validates a simple resource identifier (product/client/sale ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Category(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, c := range domain.Categories {
		if s == c {
			return s, true
		}
	}
	return "", false
}

func PaymentMethod(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s == domain.PaymentCash || s == domain.PaymentTransfer
}

func SaleType(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s == domain.SaleFinalConsumer || s == domain.SaleWholesale
}

func Role(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, s == domain.RoleSeller || s == domain.RoleCustomer
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 120 {
		return "", false
	}
	return s, true
}

func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// MaxQuantity caps the units on one line and the units of one product
// summed across a transaction.
const MaxQuantity = 1_000_000

// Quantity accepts whole units in [1, MaxQuantity].
func Quantity(n int) bool {
	return n > 0 && n <= MaxQuantity
}

// Amount accepts non-negative decimals (prices, costs, percentages).
func Amount(d decimal.Decimal) bool {
	return !d.IsNegative()
}

// Date parses YYYY-MM-DD in UTC. endOfDay moves the result to the last
// second of that day so it can close an inclusive range.
func Date(s string, endOfDay bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, true
}

// Password enforces a length window and character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
