package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// millisecondsPerYear reproduces the historical age approximation:
// floor(msSinceBirth / (365.25 * 86400000)). It is not calendar-exact and
// must stay that way for backward compatibility.
const millisecondsPerYear = 365.25 * 86400000

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{5,18}$`)
)

func evalEqual(value, operand any, _ env) (bool, error) {
	return looseEqual(value, operand), nil
}

func evalNotEqual(value, operand any, _ env) (bool, error) {
	return !looseEqual(value, operand), nil
}

func evalGreater(value, operand any, _ env) (bool, error) {
	return looseOrder(value, operand, func(cmp int) bool { return cmp > 0 }), nil
}

func evalGreaterEqual(value, operand any, _ env) (bool, error) {
	return looseOrder(value, operand, func(cmp int) bool { return cmp >= 0 }), nil
}

func evalLess(value, operand any, _ env) (bool, error) {
	return looseOrder(value, operand, func(cmp int) bool { return cmp < 0 }), nil
}

func evalLessEqual(value, operand any, _ env) (bool, error) {
	return looseOrder(value, operand, func(cmp int) bool { return cmp <= 0 }), nil
}

func evalBetween(value, operand any, _ env) (bool, error) {
	low, high, err := rangeOperand(operand)
	if err != nil {
		return false, err
	}
	v, ok := toNumber(value)
	if !ok {
		return false, fmt.Errorf("between: value %v is not numeric", value)
	}
	return v >= low && v <= high, nil
}

func evalContains(value, operand any, _ env) (bool, error) {
	return strings.Contains(toString(value), toString(operand)), nil
}

func evalNotContains(value, operand any, _ env) (bool, error) {
	return !strings.Contains(toString(value), toString(operand)), nil
}

func evalStartsWith(value, operand any, _ env) (bool, error) {
	return strings.HasPrefix(toString(value), toString(operand)), nil
}

func evalEndsWith(value, operand any, _ env) (bool, error) {
	return strings.HasSuffix(toString(value), toString(operand)), nil
}

func evalMatches(value, operand any, _ env) (bool, error) {
	pattern, err := regexp.Compile(toString(operand))
	if err != nil {
		return false, fmt.Errorf("matches: %w", err)
	}
	return pattern.MatchString(toString(value)), nil
}

func evalIn(value, operand any, _ env) (bool, error) {
	list, err := listOperand(operand)
	if err != nil {
		return false, err
	}
	for _, candidate := range list {
		if looseEqual(value, candidate) {
			return true, nil
		}
	}
	return false, nil
}

func evalNotIn(value, operand any, e env) (bool, error) {
	found, err := evalIn(value, operand, e)
	if err != nil {
		return false, err
	}
	return !found, nil
}

func evalIsEmpty(value, _ any, _ env) (bool, error) {
	return isEmptyValue(value), nil
}

// evalIsNotEmpty negates the same emptiness check so the two operators stay
// complementary for every value, including an empty array.
func evalIsNotEmpty(value, _ any, _ env) (bool, error) {
	return !isEmptyValue(value), nil
}

func evalIsTrue(value, _ any, _ env) (bool, error) {
	return toBool(value), nil
}

func evalIsFalse(value, _ any, _ env) (bool, error) {
	return !toBool(value), nil
}

func evalEqualsField(value, operand any, e env) (bool, error) {
	field := strings.TrimSpace(toString(operand))
	if field == "" {
		return false, errors.New("equalsField: operand must name a field")
	}
	return looseEqual(value, e.form[field]), nil
}

func evalNotEqualsField(value, operand any, e env) (bool, error) {
	equal, err := evalEqualsField(value, operand, e)
	if err != nil {
		return false, err
	}
	return !equal, nil
}

func evalIsEmail(value, _ any, _ env) (bool, error) {
	return emailPattern.MatchString(toString(value)), nil
}

func evalIsURL(value, _ any, _ env) (bool, error) {
	parsed, err := url.Parse(strings.TrimSpace(toString(value)))
	if err != nil {
		return false, nil
	}
	return parsed.Scheme != "" && parsed.Host != "", nil
}

func evalIsNumber(value, _ any, _ env) (bool, error) {
	_, ok := toNumber(value)
	return ok, nil
}

func evalIsInteger(value, _ any, _ env) (bool, error) {
	n, ok := toNumber(value)
	return ok && n == math.Trunc(n), nil
}

func evalIsDate(value, _ any, _ env) (bool, error) {
	_, ok := toDate(value)
	return ok, nil
}

func evalIsPhone(value, _ any, _ env) (bool, error) {
	raw := strings.TrimSpace(toString(value))
	if !phonePattern.MatchString(raw) {
		return false, nil
	}
	return countDigits(raw) >= 7, nil
}

func evalDateEquals(value, operand any, _ env) (bool, error) {
	v, o, err := dateOperands(value, operand)
	if err != nil {
		return false, err
	}
	return v.Equal(o), nil
}

func evalDateBefore(value, operand any, _ env) (bool, error) {
	v, o, err := dateOperands(value, operand)
	if err != nil {
		return false, err
	}
	return v.Before(o), nil
}

func evalDateAfter(value, operand any, _ env) (bool, error) {
	v, o, err := dateOperands(value, operand)
	if err != nil {
		return false, err
	}
	return v.After(o), nil
}

func evalAgeGreaterThan(value, operand any, e env) (bool, error) {
	age, err := ageOf(value, e.now)
	if err != nil {
		return false, err
	}
	threshold, ok := toNumber(operand)
	if !ok {
		return false, fmt.Errorf("ageGreaterThan: operand %v is not numeric", operand)
	}
	return float64(age) > threshold, nil
}

func evalAgeLessThan(value, operand any, e env) (bool, error) {
	age, err := ageOf(value, e.now)
	if err != nil {
		return false, err
	}
	threshold, ok := toNumber(operand)
	if !ok {
		return false, fmt.Errorf("ageLessThan: operand %v is not numeric", operand)
	}
	return float64(age) < threshold, nil
}

func evalAgeBetween(value, operand any, e env) (bool, error) {
	low, high, err := rangeOperand(operand)
	if err != nil {
		return false, err
	}
	age, err := ageOf(value, e.now)
	if err != nil {
		return false, err
	}
	return float64(age) >= low && float64(age) <= high, nil
}

// ageOf computes whole years via the fixed 365.25-day approximation,
// including its known boundary inaccuracy around leap years.
func ageOf(value any, now time.Time) (int, error) {
	birth, ok := toDate(value)
	if !ok {
		return 0, fmt.Errorf("age: value %v is not a date", value)
	}
	ms := float64(now.Sub(birth).Milliseconds())
	return int(math.Floor(ms / millisecondsPerYear)), nil
}

func dateOperands(value, operand any) (time.Time, time.Time, error) {
	v, ok := toDate(value)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("date: value %v is not a date", value)
	}
	o, ok := toDate(operand)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("date: operand %v is not a date", operand)
	}
	return v, o, nil
}

func rangeOperand(operand any) (low, high float64, err error) {
	list, err := listOperand(operand)
	if err != nil {
		return 0, 0, err
	}
	if len(list) != 2 {
		return 0, 0, fmt.Errorf("range operand needs exactly 2 entries, got %d", len(list))
	}
	low, lowOK := toNumber(list[0])
	high, highOK := toNumber(list[1])
	if !lowOK || !highOK {
		return 0, 0, fmt.Errorf("range operand %v is not numeric", operand)
	}
	return low, high, nil
}

func listOperand(operand any) ([]any, error) {
	switch v := operand.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("operand %v is not an array", operand)
	}
}

// Coercions are intentionally permissive, mirroring the loose comparisons
// the stored rules were written against. They are local to this package:
// validation and navigation must not share evaluation code because their
// polarities differ.

func looseEqual(a, b any) bool {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return an == bn
		}
	}
	return toString(a) == toString(b)
}

func looseOrder(a, b any, pick func(cmp int) bool) bool {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			switch {
			case an < bn:
				return pick(-1)
			case an > bn:
				return pick(1)
			default:
				return pick(0)
			}
		}
	}
	return pick(strings.Compare(toString(a), toString(b)))
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func toBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		if n, ok := toNumber(value); ok {
			return n != 0
		}
		return false
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

func toDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		// Epoch milliseconds, the shape JS documents stored.
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	default:
		return time.Time{}, false
	}
}

func countDigits(s string) int {
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}
