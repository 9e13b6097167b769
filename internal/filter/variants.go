package filter

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Null is a comparable nullable value. The zero value is null.
type Null[T comparable] struct {
	V     T
	Valid bool
}

// Some wraps v as a non-null value.
func Some[T comparable](v T) Null[T] {
	return Null[T]{V: v, Valid: true}
}

// None returns the null value of T.
func None[T comparable]() Null[T] {
	return Null[T]{}
}

func (n Null[T]) String() string {
	if !n.Valid {
		return "null"
	}
	return fmt.Sprint(n.V)
}

// BoolLabels names the boolean states in descriptions and option lists.
// Empty fields fall back to "Yes", "No" and "(empty)".
type BoolLabels struct {
	Name  string
	True  string
	False string
	Null  string
}

func (l BoolLabels) format(v bool) string {
	if v {
		return orDefault(l.True, "Yes")
	}
	return orDefault(l.False, "No")
}

func (l BoolLabels) formatNull(v Null[bool]) string {
	if !v.Valid {
		return orDefault(l.Null, "(empty)")
	}
	return l.format(v.V)
}

// BooleanPolicy orders false before true and offers {false, true}.
func BooleanPolicy(labels BoolLabels) Policy[bool] {
	return Policy[bool]{
		Name:   labels.Name,
		Format: labels.format,
		Less:   func(a, b bool) bool { return !a && b },
		Candidates: func() []bool {
			return []bool{false, true}
		},
	}
}

// NullableBooleanPolicy orders null, false, true and offers all three.
func NullableBooleanPolicy(labels BoolLabels) Policy[Null[bool]] {
	return Policy[Null[bool]]{
		Name:   labels.Name,
		Format: labels.formatNull,
		Less:   func(a, b Null[bool]) bool { return nullBoolRank(a) < nullBoolRank(b) },
		Candidates: func() []Null[bool] {
			return []Null[bool]{None[bool](), Some(false), Some(true)}
		},
	}
}

func nullBoolRank(v Null[bool]) int {
	switch {
	case !v.Valid:
		return 0
	case !v.V:
		return 1
	default:
		return 2
	}
}

// SelectPolicy keeps the caller-supplied order and has no default candidates.
func SelectPolicy[V comparable](name string, format func(V) string) Policy[V] {
	return Policy[V]{Name: name, Format: format}
}

// Number is the set of value types a numeric filter accepts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// NumericPolicy keeps the loader's order. A nil format uses fmt.Sprint.
func NumericPolicy[V Number](name string, format func(V) string) Policy[V] {
	return Policy[V]{Name: name, Format: format}
}

// Date is a calendar day, comparable by value regardless of time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

// DatePolicy keeps the loader's order and formats days with layout
// (time.DateOnly when empty).
func DatePolicy(name, layout string) Policy[Date] {
	if layout == "" {
		layout = time.DateOnly
	}
	return Policy[Date]{
		Name:   name,
		Format: func(d Date) string { return d.Time().Format(layout) },
	}
}

// Fold case-folds s for case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// CompareFold compares a and b case-insensitively.
func CompareFold(a, b string) int {
	return strings.Compare(Fold(a), Fold(b))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
