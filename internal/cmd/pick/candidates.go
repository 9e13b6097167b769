package pick

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/filterbox/internal/errors"
	"github.com/Iron-Ham/filterbox/internal/filter"
)

// Candidate kinds accepted in a candidates file.
const (
	KindSelect       = "select"
	KindEnum         = "enum"
	KindBool         = "bool"
	KindNullableBool = "nullable-bool"
	KindNumber       = "number"
	KindDate         = "date"
	KindText         = "text"
)

// Kinds returns the candidate kinds in documentation order.
func Kinds() []string {
	return []string{KindSelect, KindEnum, KindBool, KindNullableBool, KindNumber, KindDate, KindText}
}

// CandidateFile is the YAML document read by "filterbox pick --file".
//
//	name: Customer
//	kind: select
//	items:
//	  - value: "1"
//	    text: Acme
//	    icon: star
//	selected: ["1"]
type CandidateFile struct {
	Name     string      `yaml:"name"`
	Kind     string      `yaml:"kind"`
	Labels   Labels      `yaml:"labels"`
	Members  []string    `yaml:"members"`
	Items    []Candidate `yaml:"items"`
	Selected []string    `yaml:"selected"`

	// Layout parses and formats date values (default 2006-01-02).
	Layout string `yaml:"layout"`
	// Operator is the text rule: contains, starts-with, ends-with or equals.
	Operator string `yaml:"operator"`
}

// Labels names the boolean states for bool and nullable-bool kinds.
type Labels struct {
	True  string `yaml:"true"`
	False string `yaml:"false"`
	Null  string `yaml:"null"`
}

// Candidate is one selectable row of a select, number or date file, or a
// row tested against the rule of a text file.
type Candidate struct {
	Value    string `yaml:"value"`
	Text     string `yaml:"text"`
	Icon     string `yaml:"icon"`
	Tooltip  string `yaml:"tooltip"`
	Class    string `yaml:"class"`
	Disabled bool   `yaml:"disabled"`
}

// LoadCandidates reads a candidates file. "-" reads standard input.
func LoadCandidates(path string) (*CandidateFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read candidates from %s", path)
	}
	return ParseCandidates(data)
}

// ParseCandidates decodes and validates a candidates document.
func ParseCandidates(data []byte) (*CandidateFile, error) {
	var f CandidateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse candidates")
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *CandidateFile) normalize() error {
	f.Kind = strings.ToLower(strings.TrimSpace(f.Kind))
	if f.Kind == "" {
		f.Kind = KindSelect
	}
	if f.Name == "" {
		f.Name = "Value"
	}

	switch f.Kind {
	case KindSelect:
		return f.validateItems(func(string) error { return nil })
	case KindNumber:
		return f.validateItems(func(v string) error {
			_, err := parseNumber(v)
			return err
		})
	case KindDate:
		return f.validateItems(func(v string) error {
			_, err := f.ParseDate(v)
			return err
		})
	case KindText:
		if _, err := filter.ParseTextOperator(f.Operator); err != nil {
			return errors.NewValidationError(err.Error()).WithField("operator").WithValue(f.Operator)
		}
	case KindEnum:
		if len(f.Members) == 0 {
			return errors.NewValidationError("enum candidates need members").WithField("members")
		}
	case KindBool, KindNullableBool:
	default:
		return errors.NewValidationError(fmt.Sprintf("kind must be one of: %s", strings.Join(Kinds(), ", "))).
			WithField("kind").WithValue(f.Kind)
	}
	return nil
}

func (f *CandidateFile) validateItems(parse func(string) error) error {
	if len(f.Items) == 0 {
		return errors.NewValidationError(f.Kind + " candidates need at least one item").WithField("items")
	}
	seen := make(map[string]bool, len(f.Items))
	for i, it := range f.Items {
		if it.Value == "" {
			return errors.NewValidationError(fmt.Sprintf("item %d has no value", i+1)).WithField("items")
		}
		if err := parse(it.Value); err != nil {
			return errors.NewValidationError(err.Error()).WithField("items").WithValue(it.Value)
		}
		if seen[it.Value] {
			return errors.NewValidationError("duplicate item value").WithField("items").WithValue(it.Value)
		}
		seen[it.Value] = true
	}
	return nil
}

func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return n, nil
}

// DateLayout returns the layout used for date values.
func (f *CandidateFile) DateLayout() string {
	if f.Layout == "" {
		return time.DateOnly
	}
	return f.Layout
}

// ParseDate parses a date value with the file's layout.
func (f *CandidateFile) ParseDate(s string) (filter.Date, error) {
	t, err := time.Parse(f.DateLayout(), strings.TrimSpace(s))
	if err != nil {
		return filter.Date{}, fmt.Errorf("%q does not match layout %s", s, f.DateLayout())
	}
	return filter.DateOf(t), nil
}
