// Package pick provides the "pick" command: a filter box over a candidates
// file that prints the resulting filter.
package pick

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/filterbox/internal/cmd/cmdutil"
	"github.com/Iron-Ham/filterbox/internal/errors"
	"github.com/Iron-Ham/filterbox/internal/filter"
	"github.com/Iron-Ham/filterbox/internal/listdata"
	"github.com/Iron-Ham/filterbox/internal/tui/filterbox"
)

// ErrCanceled is returned when the user leaves the filter box without
// applying.
var ErrCanceled = errors.New("selection canceled")

var pickCmd = &cobra.Command{
	Use:   "pick --file <candidates.yaml>",
	Short: "Pick values from a candidates file and print the filter",
	Long: `Open a searchable filter box over the candidates in a YAML file and
print the resulting filter as JSON.

The file declares a kind (select, enum, bool, nullable-bool, number, date or
text) and its candidates. With --select, or when not attached to a terminal,
no UI is shown: the values given are selected directly. A text file holds a
single rule (operator: contains, starts-with, ends-with or equals) whose text
is taken from --search; its items are listed under "matches" when they
satisfy the rule.

Example file:
  name: Customer
  kind: select
  items:
    - value: "1"
      text: Acme
      icon: star
    - value: "2"
      text: Umbrella
      disabled: true
  selected: ["1"]`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

var (
	pickFile    string
	pickSelect  []string
	pickSearch  string
	pickLatency time.Duration
)

// isTerminal is swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

func init() {
	pickCmd.Flags().StringVarP(&pickFile, "file", "f", "", "Candidates YAML file (- for stdin)")
	pickCmd.Flags().StringSliceVarP(&pickSelect, "select", "s", nil, "Values to select without showing the UI")
	pickCmd.Flags().StringVar(&pickSearch, "search", "", "Search text applied before selecting")
	pickCmd.Flags().DurationVar(&pickLatency, "latency", 0, "Simulated provider latency for select candidates")
	_ = pickCmd.MarkFlagRequired("file")
}

// Register adds the pick command to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(pickCmd)
}

// Result is the JSON document printed by pick. An empty Values list means
// "no filter".
type Result struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Values      []string `json:"values"`
	Description string   `json:"description,omitempty"`
	Matches     []string `json:"matches,omitempty"`
}

func runPick(cmd *cobra.Command, args []string) (err error) {
	cf, err := LoadCandidates(pickFile)
	if err != nil {
		return err
	}

	rt, err := cmdutil.Setup()
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := rt.Close(ctx); err == nil && cerr != nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	req := request{
		interactive: len(pickSelect) == 0 && isTerminal(),
		search:      pickSearch,
		selectArgs:  pickSelect,
		latency:     pickLatency,
	}

	res, err := Pick(ctx, rt, cf, req)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), res)
}

func writeResult(out io.Writer, res Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

type request struct {
	interactive bool
	search      string
	selectArgs  []string
	latency     time.Duration
}

// Pick builds the source for cf and runs the selection.
func Pick(ctx context.Context, rt *cmdutil.Runtime, cf *CandidateFile, req request) (Result, error) {
	opts := listdata.SourceOptions{
		Name:      cf.Name,
		CacheSize: rt.Config.ListData.CacheSize,
		Logger:    rt.Logger,
		Observer:  rt.Metrics,
	}
	ui := filterbox.Options{
		Title:          "Filter by " + cf.Name,
		MaxVisible:     rt.Config.TUI.MaxVisibleItems,
		SearchDebounce: rt.Config.ListData.SearchDebounce(),
		Context:        ctx,
		Logger:         rt.Logger,
	}

	switch cf.Kind {
	case KindEnum:
		t := filter.NewEnumType(cf.Name, cf.Members, nil)
		src, err := listdata.NewEnumSource(t, nil, opts)
		if err != nil {
			return Result{}, err
		}
		s := session[string, string]{
			selector: listdata.NewSelector(src, filter.EnumPolicy(t)),
			parse: func(v string) (string, error) {
				if !t.Has(v) {
					return "", fmt.Errorf("%q is not a member of %s", v, cf.Name)
				}
				return v, nil
			},
			format: func(v string) string { return v },
		}
		return s.run(ctx, cf, req, ui)

	case KindBool:
		labels := filter.BoolLabels{Name: cf.Name, True: cf.Labels.True, False: cf.Labels.False}
		src, err := listdata.NewBooleanSource(labels, nil, opts)
		if err != nil {
			return Result{}, err
		}
		s := session[bool, bool]{
			selector: listdata.NewSelector(src, filter.BooleanPolicy(labels)),
			parse:    strconv.ParseBool,
			format:   strconv.FormatBool,
		}
		return s.run(ctx, cf, req, ui)

	case KindNullableBool:
		labels := filter.BoolLabels{Name: cf.Name, True: cf.Labels.True, False: cf.Labels.False, Null: cf.Labels.Null}
		src, err := listdata.NewNullableBooleanSource(labels, nil, opts)
		if err != nil {
			return Result{}, err
		}
		s := session[filter.Null[bool], filter.Null[bool]]{
			selector: listdata.NewSelector(src, filter.NullableBooleanPolicy(labels)),
			parse:    parseNullBool,
			format:   filter.Null[bool].String,
		}
		return s.run(ctx, cf, req, ui)

	case KindNumber:
		formatNumber := func(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) }
		return pickValues(ctx, cf, req, ui, opts, filter.NumericPolicy(cf.Name, formatNumber), parseNumber, formatNumber)

	case KindDate:
		formatDate := func(d filter.Date) string { return d.Time().Format(cf.DateLayout()) }
		return pickValues(ctx, cf, req, ui, opts, filter.DatePolicy(cf.Name, cf.DateLayout()), cf.ParseDate, formatDate)

	case KindText:
		return pickText(cf, req)

	default:
		acc := candidateAccessors()
		var provider listdata.Provider[Candidate, string] = listdata.NewStaticProvider(cf.Items, acc)
		if req.latency > 0 {
			provider = slowProvider[Candidate, string]{inner: provider, delay: req.latency}
		}
		src, err := listdata.NewAsyncSource(provider, listdata.Config[Candidate, string]{
			SourceOptions: opts,
			Accessors:     acc,
		})
		if err != nil {
			return Result{}, err
		}
		s := session[Candidate, string]{
			selector: listdata.NewSelector(src, filter.SelectPolicy[string](cf.Name, textFor(cf.Items))),
			parse:    memberOf(cf),
			format:   func(v string) string { return v },
		}
		return s.run(ctx, cf, req, ui)
	}
}

// pickValues runs a selection over the typed values of the file's items.
// Item text, when given, replaces the policy's formatting.
func pickValues[V comparable](ctx context.Context, cf *CandidateFile, req request, ui filterbox.Options,
	opts listdata.SourceOptions, policy filter.Policy[V], parse func(string) (V, error), format func(V) string) (Result, error) {
	values := make([]V, 0, len(cf.Items))
	texts := make(map[V]string, len(cf.Items))
	for _, it := range cf.Items {
		v, err := parse(it.Value)
		if err != nil {
			return Result{}, errors.NewValidationError(err.Error()).WithField("items").WithValue(it.Value)
		}
		values = append(values, v)
		if it.Text != "" {
			texts[v] = it.Text
		}
	}
	base := policy.Format
	policy.Format = func(v V) string {
		if t, ok := texts[v]; ok {
			return t
		}
		return base(v)
	}

	acc := listdata.Accessors[V, V]{
		Value: func(v V) V { return v },
		Text:  policy.Format,
	}
	var provider listdata.Provider[V, V] = listdata.NewStaticProvider(values, acc)
	if req.latency > 0 {
		provider = slowProvider[V, V]{inner: provider, delay: req.latency}
	}
	src, err := listdata.NewPolicySource(policy, provider, opts)
	if err != nil {
		return Result{}, err
	}
	s := session[V, V]{
		selector: listdata.NewSelector(src, policy),
		parse: func(raw string) (V, error) {
			v, err := parse(raw)
			if err != nil {
				return v, err
			}
			if !slices.Contains(values, v) {
				var zero V
				return zero, fmt.Errorf("%q is not a %s candidate", raw, cf.Name)
			}
			return v, nil
		},
		format: format,
	}
	return s.run(ctx, cf, req, ui)
}

// pickText applies the file's text rule to the --search text. It never opens
// the filter box.
func pickText(cf *CandidateFile, req request) (Result, error) {
	op, err := filter.ParseTextOperator(cf.Operator)
	if err != nil {
		return Result{}, errors.NewValidationError(err.Error()).WithField("operator").WithValue(cf.Operator)
	}
	rule := filter.TextFilter{Name: cf.Name, Operator: op, Text: strings.TrimSpace(req.search)}

	res := Result{Name: cf.Name, Kind: cf.Kind, Values: []string{}}
	if rule.IsEmpty() {
		return res, nil
	}
	res.Values = append(res.Values, rule.Text)
	res.Description = rule.Description()
	for _, it := range cf.Items {
		text := it.Text
		if text == "" {
			text = it.Value
		}
		if rule.Match(text) {
			res.Matches = append(res.Matches, it.Value)
		}
	}
	return res, nil
}

// memberOf accepts only values listed in the file's items.
func memberOf(cf *CandidateFile) func(string) (string, error) {
	values := make(map[string]bool, len(cf.Items))
	for _, it := range cf.Items {
		values[it.Value] = true
	}
	return func(v string) (string, error) {
		if !values[v] {
			return "", fmt.Errorf("%q is not a %s candidate", v, cf.Name)
		}
		return v, nil
	}
}

func candidateAccessors() listdata.Accessors[Candidate, string] {
	return listdata.Accessors[Candidate, string]{
		Value: func(c Candidate) string { return c.Value },
		Text: func(c Candidate) string {
			if c.Text == "" {
				return c.Value
			}
			return c.Text
		},
		CSSClass: func(c Candidate) string { return c.Class },
		Disabled: func(c Candidate) bool { return c.Disabled },
		IconName: func(c Candidate) string { return c.Icon },
		Tooltip:  func(c Candidate) string { return c.Tooltip },
	}
}

// textFor formats selected values with their candidate text in descriptions.
func textFor(items []Candidate) func(string) string {
	texts := make(map[string]string, len(items))
	for _, it := range items {
		if it.Text != "" {
			texts[it.Value] = it.Text
		}
	}
	return func(v string) string {
		if t, ok := texts[v]; ok {
			return t
		}
		return v
	}
}

func parseNullBool(s string) (filter.Null[bool], error) {
	switch strings.ToLower(s) {
	case "null", "none", "":
		return filter.None[bool](), nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return filter.Null[bool]{}, err
	}
	return filter.Some(b), nil
}

// session runs one selection over a typed selector.
type session[S any, V comparable] struct {
	selector *listdata.Selector[S, V]
	parse    func(string) (V, error)
	format   func(V) string
}

func (s session[S, V]) run(ctx context.Context, cf *CandidateFile, req request, ui filterbox.Options) (Result, error) {
	initial, err := s.parseAll(cf.Selected)
	if err != nil {
		return Result{}, err
	}
	s.selector.Select(initial...)

	var f *filter.Filter[V]
	if req.interactive {
		var ok bool
		f, ok, err = filterbox.Run(ctx, s.selector, ui)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, ErrCanceled
		}
	} else {
		chosen, err := s.parseAll(req.selectArgs)
		if err != nil {
			return Result{}, err
		}
		if _, err := s.selector.Search(ctx, req.search, nil); err != nil {
			return Result{}, errors.NewDataSourceError("search candidates", err).
				WithMode(listdata.ModeText.String()).
				WithText(req.search)
		}
		s.selector.Select(chosen...)
		f = s.selector.BuildFilter()
	}

	res := Result{Name: cf.Name, Kind: cf.Kind, Values: []string{}}
	if f != nil {
		for _, v := range f.Values() {
			res.Values = append(res.Values, s.format(v))
		}
		res.Description = f.Description()
	}
	return res, nil
}

func (s session[S, V]) parseAll(raw []string) ([]V, error) {
	out := make([]V, 0, len(raw))
	for _, r := range raw {
		v, err := s.parse(strings.TrimSpace(r))
		if err != nil {
			return nil, errors.NewValidationError(err.Error()).WithField("select").WithValue(r)
		}
		out = append(out, v)
	}
	return out, nil
}

// slowProvider delays every call to mimic a remote provider.
type slowProvider[S any, V comparable] struct {
	inner listdata.Provider[S, V]
	delay time.Duration
}

func (p slowProvider[S, V]) wait(ctx context.Context) error {
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p slowProvider[S, V]) GetItemsByText(ctx context.Context, args listdata.TextArgs) ([]S, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.GetItemsByText(ctx, args)
}

func (p slowProvider[S, V]) GetItemsByValue(ctx context.Context, args listdata.ValueArgs[V]) ([]S, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.GetItemsByValue(ctx, args)
}
