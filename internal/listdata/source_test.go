package listdata

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/filterbox/internal/errors"
	"github.com/Iron-Ham/filterbox/internal/filter"
)

type customer struct {
	ID   int
	Name string
	Icon string
}

var customers = []customer{
	{ID: 1, Name: "Acme", Icon: "factory"},
	{ID: 2, Name: "Globex", Icon: "globe"},
	{ID: 3, Name: "Initech", Icon: "office"},
	{ID: 4, Name: "Umbrella", Icon: "umbrella"},
	{ID: 5, Name: "Acme Labs", Icon: "flask"},
}

var customerAccessors = Accessors[customer, int]{
	Value:    func(c customer) int { return c.ID },
	Text:     func(c customer) string { return c.Name },
	IconName: func(c customer) string { return c.Icon },
	Disabled: func(c customer) bool { return c.ID == 4 },
}

// recordingProvider wraps a StaticProvider and records each call.
type recordingProvider struct {
	inner *StaticProvider[customer, int]

	mu         sync.Mutex
	textCalls  []string
	valueCalls [][]int
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{inner: NewStaticProvider(customers, customerAccessors)}
}

func (p *recordingProvider) GetItemsByText(ctx context.Context, args TextArgs) ([]customer, error) {
	p.mu.Lock()
	p.textCalls = append(p.textCalls, args.SearchedText)
	p.mu.Unlock()
	return p.inner.GetItemsByText(ctx, args)
}

func (p *recordingProvider) GetItemsByValue(ctx context.Context, args ValueArgs[int]) ([]customer, error) {
	p.mu.Lock()
	p.valueCalls = append(p.valueCalls, slices.Clone(args.SearchedValues))
	p.mu.Unlock()
	return p.inner.GetItemsByValue(ctx, args)
}

func newCustomerSource(t *testing.T, p Provider[customer, int], less func(a, b customer) bool) *AsyncSource[customer, int] {
	t.Helper()
	src, err := NewAsyncSource(p, Config[customer, int]{
		SourceOptions: SourceOptions{Name: "customers"},
		Accessors:     customerAccessors,
		Less:          less,
	})
	if err != nil {
		t.Fatalf("NewAsyncSource() error = %v", err)
	}
	return src
}

func ids(items []customer) []int {
	out := make([]int, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func TestGetItemsArgs_OnlyUnknown(t *testing.T) {
	tests := []struct {
		name    string
		unknown []int
		want    bool
		mode    Mode
	}{
		{"nil unknown values", nil, false, ModeText},
		{"empty unknown values", []int{}, false, ModeText},
		{"some unknown values", []int{7}, true, ModeValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := NewGetItemsArgs("text", tt.unknown, nil)
			if got := args.OnlyUnknown(); got != tt.want {
				t.Errorf("OnlyUnknown() = %v, want %v", got, tt.want)
			}
			if got := args.Mode(); got != tt.mode {
				t.Errorf("Mode() = %v, want %v", got, tt.mode)
			}
		})
	}
}

func TestNewAsyncSource_RequiresValueAccessor(t *testing.T) {
	_, err := NewAsyncSource[customer, int](nil, Config[customer, int]{})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestItemForwardsToSource(t *testing.T) {
	labels := map[int]string{1: "before"}
	src, err := NewAsyncSource[int, int](nil, Config[int, int]{
		Accessors: Accessors[int, int]{
			Value:   func(v int) int { return v },
			Text:    func(v int) string { return labels[v] },
			Tooltip: func(v int) string { return "tip " + labels[v] },
		},
	})
	if err != nil {
		t.Fatalf("NewAsyncSource() error = %v", err)
	}

	row := src.Items([]int{1})[0]
	if got := row.Text(); got != "before" {
		t.Errorf("Text() = %q, want %q", got, "before")
	}

	labels[1] = "after"
	if got := row.Text(); got != "after" {
		t.Errorf("Text() after source change = %q, want %q (views must not cache)", got, "after")
	}
	if got := row.Tooltip(); got != "tip after" {
		t.Errorf("Tooltip() = %q, want %q", got, "tip after")
	}
	if row.Value() != 1 || row.SourceItem() != 1 {
		t.Errorf("Value()/SourceItem() = %d/%d, want 1/1", row.Value(), row.SourceItem())
	}
	if row.CSSClass() != "" || row.IconName() != "" || row.Disabled() {
		t.Error("unset accessors should yield zero values")
	}
}

func TestGetItems_TextMode(t *testing.T) {
	p := newRecordingProvider()
	src := newCustomerSource(t, p, nil)

	items, err := src.GetItems(context.Background(), "acme", nil, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if got := ids(items); !slices.Equal(got, []int{1, 5}) {
		t.Errorf("items = %v, want [1 5]", got)
	}
	if !slices.Equal(p.textCalls, []string{"acme"}) {
		t.Errorf("text calls = %v, want [acme]", p.textCalls)
	}
	if len(p.valueCalls) != 0 {
		t.Errorf("value calls = %v, want none", p.valueCalls)
	}
}

func TestGetItems_ValueResolutionForUnknownSelection(t *testing.T) {
	p := newRecordingProvider()
	src := newCustomerSource(t, p, nil)

	items, err := src.GetItems(context.Background(), "acme", []int{3, 99}, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if len(p.textCalls) != 0 {
		t.Errorf("text calls = %v, want none in value-resolution mode", p.textCalls)
	}
	if len(p.valueCalls) != 1 || !slices.Equal(p.valueCalls[0], []int{3, 99}) {
		t.Fatalf("value calls = %v, want [[3 99]]", p.valueCalls)
	}
	// 99 cannot be resolved and is simply absent.
	if got := ids(items); !slices.Equal(got, []int{3}) {
		t.Errorf("items = %v, want [3]", got)
	}
	if unknown := src.UnknownValues([]int{3, 99}); !slices.Equal(unknown, []int{99}) {
		t.Errorf("UnknownValues() = %v, want [99]", unknown)
	}
}

func TestGetItems_MergeKeepsSelectedOutsideResults(t *testing.T) {
	p := newRecordingProvider()
	src := newCustomerSource(t, p, nil)
	ctx := context.Background()

	// Make Umbrella resident, then search for something it does not match.
	if _, err := src.GetItems(ctx, "umbrella", nil, nil); err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	items, err := src.GetItems(ctx, "acme", []int{4}, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if got := ids(items); !slices.Equal(got, []int{1, 5, 4}) {
		t.Errorf("items = %v, want [1 5 4] (selection unioned, not replaced)", got)
	}
}

func TestGetItems_MergeDeduplicatesAndOrders(t *testing.T) {
	dupes := ProviderFuncs[customer, int]{
		ByText: func(ctx context.Context, args TextArgs) ([]customer, error) {
			return []customer{customers[2], customers[0], customers[2]}, nil
		},
	}
	byName := func(a, b customer) bool { return a.Name < b.Name }
	src := newCustomerSource(t, dupes, byName)

	if _, err := src.GetItems(context.Background(), "", nil, nil); err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	items, err := src.GetItems(context.Background(), "", []int{1}, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if got := ids(items); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("items = %v, want [1 3] sorted by name without duplicates", got)
	}
}

func TestGetItems_ProviderErrorPropagatesUnmodified(t *testing.T) {
	boom := errors.New("provider down")
	failing := ProviderFuncs[customer, int]{
		ByText: func(ctx context.Context, args TextArgs) ([]customer, error) {
			return nil, boom
		},
	}
	src := newCustomerSource(t, failing, nil)

	items, err := src.GetItems(context.Background(), "x", nil, nil)
	if err != boom {
		t.Errorf("error = %v, want the provider's error unmodified", err)
	}
	if items != nil {
		t.Errorf("items = %v, want nil on failure", items)
	}
}

func TestGetItems_CanceledDoesNotMutate(t *testing.T) {
	ignoresContext := ProviderFuncs[customer, int]{
		ByText: func(ctx context.Context, args TextArgs) ([]customer, error) {
			return customers[:1], nil
		},
	}
	src := newCustomerSource(t, ignoresContext, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.GetItems(ctx, "", nil, nil)
	if !errors.IsCanceled(err) {
		t.Fatalf("error = %v, want cancellation", err)
	}
	if _, ok := src.Lookup(1); ok {
		t.Error("canceled fetch must not make items resident")
	}
}

type fetchRecord struct {
	source, mode, outcome string
}

type recordingObserver struct {
	mu      sync.Mutex
	records []fetchRecord
}

func (o *recordingObserver) ObserveFetch(source, mode, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, fetchRecord{source, mode, outcome})
}

func TestGetItems_ReportsToObserver(t *testing.T) {
	obs := &recordingObserver{}
	src, err := NewBooleanSource(filter.BoolLabels{}, nil, SourceOptions{Name: "active", Observer: obs})
	if err != nil {
		t.Fatalf("NewBooleanSource() error = %v", err)
	}

	if _, err := src.GetItems(context.Background(), "", nil, nil); err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	want := []fetchRecord{{"active", "text", OutcomeFallback}}
	if !slices.Equal(obs.records, want) {
		t.Errorf("records = %v, want %v", obs.records, want)
	}
}

func TestBooleanSourceDefaults(t *testing.T) {
	ctx := context.Background()

	src, err := NewBooleanSource(filter.BoolLabels{}, nil, SourceOptions{})
	if err != nil {
		t.Fatalf("NewBooleanSource() error = %v", err)
	}
	items, err := src.GetItems(ctx, "", nil, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if !slices.Equal(items, []bool{false, true}) {
		t.Errorf("items = %v, want [false true]", items)
	}

	items, err = src.GetItems(ctx, "ye", nil, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if !slices.Equal(items, []bool{true}) {
		t.Errorf("items for %q = %v, want [true]", "ye", items)
	}
}

func TestNullableBooleanSourceDefaults(t *testing.T) {
	src, err := NewNullableBooleanSource(filter.BoolLabels{}, nil, SourceOptions{})
	if err != nil {
		t.Fatalf("NewNullableBooleanSource() error = %v", err)
	}
	items, err := src.GetItems(context.Background(), "", nil, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	want := []filter.Null[bool]{filter.None[bool](), filter.Some(false), filter.Some(true)}
	if !slices.Equal(items, want) {
		t.Errorf("items = %v, want %v", items, want)
	}
}

type color int

const (
	colorRed color = iota
	colorBlue
	colorGreen
)

func TestEnumSourceFallsBackWhenProviderIsEmpty(t *testing.T) {
	names := map[color]string{colorRed: "red", colorBlue: "Blue", colorGreen: "green"}
	typ := filter.NewEnumType("Color", []color{colorRed, colorBlue, colorGreen}, func(c color) string { return names[c] })

	empty := ProviderFuncs[color, color]{
		ByText: func(ctx context.Context, args TextArgs) ([]color, error) { return nil, nil },
	}
	src, err := NewEnumSource(typ, empty, SourceOptions{})
	if err != nil {
		t.Fatalf("NewEnumSource() error = %v", err)
	}

	items, err := src.GetItems(context.Background(), "", nil, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if want := []color{colorBlue, colorGreen, colorRed}; !slices.Equal(items, want) {
		t.Errorf("items = %v, want %v (every member by display name)", items, want)
	}

	items, err = src.GetItems(context.Background(), "r*", nil, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if want := []color{colorRed}; !slices.Equal(items, want) {
		t.Errorf("glob items = %v, want %v", items, want)
	}
}

func TestStaticProviderReportsProgress(t *testing.T) {
	p := NewStaticProvider(customers, customerAccessors)

	var last [2]int
	calls := 0
	progress := ProgressFunc(func(done, total int) {
		calls++
		last = [2]int{done, total}
	})

	if _, err := p.GetItemsByText(context.Background(), TextArgs{Progress: progress}); err != nil {
		t.Fatalf("GetItemsByText() error = %v", err)
	}
	if calls != len(customers) {
		t.Errorf("progress calls = %d, want %d", calls, len(customers))
	}
	if last != [2]int{len(customers), len(customers)} {
		t.Errorf("last report = %v, want [%d %d]", last, len(customers), len(customers))
	}
}

func TestMatchText(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"", "anything", true},
		{"acme", "ACME Labs", true},
		{"labs", "Acme", false},
		{"ac*", "Acme Labs", true},
		{"*labs", "Acme Labs", true},
		{"ac?e", "acme", true},
		{"ac?e", "acme labs", false},
		{"[ab]cme", "Acme", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.text, func(t *testing.T) {
			if got := MatchText(tt.pattern, tt.text); got != tt.want {
				t.Errorf("MatchText(%q, %q) = %v, want %v", tt.pattern, tt.text, got, tt.want)
			}
		})
	}
}
