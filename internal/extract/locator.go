package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrTableNotFound is returned by a TableLocator when no table matches.
var ErrTableNotFound = errors.New("table not found")

// TableLocator selects the table body whose rows are scraped.
type TableLocator interface {
	Locate(doc *goquery.Document) (*goquery.Selection, error)
	Name() string
}

// FirstTableBody selects the first <tbody> in the document.
type FirstTableBody struct{}

// Name returns the locator name.
func (FirstTableBody) Name() string { return "first-tbody" }

// Locate returns the first <tbody>.
func (FirstTableBody) Locate(doc *goquery.Document) (*goquery.Selection, error) {
	tbody := doc.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, ErrTableNotFound
	}
	return tbody, nil
}

// ByCaption selects the first table whose <caption> contains Text (case-insensitive).
type ByCaption struct {
	Text string
}

// Name returns the locator name.
func (ByCaption) Name() string { return "caption" }

// Locate returns the body of the first table with a matching caption.
func (l ByCaption) Locate(doc *goquery.Document) (*goquery.Selection, error) {
	want := normalize(l.Text)
	table := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(normalize(s.ChildrenFiltered("caption").Text()), want)
	}).First()
	return tableBody(table, fmt.Sprintf("caption %q", l.Text))
}

// ByHeaders selects the first table whose <th> cells contain every header
// (case-insensitive substring match).
type ByHeaders struct {
	Headers []string
}

// Name returns the locator name.
func (ByHeaders) Name() string { return "headers" }

// Locate returns the body of the first table carrying all headers.
func (l ByHeaders) Locate(doc *goquery.Document) (*goquery.Selection, error) {
	table := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		var cells []string
		s.Find("th").Each(func(_ int, th *goquery.Selection) {
			cells = append(cells, normalize(th.Text()))
		})
		for _, h := range l.Headers {
			if !containsAny(cells, normalize(h)) {
				return false
			}
		}
		return true
	}).First()
	return tableBody(table, fmt.Sprintf("headers %q", l.Headers))
}

func tableBody(table *goquery.Selection, what string) (*goquery.Selection, error) {
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table with %s", ErrTableNotFound, what)
	}
	tbody := table.ChildrenFiltered("tbody").First()
	if tbody.Length() == 0 {
		return nil, fmt.Errorf("%w: table with %s has no body", ErrTableNotFound, what)
	}
	return tbody, nil
}

func containsAny(cells []string, want string) bool {
	for _, c := range cells {
		if strings.Contains(c, want) {
			return true
		}
	}
	return false
}

// normalize lower-cases s and collapses runs of whitespace.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Factory builds a locator from its arguments.
type Factory func(args []string) (TableLocator, error)

// Registry holds named locator factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty locator registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Panics on duplicate name.
func (r *Registry) Register(name string, f Factory) {
	key := strings.ToLower(name)
	if _, ok := r.factories[key]; ok {
		panic("duplicate locator: " + key)
	}
	r.factories[key] = f
}

// New builds the locator registered under name.
func (r *Registry) New(name string, args []string) (TableLocator, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown table locator %q", name)
	}
	return f(args)
}

// Names returns the registered locator names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	return names
}

// DefaultRegistry returns a registry with all built-in locators.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FirstTableBody{}.Name(), func([]string) (TableLocator, error) {
		return FirstTableBody{}, nil
	})
	r.Register(ByCaption{}.Name(), func(args []string) (TableLocator, error) {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return nil, fmt.Errorf("caption locator needs caption text")
		}
		return ByCaption{Text: text}, nil
	})
	r.Register(ByHeaders{}.Name(), func(args []string) (TableLocator, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("headers locator needs at least one header")
		}
		return ByHeaders{Headers: args}, nil
	})
	return r
}
