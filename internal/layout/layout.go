package layout

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// DefaultName is the layout used when configuration names none.
const DefaultName = "phrasebank"

// Strategy is one step of a content-region fallback chain.
type Strategy struct {
	Selector string
	Matcher  cascadia.Selector
}

// Layout describes where a site keeps its phrase content.
type Layout struct {
	Name string
	// Strategies are tried in order; the first one that matches wins.
	Strategies []Strategy
}

// New compiles selectors into a layout, failing on the first invalid one.
func New(name string, selectors ...string) (Layout, error) {
	if name == "" {
		return Layout{}, fmt.Errorf("layout name is empty")
	}
	if len(selectors) == 0 {
		return Layout{}, fmt.Errorf("layout %s has no selectors", name)
	}

	strategies := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		compiled, err := cascadia.Compile(sel)
		if err != nil {
			return Layout{}, fmt.Errorf("layout %s: selector %q: %w", name, sel, err)
		}
		strategies = append(strategies, Strategy{Selector: sel, Matcher: compiled})
	}
	return Layout{Name: name, Strategies: strategies}, nil
}

// MustNew is New for package-level layouts known to be valid.
func MustNew(name string, selectors ...string) Layout {
	l, err := New(name, selectors...)
	if err != nil {
		panic(err)
	}
	return l
}

// PhrasebankSelectors is the content-region chain for the Manchester
// phrasebank: WordPress entry containers first, then looser class matches,
// then semantic elements, then the whole body.
var PhrasebankSelectors = []string{
	"div.entry-content, section.entry-content",
	`div[class*="entry"], section[class*="entry"]`,
	`div[class*="content"], section[class*="content"]`,
	`div[class*="main"], section[class*="main"]`,
	"main",
	"body",
}

// GenericSelectors suits pages without a known structure.
var GenericSelectors = []string{"main", "article", "body"}

// Phrasebank returns the default layout.
func Phrasebank() Layout {
	return MustNew(DefaultName, PhrasebankSelectors...)
}

// Registry keeps a mapping from layout names to their definitions.
type Registry struct {
	layouts map[string]Layout
}

// NewRegistry builds a registry preloaded with the built-in layouts.
func NewRegistry() *Registry {
	r := &Registry{layouts: map[string]Layout{}}
	r.Register(Phrasebank())
	r.Register(MustNew("generic", GenericSelectors...))
	return r
}

// Register adds or replaces a layout.
func (r *Registry) Register(l Layout) {
	if r.layouts == nil {
		r.layouts = map[string]Layout{}
	}
	r.layouts[l.Name] = l
}

// Resolve returns a layout by name or an error if it is absent.
// An empty name resolves to DefaultName.
func (r *Registry) Resolve(name string) (Layout, error) {
	if name == "" {
		name = DefaultName
	}
	if l, ok := r.layouts[name]; ok {
		return l, nil
	}
	return Layout{}, fmt.Errorf("layout %s is not registered", name)
}
