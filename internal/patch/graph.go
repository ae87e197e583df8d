package patch

import (
	"strconv"
	"strings"
)

// Param is a single key=value filter option.
type Param struct {
	Key   string
	Value string
}

// Filter is one named step of a filter graph.
type Filter struct {
	Name   string
	Params []Param
}

// String renders the filter as name=k=v:k=v.
func (f Filter) String() string {
	if len(f.Params) == 0 {
		return f.Name
	}
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

// Graph is an ordered filter chain. It is built fresh by Compile and not
// modified afterwards.
type Graph struct {
	Filters []Filter
}

// String joins the filters with commas into a single -af expression.
func (g *Graph) String() string {
	if g == nil {
		return ""
	}
	parts := make([]string, 0, len(g.Filters))
	for _, f := range g.Filters {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ",")
}

// Len returns the number of filters, treating a nil graph as empty.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Filters)
}

func ms(v int) string {
	return strconv.Itoa(v) + "ms"
}
