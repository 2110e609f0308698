// Package filtergraph builds ffmpeg filter_complex descriptions from
// typed nodes instead of ad-hoc string concatenation. It isolates the
// one place where ffmpeg's escaping rules matter.
package filtergraph

import (
	"strconv"
	"strings"
)

// Arg is one filter argument. A nil-Key Arg serializes as a positional
// value.
type Arg struct {
	Key   string
	Value string
}

// Filter is a single filter invocation, e.g. loop=loop=74:size=1.
type Filter struct {
	Name string
	Args []Arg
}

// Chain is a linear run of filters from labeled inputs to labeled
// outputs.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

// Graph is an ordered set of chains.
type Graph struct {
	chains []Chain
}

// Add appends a chain to the graph.
func (g *Graph) Add(c Chain) {
	g.chains = append(g.chains, c)
}

// String serializes the graph in ffmpeg filter_complex syntax.
func (g *Graph) String() string {
	var sb strings.Builder
	for i, c := range g.chains {
		if i > 0 {
			sb.WriteByte(';')
		}
		for _, in := range c.Inputs {
			sb.WriteByte('[')
			sb.WriteString(in)
			sb.WriteByte(']')
		}
		for j, f := range c.Filters {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(f.Name)
			for k, a := range f.Args {
				if k == 0 {
					sb.WriteByte('=')
				} else {
					sb.WriteByte(':')
				}
				if a.Key != "" {
					sb.WriteString(a.Key)
					sb.WriteByte('=')
				}
				sb.WriteString(escapeValue(a.Value))
			}
		}
		for _, out := range c.Outputs {
			sb.WriteByte('[')
			sb.WriteString(out)
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// escapeValue quotes a value containing filter metacharacters and
// escapes commas inside expressions, per ffmpeg filter syntax.
func escapeValue(v string) string {
	if !strings.ContainsAny(v, ",()") {
		return v
	}
	escaped := strings.ReplaceAll(v, `,`, `\,`)
	return "'" + escaped + "'"
}

// SlideLoop builds the one-pass reconstruction graph: the raw input
// stream is split into one branch per unique slide, branch i keeps only
// frame i and repeats it repeats[i] times, timestamps are rebuilt at
// the target fps, and the branches are concatenated into [vout].
func SlideLoop(fps float64, repeats []int) *Graph {
	n := len(repeats)
	fpsStr := strconv.FormatFloat(fps, 'g', -1, 64)

	g := &Graph{}

	splitOuts := make([]string, n)
	for i := range splitOuts {
		splitOuts[i] = "tmp" + strconv.Itoa(i)
	}
	g.Add(Chain{
		Inputs:  []string{"0:v"},
		Filters: []Filter{{Name: "split", Args: []Arg{{Value: strconv.Itoa(n)}}}},
		Outputs: splitOuts,
	})

	concatIns := make([]string, n)
	for i, k := range repeats {
		concatIns[i] = "s" + strconv.Itoa(i) + "out"
		g.Add(Chain{
			Inputs: []string{splitOuts[i]},
			Filters: []Filter{
				{Name: "select", Args: []Arg{{Value: "eq(n," + strconv.Itoa(i) + ")"}}},
				{Name: "loop", Args: []Arg{
					{Key: "loop", Value: strconv.Itoa(k - 1)},
					{Key: "size", Value: "1"},
					{Key: "start", Value: "0"},
				}},
				{Name: "setpts", Args: []Arg{{Value: "N/(" + fpsStr + ")/TB"}}},
			},
			Outputs: []string{concatIns[i]},
		})
	}

	g.Add(Chain{
		Inputs: concatIns,
		Filters: []Filter{{Name: "concat", Args: []Arg{
			{Key: "n", Value: strconv.Itoa(n)},
			{Key: "v", Value: "1"},
			{Key: "a", Value: "0"},
		}}},
		Outputs: []string{"vout"},
	})

	return g
}
