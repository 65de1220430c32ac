// Package samples bundles reference Python programs with their textbook
// complexity classes. They back `bigo analyze --sample` and the regression
// tests of the analysis pipeline.
package samples

import (
	"embed"
	"sort"
)

//go:embed python/*.py
var files embed.FS

// Sample is a reference program and its expected classes.
type Sample struct {
	Name  string
	Title string
	Code  string
	Time  string
	Space string
}

var catalog = []Sample{
	{Name: "binary_search", Title: "Binary Search", Time: "O(log n)", Space: "O(1)"},
	{Name: "bubble_sort", Title: "Bubble Sort", Time: "O(n^2)", Space: "O(1)"},
	{Name: "factorial_recursive", Title: "Factorial (Recursive)", Time: "O(n)", Space: "O(n)"},
	{Name: "fibonacci_naive", Title: "Fibonacci (Naive)", Time: "O(2^n)", Space: "O(n)"},
	{Name: "linear_search", Title: "Linear Search", Time: "O(n)", Space: "O(1)"},
	{Name: "merge_sort", Title: "Merge Sort", Time: "O(n log n)", Space: "O(n)"},
}

func load(s Sample) Sample {
	data, err := files.ReadFile("python/" + s.Name + ".py")
	if err != nil {
		panic("samples: missing embedded program " + s.Name)
	}
	s.Code = string(data)
	return s
}

// All returns every sample in catalog order.
func All() []Sample {
	out := make([]Sample, len(catalog))
	for i, s := range catalog {
		out[i] = load(s)
	}
	return out
}

// Get returns the sample called name.
func Get(name string) (Sample, bool) {
	for _, s := range catalog {
		if s.Name == name {
			return load(s), true
		}
	}
	return Sample{}, false
}

// Names lists the sample names, sorted.
func Names() []string {
	names := make([]string, len(catalog))
	for i, s := range catalog {
		names[i] = s.Name
	}
	sort.Strings(names)
	return names
}
