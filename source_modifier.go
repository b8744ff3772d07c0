package main

import (
	"sort"
	"strings"
)

// Change represents a text replacement in module source.
// Start and End are byte offsets in the original content.
type Change struct {
	Start int
	End   int
	Text  string
}

// applyChangesToContent splices changes into content. All offsets refer to the
// original content, so changes never shift each other. When two changes
// overlap only the longer one is applied.
func applyChangesToContent(content string, changes []Change) string {
	if len(changes) == 0 {
		return content
	}

	sorted := make([]Change, len(changes))
	copy(sorted, changes)

	// Longest first, ties broken by Start, so the widest span wins an overlap.
	sort.Slice(sorted, func(i, j int) bool {
		lenI := sorted[i].End - sorted[i].Start
		lenJ := sorted[j].End - sorted[j].Start
		if lenI != lenJ {
			return lenI > lenJ
		}
		return sorted[i].Start < sorted[j].Start
	})

	var picked []Change
	for _, c := range sorted {
		if c.Start < 0 || c.End < c.Start || c.End > len(content) {
			continue
		}
		overlaps := false
		for _, p := range picked {
			if c.Start < p.End && p.Start < c.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			picked = append(picked, c)
		}
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].Start < picked[j].Start
	})

	var builder strings.Builder
	builder.Grow(len(content))
	lastPos := 0
	for _, c := range picked {
		builder.WriteString(content[lastPos:c.Start])
		builder.WriteString(c.Text)
		lastPos = c.End
	}
	builder.WriteString(content[lastPos:])

	return builder.String()
}

// skipOptionalSemicolon skips spaces/tabs then `;` if present.
// Returns position after `;` if found, or the original position i if not.
func skipOptionalSemicolon(code string, i int) int {
	j := i
	for j < len(code) && (code[j] == ' ' || code[j] == '\t') {
		j++
	}
	if j < len(code) && code[j] == ';' {
		return j + 1
	}
	return i
}

// skipTrailingLineBreak skips spaces/tabs followed by a single `\n` or `\r\n`.
// Returns the original position when no line break follows.
func skipTrailingLineBreak(code string, i int) int {
	j := i
	for j < len(code) && (code[j] == ' ' || code[j] == '\t') {
		j++
	}
	if strings.HasPrefix(code[j:], "\r\n") {
		return j + 2
	}
	if j < len(code) && code[j] == '\n' {
		return j + 1
	}
	return i
}
