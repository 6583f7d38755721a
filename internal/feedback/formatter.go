// Package feedback turns a raw feedback text blob into titled report sections.
package feedback

import "strings"

// SectionTitles is the fixed ordered vocabulary of headings a feedback report
// may contain. The model is instructed to emit exactly these.
var SectionTitles = []string{
	"Overall Assessment",
	"Key Strengths",
	"Areas for Improvement",
}

// FallbackTitle is used when no known heading is found in the raw text.
const FallbackTitle = "Feedback Report"

// Section is one titled fragment of a feedback report.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Parse splits raw feedback text on the known section headings, pairing each
// heading with the text that follows it up to the next heading or end of
// text. Headings may appear in any order and may be partially absent; empty
// fragments are discarded. If no heading is found at all, the entire input is
// returned as a single fallback section.
func Parse(raw string) []Section {
	type mark struct {
		start int // index of the heading
		end   int // index just past the heading
		title string
	}

	var marks []mark
	for _, title := range SectionTitles {
		offset := 0
		for {
			i := strings.Index(raw[offset:], title)
			if i < 0 {
				break
			}
			start := offset + i
			marks = append(marks, mark{start: start, end: start + len(title), title: title})
			offset = start + len(title)
		}
	}

	if len(marks) == 0 {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		return []Section{{Title: FallbackTitle, Content: strings.TrimSpace(raw)}}
	}

	// Order marks by position in the text.
	for i := 1; i < len(marks); i++ {
		for j := i; j > 0 && marks[j].start < marks[j-1].start; j-- {
			marks[j], marks[j-1] = marks[j-1], marks[j]
		}
	}

	var sections []Section
	for i, m := range marks {
		end := len(raw)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		content := strings.TrimSpace(raw[m.end:end])
		if content == "" {
			continue
		}
		sections = append(sections, Section{Title: m.title, Content: content})
	}

	if len(sections) == 0 {
		return []Section{{Title: FallbackTitle, Content: strings.TrimSpace(raw)}}
	}
	return sections
}
