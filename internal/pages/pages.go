// Package pages parses page index lists used to select, reorder and
// delete pages. Indices are 0-based, matching the organizer API.
package pages

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxIndices bounds the number of indices a single list may expand to.
const MaxIndices = 100000

// Parse parses a page index list and returns the indices in the
// order given. Supported forms: "3", "2,0", "0-4", "4-0", "0,2-3,2".
// Repeats are preserved and descending ranges expand in descending order.
// Negative values are returned as-is; range checking against a document
// is the caller's job. Lists expanding to more than MaxIndices entries are
// rejected before any range is expanded.
func Parse(list string) ([]int, error) {
	list = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, list)
	if list == "" {
		return nil, fmt.Errorf("empty page list")
	}

	var indices []int
	for _, part := range strings.Split(list, ",") {
		if part == "" {
			return nil, fmt.Errorf("empty entry in page list: %q", list)
		}

		start, end, isRange, err := splitRange(part)
		if err != nil {
			return nil, err
		}
		// Range bounds are non-negative, so their distance cannot overflow.
		distance := end - start
		if distance < 0 {
			distance = -distance
		}
		if distance >= MaxIndices-len(indices) {
			return nil, fmt.Errorf("page list expands to more than %d indices: %q", MaxIndices, part)
		}

		if !isRange {
			indices = append(indices, start)
			continue
		}

		step := 1
		if start > end {
			step = -1
		}
		for i := start; ; i += step {
			indices = append(indices, i)
			if i == end {
				break
			}
		}
	}

	return indices, nil
}

// splitRange parses "a" or "a-b". A leading '-' belongs to the number, so
// "-1" is a single negative index.
func splitRange(part string) (start, end int, isRange bool, err error) {
	sep := strings.Index(part[1:], "-")
	if sep < 0 {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, false, fmt.Errorf("invalid page index: %s", part)
		}
		return n, n, false, nil
	}
	sep++

	start, err = strconv.Atoi(part[:sep])
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid range start: %s", part[:sep])
	}
	end, err = strconv.Atoi(part[sep+1:])
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid range end: %s", part[sep+1:])
	}
	if start < 0 || end < 0 {
		return 0, 0, false, fmt.Errorf("invalid range: %s (ranges must be non-negative)", part)
	}
	return start, end, true, nil
}

// Partition splits indices into those inside [0, total) and those outside,
// keeping the relative order of both.
func Partition(indices []int, total int) (valid, skipped []int) {
	for _, index := range indices {
		if index >= 0 && index < total {
			valid = append(valid, index)
		} else {
			skipped = append(skipped, index)
		}
	}
	return valid, skipped
}

// Selection converts 0-based indices into pdfcpu's 1-based page selection strings.
func Selection(indices []int) []string {
	selection := make([]string, len(indices))
	for i, index := range indices {
		selection[i] = strconv.Itoa(index + 1)
	}
	return selection
}

// Identity returns [0, 1, ..., total-1].
func Identity(total int) []int {
	indices := make([]int, total)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
