// Package pagerange parses user supplied page range text such as "1-3,5,7-9"
// into 0-based inclusive intervals checked against a concrete page count.
package pagerange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
)

// tokenPattern matches "N" or "N-M", allowing spaces around the hyphen
var tokenPattern = regexp.MustCompile(`^(\d+)(?:\s*-\s*(\d+))?$`)

// PageRange is an inclusive interval of 0-based page indices
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of pages in the range
func (r PageRange) Len() int {
	return r.End - r.Start + 1
}

// String formats the range in 1-based external syntax
func (r PageRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start + 1)
	}
	return fmt.Sprintf("%d-%d", r.Start+1, r.End+1)
}

// Contains reports whether the 0-based index lies within the range
func (r PageRange) Contains(index int) bool {
	return index >= r.Start && index <= r.End
}

// Validate checks the range against a document of pageCount pages
func (r PageRange) Validate(pageCount int) error {
	if r.Start < 0 || r.End >= pageCount {
		return errs.PageOutOfBounds(r.String(), pageCount)
	}
	if r.Start > r.End {
		return errs.InvalidRangeSyntax(r.String())
	}
	return nil
}

// Parse converts spec into ranges in the order they were supplied.
// Tokens are validated against pageCount; the first failing token is reported.
func Parse(spec string, pageCount int) ([]PageRange, error) {
	tokens := strings.Split(spec, ",")
	ranges := make([]PageRange, 0, len(tokens))
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		r, err := parseToken(token, pageCount)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func parseToken(token string, pageCount int) (PageRange, error) {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return PageRange{}, errs.InvalidRangeSyntax(token)
	}

	start, err := bound(m[1], token, pageCount)
	if err != nil {
		return PageRange{}, err
	}
	end := start
	if m[2] != "" {
		end, err = bound(m[2], token, pageCount)
		if err != nil {
			return PageRange{}, err
		}
	}
	if start > end {
		return PageRange{}, errs.InvalidRangeSyntax(token)
	}

	return PageRange{Start: start - 1, End: end - 1}, nil
}

// bound parses a 1-based page number and checks 1 <= n <= pageCount.
// Digits that overflow int are reported as out of bounds.
func bound(digits, token string, pageCount int) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > pageCount {
		return 0, errs.PageOutOfBounds(token, pageCount)
	}
	return n, nil
}

// Pages expands ranges into 1-based page numbers, in range order.
// Duplicates are kept.
func Pages(ranges []PageRange) []int {
	var pages []int
	for _, r := range ranges {
		for i := r.Start; i <= r.End; i++ {
			pages = append(pages, i+1)
		}
	}
	return pages
}

// ParsePages parses spec and returns the distinct 1-based page numbers it
// names, in first-seen order. It is the set form used by page deletion.
func ParsePages(spec string, pageCount int) ([]int, error) {
	ranges, err := Parse(spec, pageCount)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var pages []int
	for _, p := range Pages(ranges) {
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// ValidatePages checks that every 1-based page number is in [1, pageCount]
func ValidatePages(pages []int, pageCount int) error {
	for _, p := range pages {
		if p < 1 || p > pageCount {
			return errs.PageOutOfBounds(strconv.Itoa(p), pageCount)
		}
	}
	return nil
}

// Selection formats 1-based page numbers as pdfcpu page selection strings
func Selection(pages []int) []string {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = strconv.Itoa(p)
	}
	return sel
}
