package planner

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeDue = regexp.MustCompile(`^(?:about\s+|approximately\s+|~\s*)?(\d+|[a-z]+)(?:\s*(?:-|to|–)\s*(\d+|[a-z]+))?\s+(day|week|month|year)s?\s+(before|after|prior)\b`)

// maxOffset caps relative offsets at ten years either side of the wedding.
var maxOffset = map[string]int{"day": 3660, "week": 522, "month": 120, "year": 10}

var wordNumbers = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// ResolveDueDate turns a model-supplied due date into a calendar date. It
// returns nil when raw is neither an absolute date nor an offset from the
// wedding it recognizes.
func ResolveDueDate(raw string, weddingDate, now time.Time) *time.Time {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}

	for _, layout := range []string{dateLayout, time.RFC3339, "2006/01/02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return &t
		}
	}

	switch s {
	case "now", "immediately", "asap", "today":
		t := now
		if t.After(weddingDate) {
			t = weddingDate
		}
		return &t
	case "wedding day", "day of", "on the wedding day", "the wedding day", "day of wedding":
		t := weddingDate
		return &t
	}

	m := relativeDue.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, ok := parseCount(m[1])
	if !ok {
		return nil
	}
	if m[2] != "" {
		other, ok := parseCount(m[2])
		if !ok {
			return nil
		}
		// ranges use the earlier bound
		if m[4] == "after" {
			n = min(n, other)
		} else {
			n = max(n, other)
		}
	}
	if n > maxOffset[m[3]] {
		return nil
	}
	if m[4] != "after" {
		n = -n
	}

	var t time.Time
	switch m[3] {
	case "day":
		t = weddingDate.AddDate(0, 0, n)
	case "week":
		t = weddingDate.AddDate(0, 0, 7*n)
	case "month":
		t = weddingDate.AddDate(0, n, 0)
	case "year":
		t = weddingDate.AddDate(n, 0, 0)
	}
	return &t
}

func parseCount(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := wordNumbers[s]
	return n, ok
}
