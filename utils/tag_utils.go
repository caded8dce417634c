// tag_utils holds the cohort tag conventions shared by the API server:
// rendering, smart ordering and the canonical stored form.
package utils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CohortSuffix is appended to purely numeric tags when rendering, so
// that "12" displays as "12기".
const CohortSuffix = "기"

// FormatTag appends the cohort suffix to a purely numeric tag and leaves
// anything else untouched. Applied at serialization time only, storage
// keeps the raw tag.
func FormatTag(tag string) string {
	if tag == "" {
		return ""
	}
	if isAllDigits(tag) {
		return tag + CohortSuffix
	}
	return tag
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// tagNumber reduces a tag to a number by stripping every non-digit rune.
// "12기" -> 12. Returns false when nothing numeric remains.
func tagNumber(tag string) (int, bool) {
	var b strings.Builder
	for _, r := range tag {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortTagsSmart orders numeric-reducible tags first, ascending by their
// number, followed by the remaining tags in lexical order. The sort is
// stable and does not mutate its input.
func SortTagsSmart(tags []string) []string {
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		numI, okI := tagNumber(sorted[i])
		numJ, okJ := tagNumber(sorted[j])
		if okI && okJ {
			return numI < numJ
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

// NormalizeTags is the canonical stored form of a tag set: deduplicated
// (first occurrence wins) and smart-sorted. Normalizing an already
// normalized set returns the identical array.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	deduped := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		deduped = append(deduped, t)
	}
	return SortTagsSmart(deduped)
}

// TagsEqual reports whether two tag sets have the same normalized
// content, regardless of input order or duplicates.
func TagsEqual(a, b []string) bool {
	na, nb := NormalizeTags(a), NormalizeTags(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

// FormatDate renders a timestamp as the short localized label the client
// shows next to comments, e.g. "3월 14일".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d월 %d일", int(t.Month()), t.Day())
}
