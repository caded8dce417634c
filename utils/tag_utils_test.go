package utils

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFormatTag(t *testing.T) {
	require.Equal(t, "12기", FormatTag("12"))
	require.Equal(t, "12기", FormatTag("12기"))
	require.Equal(t, "강사", FormatTag("강사"))
	require.Equal(t, "", FormatTag(""))
}

func TestSortTagsSmart(t *testing.T) {
	got := SortTagsSmart([]string{"10기", "2", "강사"})
	want := []string{"2", "10기", "강사"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}

	// Numeric tags sort by value, not lexically.
	got = SortTagsSmart([]string{"10기", "2기", "1기"})
	want = []string{"1기", "2기", "10기"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}

	// Non-numeric tags fall after, alphabetically.
	got = SortTagsSmart([]string{"나들이", "강사", "3"})
	want = []string{"3", "강사", "나들이"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}

	// Input slice is left untouched.
	in := []string{"나", "가"}
	SortTagsSmart(in)
	require.Equal(t, []string{"나", "가"}, in)
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"10기", "소풍", "2", "소풍"})
	want := []string{"2", "10기", "소풍"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected normalization (-want +got):\n%s", diff)
	}

	// Normalizing twice changes nothing.
	require.Equal(t, got, NormalizeTags(got))
}

func TestTagsEqual(t *testing.T) {
	require.True(t, TagsEqual([]string{"a", "b"}, []string{"b", "a", "b"}))
	require.False(t, TagsEqual([]string{"a"}, []string{"a", "b"}))
	require.False(t, TagsEqual([]string{"a", "b"}, []string{"a", "c"}))
	require.True(t, TagsEqual(nil, []string{}))
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "3월 5일", FormatDate(time.Date(2023, 3, 5, 10, 0, 0, 0, time.UTC)))
	require.Equal(t, "12월 31일", FormatDate(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
}
