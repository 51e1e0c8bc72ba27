package config

import (
	"reflect"
	"testing"
)

func names(sources []*Source) []string {
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		out = append(out, src.Name)
	}
	return out
}

func TestFilterSourcesEmptyFilterKeepsOrder(t *testing.T) {
	sources := []Source{
		{Name: "c", Tags: []string{"x"}},
		{Name: "a"},
		{Name: "b", Tags: []string{}},
	}
	for _, filter := range [][]string{nil, {}} {
		got := names(FilterSources(sources, filter))
		want := []string{"c", "a", "b"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("filter %v: got %v want %v", filter, got, want)
		}
	}
}

func TestFilterSourcesIntersection(t *testing.T) {
	sources := []Source{
		{Name: "daily", Tags: []string{"daily", "german"}},
		{Name: "untagged"},
		{Name: "weekly", Tags: []string{"weekly"}},
		{Name: "case", Tags: []string{"Daily"}},
		{Name: "empty", Tags: []string{}},
	}
	tests := []struct {
		filter []string
		want   []string
	}{
		{[]string{"daily"}, []string{"daily"}},
		{[]string{"weekly", "german"}, []string{"daily", "weekly"}},
		{[]string{"Daily"}, []string{"case"}},
		{[]string{"none"}, []string{}},
	}
	for _, tc := range tests {
		got := names(FilterSources(sources, tc.filter))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("filter %v: got %v want %v", tc.filter, got, tc.want)
		}
	}
}

func TestSourceHasTag(t *testing.T) {
	src := Source{Tags: []string{"daily", "german"}}
	if !src.HasTag("german") {
		t.Fatal("expected german tag")
	}
	if src.HasTag("German") {
		t.Fatal("tag comparison should be case-sensitive")
	}
	if (&Source{}).HasTag("daily") {
		t.Fatal("untagged source should not match")
	}
}

func TestFilterSourcesReturnsBorrowedReferences(t *testing.T) {
	sources := []Source{{Name: "a"}}
	selected := FilterSources(sources, nil)
	if selected[0] != &sources[0] {
		t.Fatal("expected selection to reference the configured source")
	}
}

func TestParseDownloadMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    DownloadMethod
		wantErr bool
	}{
		{"yt-dlp", DownloadYtDlp, false},
		{" YT-DLP ", DownloadYtDlp, false},
		{"http", DownloadHTTP, false},
		{"", DownloadYtDlp, false},
		{"ftp", "", true},
	}
	for _, tc := range tests {
		got, err := ParseDownloadMethod(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDownloadMethod(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseDownloadMethod(%q) = %q, %v", tc.input, got, err)
		}
	}
}

func TestContentTypeLabel(t *testing.T) {
	if ContentTypeRSSAtom.Label() != "RSS/Atom" {
		t.Fatalf("unexpected label %q", ContentTypeRSSAtom.Label())
	}
	if ContentType("custom").Valid() {
		t.Fatal("expected unknown content type to be invalid")
	}
}
