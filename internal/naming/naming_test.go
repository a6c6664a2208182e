package naming

import (
	"reflect"
	"testing"
)

func TestUniqueNameSequence(t *testing.T) {
	r := NewRegistry()
	if got := r.UniqueName("dem"); got != "dem" {
		t.Fatalf("first allocation = %q, want dem", got)
	}
	if got := r.UniqueName("dem"); got != "dem_1" {
		t.Fatalf("second allocation = %q, want dem_1", got)
	}
	if got := r.UniqueName("dem"); got != "dem_2" {
		t.Fatalf("third allocation = %q, want dem_2", got)
	}
	if got := r.UniqueName("ndvi"); got != "ndvi" {
		t.Fatalf("fresh base = %q, want ndvi", got)
	}
}

func TestUniqueNameSkipsTakenSuffix(t *testing.T) {
	r := NewRegistry()
	r.UniqueName("x_1")
	if got := r.UniqueName("x"); got != "x" {
		t.Fatalf("got %q, want x", got)
	}
	if got := r.UniqueName("x"); got != "x_2" {
		t.Fatalf("got %q, want x_2 (x_1 was taken)", got)
	}
}

func TestUsedAndReset(t *testing.T) {
	r := NewRegistry()
	r.UniqueName("a")
	if !r.Used("a") {
		t.Fatal("allocated name not reported used")
	}
	if r.Used("b") {
		t.Fatal("unallocated name reported used")
	}
	r.Reset()
	if r.Used("a") {
		t.Fatal("name still used after reset")
	}
}

func TestSortBySuffixNumeric(t *testing.T) {
	in := []string{"B2", "B10", "B1"}
	got := SortBySuffix(in)
	want := []string{"B1", "B2", "B10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sorted = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(in, []string{"B2", "B10", "B1"}) {
		t.Fatal("input slice was modified")
	}
}

func TestSortBySuffixNoDigitsIsStable(t *testing.T) {
	got := SortBySuffix([]string{"beta", "alpha", "x1"})
	// names without digits sort as suffix 1, keeping input order among ties
	want := []string{"beta", "alpha", "x1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sorted = %v, want %v", got, want)
	}
}

func TestBaseNameFromClip(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/tmp/temp_clip/ndvi_clip.tif", "ndvi"},
		{"dem.tif", "dem"},
		{"field/dem_clip.tif", "dem"},
		{"plain", "plain"},
		{"a_clip_clip.tif", "a_clip"},
	}
	for _, tc := range cases {
		if got := BaseNameFromClip(tc.path); got != tc.want {
			t.Errorf("BaseNameFromClip(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestClipFileName(t *testing.T) {
	if got := ClipFileName("/data/rasters/ndvi.asc"); got != "ndvi_clip.tif" {
		t.Fatalf("ClipFileName = %q, want ndvi_clip.tif", got)
	}
	if base := BaseNameFromClip(ClipFileName("/data/x/dem.tif")); base != "dem" {
		t.Fatalf("round trip through clip name = %q, want dem", base)
	}
}
