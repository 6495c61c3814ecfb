package querystate

import (
	"reflect"
	"testing"

	"github.com/khrees2412/jobdeck/pkg/models"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		sel  models.FacetSelection
		page int
	}{
		{
			name: "single facet page 1",
			sel:  models.FacetSelection{"employmentType": {"fulltime"}},
			page: 1,
		},
		{
			name: "multiple facets and values",
			sel: models.FacetSelection{
				"employmentType":  {"fulltime", "contract"},
				"tag":             {"go", "remote"},
				"experienceLevel": {"senior"},
			},
			page: 4,
		},
		{
			name: "values needing escapes",
			sel:  models.FacetSelection{"location": {"New York", "São Paulo", "a&b=c"}},
			page: 2,
		},
		{
			name: "unknown facet",
			sel:  models.FacetSelection{"salaryBand": {"high"}},
			page: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.sel, tt.page)
			got := Decode(encoded)
			if !got.Selection.Equal(tt.sel) {
				t.Errorf("selection = %v, want %v (encoded %q)", got.Selection, tt.sel, encoded)
			}
			if got.Page != tt.page {
				t.Errorf("page = %d, want %d (encoded %q)", got.Page, tt.page, encoded)
			}
		})
	}
}

func TestRoundTripOfToggledPaddedValues(t *testing.T) {
	sel := models.FacetSelection{}
	sel.Toggle("location", " Berlin ")
	sel.Add("tag", "go ")

	encoded := Encode(sel, 2)
	if encoded != "location=Berlin&page=2&tag=go" {
		t.Errorf("Encode() = %q", encoded)
	}
	if got := Decode(encoded); !got.Selection.Equal(sel) {
		t.Errorf("selection = %v, want %v", got.Selection, sel)
	}
	if sel.Toggle("location", "Berlin") {
		t.Error("toggling the trimmed value should deselect it")
	}
}

func TestEncodeCanonicalForm(t *testing.T) {
	tests := []struct {
		name string
		sel  models.FacetSelection
		page int
		want string
	}{
		{name: "empty", sel: models.FacetSelection{}, page: 1, want: ""},
		{name: "empty facet omitted", sel: models.FacetSelection{"tag": {}}, page: 1, want: ""},
		{name: "page 1 omitted", sel: models.FacetSelection{"tag": {"go"}}, page: 1, want: "tag=go"},
		{name: "page kept", sel: models.FacetSelection{}, page: 3, want: "page=3"},
		{
			name: "order preserved within facet, keys sorted",
			sel:  models.FacetSelection{"tag": {"remote", "go"}, "employmentType": {"fulltime"}},
			page: 2,
			want: "employmentType=fulltime&page=2&tag=remote,go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.sel, tt.page); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeEmptySelection(t *testing.T) {
	got := Decode(Encode(models.FacetSelection{}, 1))
	if len(got.Selection) != 0 || got.Page != 1 {
		t.Errorf("Decode(Encode({})) = %+v", got)
	}
}

func TestDecodeTolerance(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantSel  models.FacetSelection
		wantPage int
	}{
		{name: "leading question mark", raw: "?tag=go&page=2", wantSel: models.FacetSelection{"tag": {"go"}}, wantPage: 2},
		{name: "non-numeric page", raw: "page=abc", wantSel: models.FacetSelection{}, wantPage: 1},
		{name: "zero page", raw: "page=0", wantSel: models.FacetSelection{}, wantPage: 1},
		{name: "negative page", raw: "page=-4", wantSel: models.FacetSelection{}, wantPage: 1},
		{name: "empty page", raw: "page=", wantSel: models.FacetSelection{}, wantPage: 1},
		{name: "empty entries dropped", raw: "tag=go,,remote,", wantSel: models.FacetSelection{"tag": {"go", "remote"}}, wantPage: 1},
		{name: "duplicates collapsed", raw: "tag=go,go&tag=go", wantSel: models.FacetSelection{"tag": {"go"}}, wantPage: 1},
		{name: "empty facet param", raw: "tag=", wantSel: models.FacetSelection{}, wantPage: 1},
		{name: "unknown key kept", raw: "utm_source=mail", wantSel: models.FacetSelection{"utm_source": {"mail"}}, wantPage: 1},
		{name: "malformed escape", raw: "tag=%zz&page=3", wantSel: models.FacetSelection{}, wantPage: 1},
		{name: "spaces around values", raw: "tag=go,+rust+", wantSel: models.FacetSelection{"tag": {"go", "rust"}}, wantPage: 1},
		{name: "percent encoded comma", raw: "tag=go%2Cremote", wantSel: models.FacetSelection{"tag": {"go", "remote"}}, wantPage: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.raw)
			if !got.Selection.Equal(tt.wantSel) {
				t.Errorf("selection = %v, want %v", got.Selection, tt.wantSel)
			}
			if got.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", got.Page, tt.wantPage)
			}
		})
	}
}

func TestSetParamPreservesOtherParams(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		key   string
		value string
		want  string
	}{
		{name: "append", raw: "q=Go%20dev&ref=x", key: "tag", value: "go", want: "q=Go%20dev&ref=x&tag=go"},
		{name: "replace in place", raw: "a=1&tag=go&b=2", key: "tag", value: "go,remote", want: "a=1&tag=go,remote&b=2"},
		{name: "remove", raw: "a=1&tag=go&b=2", key: "tag", value: "", want: "a=1&b=2"},
		{name: "collapse repeated", raw: "tag=a&x=1&tag=b", key: "tag", value: "c", want: "tag=c&x=1"},
		{name: "escape values", raw: "", key: "location", value: "New York,Paris", want: "location=New+York,Paris"},
		{name: "leading question mark", raw: "?page=2", key: "tag", value: "go", want: "page=2&tag=go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SetParam(tt.raw, tt.key, tt.value); got != tt.want {
				t.Errorf("SetParam() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyFacetToggle(t *testing.T) {
	nav := NewMemoryNavigator("?ref=newsletter&page=3")
	b := NewBinder(nav, models.FacetEmploymentType, models.FacetTag)

	st := b.ApplyFacetToggle(models.FacetTag, "go")
	if !st.Selection.Has(models.FacetTag, "go") {
		t.Fatalf("tag go not selected: %v", st.Selection)
	}
	if st.Page != 3 {
		t.Errorf("page reset to %d; toggles keep the page", st.Page)
	}

	b.ApplyFacetToggle(models.FacetTag, "remote")
	st = b.ApplyFacetToggle(models.FacetTag, "go")
	if st.Selection.Has(models.FacetTag, "go") || !st.Selection.Has(models.FacetTag, "remote") {
		t.Errorf("unexpected selection after untoggle: %v", st.Selection)
	}

	st = b.ApplyFacetToggle(models.FacetTag, "remote")
	if _, ok := st.Selection[models.FacetTag]; ok {
		t.Errorf("empty facet should be absent, got %v", st.Selection)
	}

	want := []string{
		"ref=newsletter&page=3",
		"ref=newsletter&page=3&tag=go",
		"ref=newsletter&page=3&tag=go,remote",
		"ref=newsletter&page=3&tag=remote",
		"ref=newsletter&page=3",
	}
	if got := nav.History(); !reflect.DeepEqual(got, want) {
		t.Errorf("history = %q\nwant %q", got, want)
	}

	if got := b.Unrecognized(b.State().Selection); !reflect.DeepEqual(got, []string{"ref"}) {
		t.Errorf("Unrecognized = %v, want [ref]", got)
	}
}

func TestApplyFacetToggleRecoversFromMalformedQuery(t *testing.T) {
	nav := NewMemoryNavigator("tag=%zz")
	b := NewBinder(nav, models.FacetTag)

	st := b.ApplyFacetToggle(models.FacetEmploymentType, "fulltime")
	if !st.Selection.Has(models.FacetEmploymentType, "fulltime") {
		t.Errorf("toggle lost on malformed query: %v", st.Selection)
	}
	if nav.Current() != "employmentType=fulltime" {
		t.Errorf("Current() = %q", nav.Current())
	}
}

func TestSetPageAndClearFacet(t *testing.T) {
	nav := NewMemoryNavigator("tag=go&employmentType=fulltime")
	b := NewBinder(nav, models.FacetTag, models.FacetEmploymentType)

	if st := b.SetPage(4); st.Page != 4 {
		t.Errorf("page = %d, want 4", st.Page)
	}
	if st := b.SetPage(1); st.Page != 1 || nav.Current() != "tag=go&employmentType=fulltime" {
		t.Errorf("page 1 should drop the parameter, got %q", nav.Current())
	}

	st := b.ClearFacet(models.FacetTag)
	if _, ok := st.Selection[models.FacetTag]; ok {
		t.Error("tag should be cleared")
	}
	if !st.Selection.Has(models.FacetEmploymentType, "fulltime") {
		t.Error("other facets should be kept")
	}
}
