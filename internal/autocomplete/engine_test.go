package autocomplete

import (
	"reflect"
	"testing"

	"kabuchart/internal/models"
)

func testCatalog() []models.Ticker {
	return []models.Ticker{
		{Code: "9984", Name: "ソフトバンクグループ"},
		{Code: "7203", Name: "トヨタ自動車"},
		{Code: "1301", Name: "極洋"},
		{Code: "6758", Name: "ソニーグループ"},
		{Code: "7201", Name: "日産自動車"},
		{Code: "8306", Name: "三菱UFJフィナンシャル・グループ"},
		{Code: "6861", Name: "キーエンス"},
		{Code: "130A", Name: "Veritas In Silico"},
		{Code: "72030", Name: "dummy"},
	}
}

func codes(tickers []models.Ticker) []string {
	out := make([]string, len(tickers))
	for i, t := range tickers {
		out[i] = t.Code
	}
	return out
}

func TestSuggestEmptyQueryReturnsFeaturedInCatalogOrder(t *testing.T) {
	e := NewEngine([]string{"7203", "6758", "9984", "8306", "6861"}, 10)
	e.SetTickers(testCatalog())

	got := codes(e.Suggest(""))
	want := []string{"9984", "7203", "6758", "8306", "6861"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(\"\") = %v, want %v", got, want)
	}
}

func TestSuggestEmptyQueryRespectsCap(t *testing.T) {
	e := NewEngine([]string{"7203", "6758", "9984", "8306", "6861"}, 3)
	e.SetTickers(testCatalog())

	if got := e.Suggest(""); len(got) != 3 {
		t.Errorf("expected featured list capped at 3, got %d", len(got))
	}
}

func TestSuggestSubstringSortedNumerically(t *testing.T) {
	e := NewEngine(nil, 10)
	e.SetTickers(testCatalog())

	got := codes(e.Suggest("720"))
	want := []string{"7201", "7203", "72030"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(\"720\") = %v, want %v", got, want)
	}

	got = codes(e.Suggest("13"))
	want = []string{"130A", "1301"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(\"13\") = %v, want %v", got, want)
	}
}

func TestSuggestIsCaseSensitive(t *testing.T) {
	e := NewEngine(nil, 10)
	e.SetTickers(testCatalog())

	if got := e.Suggest("130a"); len(got) != 0 {
		t.Errorf("expected no match for lower-case query, got %v", codes(got))
	}
	if got := e.Suggest("130A"); len(got) != 1 {
		t.Errorf("expected one match, got %v", codes(got))
	}
}

func TestSuggestTruncatesToCap(t *testing.T) {
	var catalog []models.Ticker
	for _, c := range []string{"1001", "1002", "1003", "1004", "1005", "1006", "1007", "1008", "1009", "1010", "1011", "1012"} {
		catalog = append(catalog, models.Ticker{Code: c})
	}
	e := NewEngine(nil, 0)
	e.SetTickers(catalog)

	got := e.Suggest("10")
	if len(got) != DefaultMaxSuggestions {
		t.Fatalf("expected %d suggestions, got %d", DefaultMaxSuggestions, len(got))
	}
	if got[0].Code != "1001" || got[9].Code != "1010" {
		t.Errorf("unexpected truncation: %v", codes(got))
	}
}

func TestSuggestWithEmptyCatalog(t *testing.T) {
	e := NewEngine([]string{"7203"}, 10)

	for _, q := range []string{"", "7", "nikkei"} {
		if got := e.Suggest(q); len(got) != 0 {
			t.Errorf("Suggest(%q) on empty catalog = %v", q, got)
		}
	}
}

func TestSetTickersReplacesCatalog(t *testing.T) {
	e := NewEngine(nil, 10)
	e.SetTickers(testCatalog())
	e.SetTickers([]models.Ticker{{Code: "1332", Name: "ニッスイ"}})

	if e.CatalogSize() != 1 {
		t.Fatalf("CatalogSize = %d, want 1", e.CatalogSize())
	}
	if got := e.Suggest("7203"); len(got) != 0 {
		t.Errorf("old catalog entries should be gone, got %v", codes(got))
	}
}

func TestMoveHighlight(t *testing.T) {
	e := NewEngine(nil, 10)
	e.SetTickers(testCatalog())
	e.Suggest("720") // 3 results

	if e.Highlight() != NoHighlight {
		t.Fatalf("highlight should start at %d", NoHighlight)
	}

	e.MoveHighlight(1)
	if e.Highlight() != 0 {
		t.Errorf("after +1: %d, want 0", e.Highlight())
	}
	e.MoveHighlight(1)
	e.MoveHighlight(1)
	e.MoveHighlight(1)
	if e.Highlight() != 0 {
		t.Errorf("after wrap: %d, want 0", e.Highlight())
	}
	e.MoveHighlight(-1)
	if e.Highlight() != 2 {
		t.Errorf("after -1 from 0: %d, want 2", e.Highlight())
	}

	e.Suggest("720")
	e.MoveHighlight(-1)
	if e.Highlight() != 2 {
		t.Errorf("-1 from no highlight: %d, want last (2)", e.Highlight())
	}
}

func TestSetHighlight(t *testing.T) {
	e := NewEngine(nil, 10)
	e.SetTickers(testCatalog())
	e.Suggest("720")

	if !e.SetHighlight(2) || e.Highlight() != 2 {
		t.Errorf("SetHighlight(2): highlight = %d", e.Highlight())
	}
	if e.SetHighlight(3) || e.SetHighlight(-1) {
		t.Error("out-of-range index accepted")
	}
	if e.Highlight() != 2 {
		t.Errorf("rejected index moved highlight to %d", e.Highlight())
	}

	e.Clear()
	if e.SetHighlight(0) {
		t.Error("SetHighlight succeeded with no suggestions")
	}
}

func TestMoveHighlightNoSuggestions(t *testing.T) {
	e := NewEngine(nil, 10)
	e.MoveHighlight(1)
	if e.Highlight() != NoHighlight {
		t.Errorf("highlight moved without suggestions: %d", e.Highlight())
	}
}

func TestSuggestResetsHighlight(t *testing.T) {
	e := NewEngine(nil, 10)
	e.SetTickers(testCatalog())
	e.Suggest("7")
	e.MoveHighlight(1)
	e.MoveHighlight(1)

	e.Suggest("72")
	if e.Highlight() != NoHighlight {
		t.Errorf("highlight not reset: %d", e.Highlight())
	}
}

func TestResolveHighlightOrQuery(t *testing.T) {
	e := NewEngine(nil, 10)
	e.SetTickers(testCatalog())

	e.Suggest("720")
	if got := e.ResolveHighlightOrQuery("  720  "); got != "720" {
		t.Errorf("without highlight = %q, want trimmed input", got)
	}

	e.MoveHighlight(1)
	e.MoveHighlight(1)
	if got := e.ResolveHighlightOrQuery("anything"); got != "7203" {
		t.Errorf("with highlight = %q, want 7203", got)
	}

	e.Clear()
	if got := e.ResolveHighlightOrQuery("9984"); got != "9984" {
		t.Errorf("after Clear = %q", got)
	}
}

func TestLessCode(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"7203", "72030", true},
		{"999", "1000", true},
		{"130A", "1301", true},
		{"1301", "ABC", true},
		{"ABC", "1301", false},
		{"ABC", "ABD", true},
	}
	for _, tt := range tests {
		if got := lessCode(tt.a, tt.b); got != tt.want {
			t.Errorf("lessCode(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
