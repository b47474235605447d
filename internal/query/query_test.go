package query

import (
	"reflect"
	"strings"
	"testing"

	"batchdesk/internal/core"
)

func scenario() []core.Batch {
	return []core.Batch{
		{ID: "1", Name: "NEET-A", Category: "NEET", Price: core.Money{Cents: 500000}, Date: core.NewDate(2024, 4, 1), ClassGrade: "11"},
		{ID: "2", Name: "JEE-B", Category: "JEE", Price: core.Money{Cents: 700000}, Date: core.NewDate(2024, 4, 2), ClassGrade: "12"},
	}
}

func wider() []core.Batch {
	return append(scenario(),
		core.Batch{ID: "3", Name: "NEET-C", Category: "NEET", Price: core.Money{Cents: 250050}, ClassGrade: "12"},
		core.Batch{ID: "x12", Name: "Foundation Star", Category: "FOUNDATION", Price: core.Money{Cents: 100000}, ClassGrade: "9"},
		core.Batch{ID: "5", Name: "SSC Prep", Category: "SSC", ClassGrade: "Graduate"},
	)
}

func idsOf(bs []core.Batch) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func TestScenario(t *testing.T) {
	all := scenario()
	if got := idsOf(Search(all, "jee")); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("search jee = %v", got)
	}
	if got := idsOf(FilterByCategory(all, "NEET")); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("filter NEET = %v", got)
	}
	if got := TotalRevenue(all); got.Cents != 1200000 {
		t.Errorf("total = %d, want 1200000", got.Cents)
	}
}

func TestSearch(t *testing.T) {
	all := wider()
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty is identity", "", []string{"1", "2", "3", "x12", "5"}},
		{"blank matches spaces literally", " ", []string{"x12", "5"}},
		{"leading space is not trimmed", " jee", []string{}},
		{"inner space", "ssc p", []string{"5"}},
		{"name case-insensitive", "neet", []string{"1", "3"}},
		{"id substring", "X1", []string{"x12"}},
		{"name or id union", "2", []string{"2", "x12"}},
		{"no match", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idsOf(Search(all, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
			q := strings.ToLower(tt.query)
			for _, b := range Search(all, tt.query) {
				if !strings.Contains(strings.ToLower(b.Name), q) && !strings.Contains(strings.ToLower(b.ID), q) {
					t.Errorf("batch %s does not contain %q", b.ID, tt.query)
				}
			}
		})
	}
}

func TestFiltersAreIdempotent(t *testing.T) {
	all := wider()
	for _, c := range []string{AllCategories, "NEET", "JEE", "missing"} {
		once := FilterByCategory(all, c)
		if !reflect.DeepEqual(FilterByCategory(once, c), once) {
			t.Errorf("category filter %q not idempotent", c)
		}
	}
	for _, c := range []string{AllClasses, "12", "9"} {
		once := FilterByClass(all, c)
		if !reflect.DeepEqual(FilterByClass(once, c), once) {
			t.Errorf("class filter %q not idempotent", c)
		}
	}
}

func TestApplyOrder(t *testing.T) {
	got := Apply(wider(), Criteria{Search: "neet", Category: "NEET", Class: "12"})
	if ids := idsOf(got); !reflect.DeepEqual(ids, []string{"3"}) {
		t.Fatalf("Apply = %v", ids)
	}
	if got := Apply(wider(), Criteria{}); len(got) != 5 {
		t.Fatalf("empty criteria should keep everything, got %d", len(got))
	}
}

func TestOptions(t *testing.T) {
	all := wider()
	if got := CategoryOptions(all); !reflect.DeepEqual(got, []string{AllCategories, "NEET", "JEE", "FOUNDATION", "SSC"}) {
		t.Errorf("CategoryOptions = %v", got)
	}
	if got := ClassOptions(all, "NEET"); !reflect.DeepEqual(got, []string{AllClasses, "11", "12"}) {
		t.Errorf("ClassOptions(NEET) = %v", got)
	}
	for _, class := range ClassOptions(all, "JEE")[1:] {
		if len(FilterByClass(FilterByCategory(all, "JEE"), class)) == 0 {
			t.Errorf("class option %q selects nothing", class)
		}
	}
}

func TestNormalize(t *testing.T) {
	all := wider()
	got := Normalize(all, Criteria{Category: "JEE", Class: "9"})
	if got.Category != "JEE" || got.Class != AllClasses {
		t.Errorf("Normalize = %+v", got)
	}
	got = Normalize(Search(all, "neet"), Criteria{Category: "SSC", Class: "Graduate"})
	if got.Category != AllCategories || got.Class != AllClasses {
		t.Errorf("Normalize = %+v", got)
	}
}

func TestAggregateSumsToTotal(t *testing.T) {
	all := wider()
	for name, key := range map[string]KeyFunc{"category": ByCategory, "class": ByClass, "name": ByName} {
		var sum core.Money
		for _, g := range AggregateRevenueBy(all, key) {
			sum = sum.Add(g.Total)
		}
		if sum != TotalRevenue(all) {
			t.Errorf("%s groups sum to %d, want %d", name, sum.Cents, TotalRevenue(all).Cents)
		}
	}
}

func TestAggregateOrderAndChart(t *testing.T) {
	groups := AggregateRevenueBy(wider(), ByCategory)
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	if !reflect.DeepEqual(keys, []string{"NEET", "JEE", "FOUNDATION", "SSC"}) {
		t.Errorf("group order = %v", keys)
	}
	if groups[0].Total.Cents != 750050 || groups[0].Count != 2 {
		t.Errorf("NEET group = %+v", groups[0])
	}

	chart := RevenueChart(FilterByCategory(wider(), "NEET"), "NEET")
	if len(chart) != 2 || chart[0].Key != "NEET-A" {
		t.Errorf("filtered chart should group by name: %+v", chart)
	}
	if Max(chart).Cents != 500000 {
		t.Errorf("Max = %d", Max(chart).Cents)
	}
}

func TestSummarize(t *testing.T) {
	if s := Summarize(nil); s.Count != 0 || s.Total.Cents != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	s := Summarize(scenario())
	if s.Count != 2 || s.Total.Format() != "₹12,000" {
		t.Errorf("summary = %+v (%s)", s, s.Total.Format())
	}
	g := Group{Total: core.Money{Cents: 300}}
	if g.Share(core.Money{Cents: 1200}) != 25 || g.Share(core.Money{}) != 0 {
		t.Errorf("unexpected share")
	}
}
