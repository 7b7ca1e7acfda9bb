package search

import (
	"reflect"
	"testing"

	"github.com/lexatlas/lexatlas/pkg/common"
)

func TestFuseRRFDominance(t *testing.T) {
	// A document at rank 0 in both branches outscores one at rank 0 in a
	// single branch: 1/61 + 1/61 > 1/61.
	branches := []Branch{
		{Tag: "semantic", Docs: []common.Document{{ID: 1}}},
		{Tag: "graph", Docs: []common.Document{{ID: 1}, {ID: 2}}},
	}

	results := FuseRRF(branches, DefaultRRFK, 10)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.ID != 1 {
		t.Errorf("doc found by both branches should rank first, got %d", results[0].Document.ID)
	}
	if !almostEqual(results[0].RRFScore, 2.0/61.0) {
		t.Errorf("fused score = %v, want %v", results[0].RRFScore, 2.0/61.0)
	}
	if !reflect.DeepEqual(results[0].FoundBy, []string{"graph", "semantic"}) {
		t.Errorf("FoundBy = %v, want sorted [graph semantic]", results[0].FoundBy)
	}
	if !reflect.DeepEqual(results[1].FoundBy, []string{"graph"}) {
		t.Errorf("FoundBy = %v, want [graph]", results[1].FoundBy)
	}
}

func TestFuseRRFCrossRankScenario(t *testing.T) {
	// semantic=[P1,P2,P3], graph=[P2,P4,P1]: P2 gets 1/62+1/61, P1 gets
	// 1/61+1/63, so P2 ranks above P1 and both carry both tags.
	branches := []Branch{
		{Tag: "semantic", Docs: []common.Document{{ID: 1}, {ID: 2}, {ID: 3}}},
		{Tag: "graph", Docs: []common.Document{{ID: 2}, {ID: 4}, {ID: 1}}},
	}

	results := FuseRRF(branches, DefaultRRFK, 10)
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	if results[0].Document.ID != 2 || results[1].Document.ID != 1 {
		t.Errorf("order = [%d %d ...], want [2 1 ...]",
			results[0].Document.ID, results[1].Document.ID)
	}
	if !almostEqual(results[0].RRFScore, 1.0/62.0+1.0/61.0) {
		t.Errorf("P2 score = %v, want %v", results[0].RRFScore, 1.0/62.0+1.0/61.0)
	}
	for _, i := range []int{0, 1} {
		if !reflect.DeepEqual(results[i].FoundBy, []string{"graph", "semantic"}) {
			t.Errorf("result %d FoundBy = %v, want both tags", i, results[i].FoundBy)
		}
	}
}

func TestFuseRRFPrefersRicherRecord(t *testing.T) {
	branches := []Branch{
		{Tag: "graph", Docs: []common.Document{{ID: 5}}},
		{Tag: "semantic", Docs: []common.Document{{ID: 5, Text: "Conducerea sub influența alcoolului"}}},
	}

	results := FuseRRF(branches, DefaultRRFK, 10)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Document.Text == "" {
		t.Error("fusion kept the thinner record")
	}
}

func TestFuseRRFTieBreaksByDocumentID(t *testing.T) {
	branches := []Branch{
		{Tag: "semantic", Docs: []common.Document{{ID: 9}}},
		{Tag: "graph", Docs: []common.Document{{ID: 4}}},
	}

	results := FuseRRF(branches, DefaultRRFK, 10)
	if len(results) != 2 || results[0].Document.ID != 4 || results[1].Document.ID != 9 {
		t.Fatalf("tie-break order wrong: %+v", results)
	}
}

func TestFuseRRFLimitsAndEmpty(t *testing.T) {
	branches := []Branch{
		{Tag: "semantic", Docs: []common.Document{{ID: 1}, {ID: 2}, {ID: 3}}},
	}

	if got := FuseRRF(branches, DefaultRRFK, 2); len(got) != 2 {
		t.Errorf("kFinal=2 returned %d results", len(got))
	}
	if got := FuseRRF(branches, DefaultRRFK, 0); len(got) != 0 {
		t.Errorf("kFinal=0 returned %d results", len(got))
	}
	if got := FuseRRF(nil, DefaultRRFK, 5); len(got) != 0 {
		t.Errorf("no branches returned %d results", len(got))
	}
}
