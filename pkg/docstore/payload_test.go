package docstore

import (
	"reflect"
	"testing"

	"github.com/lexatlas/lexatlas/pkg/common"
)

func TestDecodeConcepts(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   []string
		wantOK bool
	}{
		{name: "empty payload", raw: "", want: nil, wantOK: true},
		{name: "list", raw: `["drum public","pieton"]`, want: []string{"drum public", "pieton"}, wantOK: true},
		{name: "blank entries dropped", raw: `["", "  ", "viteză"]`, want: []string{"viteză"}, wantOK: true},
		{name: "corrupt payload", raw: `{"not":"a list"`, want: nil, wantOK: false},
		{name: "wrong shape", raw: `{"a":1}`, want: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeConcepts([]byte(tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("DecodeConcepts ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.want == nil && len(got) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeConcepts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   []common.Entity
		wantOK bool
	}{
		{
			name:   "object form",
			raw:    `[{"text":"DRPCIV","type":"ORG"}]`,
			want:   []common.Entity{{Text: "DRPCIV", Type: "ORG"}},
			wantOK: true,
		},
		{
			name:   "legacy string form",
			raw:    `["România","DRPCIV"]`,
			want:   []common.Entity{{Text: "România"}, {Text: "DRPCIV"}},
			wantOK: true,
		},
		{name: "corrupt", raw: `[{`, want: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeEntities([]byte(tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("DecodeEntities ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("DecodeEntities = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeTriples(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   []common.Triple
		wantOK bool
	}{
		{
			name:   "keyed form",
			raw:    `[{"subject":"conducătorul","predicate":"opri","object":"vehiculul"}]`,
			want:   []common.Triple{{Subject: "conducătorul", Predicate: "opri", Object: "vehiculul"}},
			wantOK: true,
		},
		{
			name:   "verb alias",
			raw:    `[{"subject":"pietonii","verb":"traversa","object":"drumul"}]`,
			want:   []common.Triple{{Subject: "pietonii", Predicate: "traversa", Object: "drumul"}},
			wantOK: true,
		},
		{
			name:   "array form",
			raw:    `[["biciclist","circula","pistă"]]`,
			want:   []common.Triple{{Subject: "biciclist", Predicate: "circula", Object: "pistă"}},
			wantOK: true,
		},
		{
			name:   "mixed with bad entries",
			raw:    `[["a","b","c"],["too","short"],{"subject":"s","object":"o"}]`,
			want:   []common.Triple{{Subject: "a", Predicate: "b", Object: "c"}},
			wantOK: true,
		},
		{name: "corrupt", raw: `not json`, want: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeTriples([]byte(tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("DecodeTriples ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("DecodeTriples = %v, want %v", got, tt.want)
			}
		})
	}
}
