package ai

import (
	"reflect"
	"testing"
)

func TestNormalizeInputs(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []string
		dim       int
		wantIdx   []int
		wantTexts []string
	}{
		{
			name:      "all non-blank",
			inputs:    []string{"a", "b"},
			dim:       4,
			wantIdx:   []int{0, 1},
			wantTexts: []string{"a", "b"},
		},
		{
			name:      "blank entries skipped",
			inputs:    []string{"", "semnal", "   ", "pieton"},
			dim:       4,
			wantIdx:   []int{1, 3},
			wantTexts: []string{"semnal", "pieton"},
		},
		{
			name:      "all blank",
			inputs:    []string{"", "\t"},
			dim:       2,
			wantIdx:   []int{},
			wantTexts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, texts, out := NormalizeInputs(tt.inputs, tt.dim)
			if !reflect.DeepEqual(idx, tt.wantIdx) {
				t.Errorf("idxMap = %v, want %v", idx, tt.wantIdx)
			}
			if !reflect.DeepEqual(texts, tt.wantTexts) {
				t.Errorf("texts = %v, want %v", texts, tt.wantTexts)
			}
			if len(out) != len(tt.inputs) {
				t.Fatalf("out length = %d, want %d", len(out), len(tt.inputs))
			}
			for i, in := range tt.inputs {
				nonBlank := false
				for _, j := range tt.wantIdx {
					if j == i {
						nonBlank = true
					}
				}
				if nonBlank {
					if out[i] != nil {
						t.Errorf("out[%d] should be unset for non-blank input %q", i, in)
					}
					continue
				}
				if len(out[i]) != tt.dim {
					t.Errorf("out[%d] zero vector length = %d, want %d", i, len(out[i]), tt.dim)
				}
			}
		})
	}
}

func TestClampVector(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
		dim  int
		want []float32
	}{
		{name: "exact", vec: []float32{1, 2}, dim: 2, want: []float32{1, 2}},
		{name: "truncated", vec: []float32{1, 2, 3}, dim: 2, want: []float32{1, 2}},
		{name: "padded", vec: []float32{1}, dim: 3, want: []float32{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampVector(tt.vec, tt.dim); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ClampVector(%v, %d) = %v, want %v", tt.vec, tt.dim, got, tt.want)
			}
		})
	}
}
