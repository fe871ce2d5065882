package vectorindex

import (
	"context"
	"errors"
	"testing"
)

type rows []Row

func (r rows) Embeddings(ctx context.Context) ([]Row, error) {
	return r, nil
}

func TestIndex_Search(t *testing.T) {
	ix := New(2)
	ix.Add("pikachu", []float32{0, 0})
	ix.Add("raichu", []float32{3, 4})
	ix.Add("pichu", []float32{1, 0})

	matches, err := ix.Search([]float32{0.9, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 2 || matches[0].Label != "pichu" || matches[1].Label != "pikachu" {
		t.Errorf("Search() = %+v", matches)
	}

	label, ok, err := ix.Nearest([]float32{3, 4.5}, 1)
	if err != nil || !ok || label != "raichu" {
		t.Errorf("Nearest() = %q, %v, %v", label, ok, err)
	}

	if _, ok, _ := ix.Nearest([]float32{30, 40}, 50); !ok {
		t.Error("distance 45 should be accepted under 50")
	}
	if _, ok, _ := ix.Nearest([]float32{300, 400}, 50); ok {
		t.Error("far vector should be rejected")
	}
}

func TestIndex_Empty(t *testing.T) {
	ix := New(3)
	if _, ok, err := ix.Nearest([]float32{1, 2, 3}, 50); ok || err != nil {
		t.Errorf("Nearest() on empty index = %v, %v", ok, err)
	}
}

func TestIndex_Dimension(t *testing.T) {
	ix := New(2)
	if err := ix.Add("x", []float32{1}); !errors.Is(err, ErrDimension) {
		t.Errorf("Add() error = %v, want %v", err, ErrDimension)
	}
	if _, err := ix.Search([]float32{1, 2, 3}, 1); !errors.Is(err, ErrDimension) {
		t.Errorf("Search() error = %v, want %v", err, ErrDimension)
	}
}

func TestLoad(t *testing.T) {
	src := rows{
		{Label: "pikachu", Vector: Encode([]float32{1, 2})},
		{Label: "eevee", Vector: Encode([]float32{-1, 0.5})},
	}
	ix, err := Load(context.Background(), src, 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
	label, ok, _ := ix.Nearest([]float32{-1, 0.5}, 0.1)
	if !ok || label != "eevee" {
		t.Errorf("Nearest() = %q, %v", label, ok)
	}

	if _, err := Load(context.Background(), rows{{Label: "bad", Vector: []byte{1, 2, 3}}}, 2); err == nil {
		t.Error("Load() with corrupt blob expected error")
	}
}

func TestEncodeDecode(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("value %d = %v, want %v", i, out[i], in[i])
		}
	}
}
