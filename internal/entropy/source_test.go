package entropy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWeightedFollowsCumulativeTable(t *testing.T) {
	weights := []float64{0.5, 0.3, 0.15, 0.05, 0}
	cases := []struct {
		roll float64
		want int
	}{
		{0.0, 0},
		{0.49, 0},
		{0.5, 1},
		{0.79, 1},
		{0.8, 2},
		{0.94, 2},
		{0.96, 3},
		{0.9999, 3},
	}
	for _, tc := range cases {
		got := Weighted(Constant(tc.roll), weights)
		if got != tc.want {
			t.Fatalf("Weighted(%v) = %d, want %d", tc.roll, got, tc.want)
		}
	}
}

func TestSequenceCycles(t *testing.T) {
	s := NewSequence(0.1, 0.2)
	got := []float64{s.Float(), s.Float(), s.Float()}
	want := []float64{0.1, 0.2, 0.1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw %d = %v, want %v", i, got[i], want[i])
		}
	}
	if s.Drawn() != 3 {
		t.Fatalf("Drawn() = %d, want 3", s.Drawn())
	}
}

func TestConstantStaysInUnitInterval(t *testing.T) {
	if v := Constant(1).Float(); v >= 1 {
		t.Fatalf("Constant(1) = %v, want < 1", v)
	}
	if v := Constant(-3).Float(); v != 0 {
		t.Fatalf("Constant(-3) = %v, want 0", v)
	}
}

func TestSeededIsDeterministic(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 20; i++ {
		if x, y := a.Float(), b.Float(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
}

func TestIntnBounds(t *testing.T) {
	if got := Intn(Constant(0.999999), 4); got != 3 {
		t.Fatalf("Intn high = %d, want 3", got)
	}
	if got := Intn(Constant(0.3), 0); got != 0 {
		t.Fatalf("Intn(0) = %d, want 0", got)
	}
}

func TestRandomOrgPoolAndFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp struct {
			Result struct {
				Random struct {
					Data []float64 `json:"data"`
				} `json:"random"`
			} `json:"result"`
		}
		resp.Result.Random.Data = []float64{0.25, 0.75}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewRandomOrg("key")
	c.endpoint = srv.URL
	if v := c.Float(); v != 0.25 {
		t.Fatalf("first draw = %v, want 0.25", v)
	}

	var nilSource *RandomOrg
	if v := nilSource.Float(); v < 0 || v >= 1 {
		t.Fatalf("nil source draw out of range: %v", v)
	}
	if NewRandomOrg("") != nil {
		t.Fatal("expected nil source without api key")
	}
}
