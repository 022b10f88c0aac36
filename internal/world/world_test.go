package world

import "testing"

func TestTerritoriesLayout(t *testing.T) {
	homes := []Home{
		{Role: "agribusiness", Type: TypeAgribusiness, Production: "soy"},
		{Role: "family_farmer", Type: TypeFamilyFarm, Production: "vegetable"},
	}
	g := Territories(LayoutConfig{Kind: LayoutTerritories}, homes)
	if len(g.Cells) != 25 {
		t.Fatalf("cells = %d, want 25", len(g.Cells))
	}

	agri := g.At(Position{0, 0})
	if agri.Owner != "agribusiness" || agri.Type != TypeAgribusiness || agri.ProductionLevel != 50 || agri.Health != 40 {
		t.Fatalf("unexpected agribusiness home: %+v", agri)
	}
	fam := g.At(Position{4, 4})
	if fam.Owner != "family_farmer" || fam.Production != "vegetable" || fam.Health != 70 {
		t.Fatalf("unexpected family home: %+v", fam)
	}
	if c := g.At(Position{2, 2}); c.Type != TypeProtected || c.Health != 100 {
		t.Fatalf("centre should be protected: %+v", c)
	}
	if c := g.At(Position{4, 0}); c.Type != TypeIndigenous || c.Health != 90 {
		t.Fatalf("north-east should be indigenous: %+v", c)
	}
	if c := g.Get("t-1-0"); c == nil || c.Type != TypeUnoccupied || c.Health != 60 || c.ProductionLevel != 0 {
		t.Fatalf("unexpected open cell: %+v", c)
	}
}

func TestPlotsLayout(t *testing.T) {
	g := Plots(LayoutConfig{Kind: LayoutPlots}, "family_farmer")
	if len(g.Cells) != 36 {
		t.Fatalf("cells = %d, want 36", len(g.Cells))
	}
	if got := g.OwnedBy("family_farmer"); got != 2 {
		t.Fatalf("owned = %d, want 2", got)
	}
	if got := g.CountType(TypeLocked); got != 20 {
		t.Fatalf("locked = %d, want 20", got)
	}
	if c := g.Get("plot-3-2"); c == nil || c.Type != TypePlayer {
		t.Fatalf("plot-3-2 should start with the player: %+v", c)
	}
}

func TestOwnableTypes(t *testing.T) {
	for _, ty := range []CellType{TypeProtected, TypeIndigenous, TypeUrban, TypeLocked} {
		if ty.Ownable() {
			t.Fatalf("%s should not be ownable", ty)
		}
	}
	for _, ty := range []CellType{TypeUnoccupied, TypeLandlord, TypeAgribusiness, TypeFamilyFarm} {
		if !ty.Ownable() {
			t.Fatalf("%s should be ownable", ty)
		}
	}
}

func TestAdjacency(t *testing.T) {
	g := Territories(LayoutConfig{Kind: LayoutTerritories}, []Home{{Role: "agribusiness", Type: TypeAgribusiness}})
	if !g.AdjacentToOwner(Position{1, 0}, "agribusiness") {
		t.Fatal("(1,0) should touch the agribusiness home")
	}
	if g.AdjacentToOwner(Position{1, 1}, "agribusiness") {
		t.Fatal("diagonal cells are not adjacent")
	}
	if got := len(g.Neighbors(Position{0, 0})); got != 2 {
		t.Fatalf("corner neighbours = %d, want 2", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := Plots(LayoutConfig{Kind: LayoutPlots}, "activist")
	g.Get("plot-2-2").Crop = &PlantedCrop{CropID: "soy", Growth: 10}
	cp := g.Clone()
	cp.Get("plot-2-2").Crop.Growth = 90
	cp.Get("plot-1-1").Owner = "activist"
	if g.Get("plot-2-2").Crop.Growth != 10 {
		t.Fatal("clone shares crop state")
	}
	if g.Get("plot-1-1").Owned() {
		t.Fatal("clone shares cells")
	}
}

func TestSeededJitterIsReproducible(t *testing.T) {
	cfg := LayoutConfig{Kind: LayoutTerritories, Seed: 7, Jitter: 5}
	a := Territories(cfg, nil)
	b := Territories(cfg, nil)
	for i := range a.Cells {
		if a.Cells[i].Health != b.Cells[i].Health {
			t.Fatalf("cell %s differs: %d vs %d", a.Cells[i].ID, a.Cells[i].Health, b.Cells[i].Health)
		}
		if a.Cells[i].Type == TypeUnoccupied {
			if h := a.Cells[i].Health; h < 55 || h > 65 {
				t.Fatalf("jitter out of range on %s: %d", a.Cells[i].ID, h)
			}
		}
	}
	if c := a.At(Position{2, 2}); c.Health != 100 {
		t.Fatalf("protected health jittered: %d", c.Health)
	}
}

func TestBuildRejectsUnknownLayout(t *testing.T) {
	if _, err := Build(LayoutConfig{Kind: "hex"}, nil, ""); err == nil {
		t.Fatal("expected error for unknown layout")
	}
}
