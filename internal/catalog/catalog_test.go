package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/agro-hegemony/internal/weather"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(c.Crops) != 7 {
		t.Fatalf("crops = %d, want 7", len(c.Crops))
	}
	if len(c.RoleOrder) != 4 {
		t.Fatalf("roles = %d, want 4", len(c.RoleOrder))
	}
	if _, ok := c.Rulesets["territories"]; !ok {
		t.Fatal("missing territories ruleset")
	}
	if _, ok := c.Rulesets["plots"]; !ok {
		t.Fatal("missing plots ruleset")
	}
	if len(c.News.Templates) != 12 {
		t.Fatalf("news templates = %d, want 12", len(c.News.Templates))
	}
	if c.Digest == "" {
		t.Fatal("empty digest")
	}
}

func TestCropHelpers(t *testing.T) {
	c := MustDefault()
	soy, ok := c.Crop("soy")
	if !ok {
		t.Fatal("soy missing")
	}
	if got := soy.GrowthTurns(7); got != 15 {
		t.Fatalf("soy GrowthTurns(7) = %d, want 15", got)
	}
	if got := soy.PlantingCost(0.2); got != 25 {
		t.Fatalf("soy PlantingCost = %d, want 25", got)
	}
	if !soy.InSeason(weather.Summer) || soy.InSeason(weather.Winter) {
		t.Fatalf("soy seasons wrong: %v", soy.Seasons)
	}
	cotton, _ := c.Crop("cotton")
	if !cotton.RainSensitive {
		t.Fatal("cotton should be rain sensitive")
	}
}

func TestRulesetAliases(t *testing.T) {
	c := MustDefault()
	plots := c.Rulesets["plots"]
	if got, ok := plots.Resolve(Economic); !ok || got != Money {
		t.Fatalf("Resolve(economic) = %s, %v", got, ok)
	}
	if plots.Has(Environmental) {
		t.Fatal("plots should not track environmental")
	}
	terr := c.Rulesets["territories"]
	if got, ok := terr.Resolve(Social); !ok || got != Social {
		t.Fatalf("territories Resolve(social) = %s, %v", got, ok)
	}
}

func TestRoleMultiplierDefaultsToOne(t *testing.T) {
	c := MustDefault()
	agri := c.Roles["agribusiness"]
	if got := agri.Multiplier(Economic); got != 1.2 {
		t.Fatalf("economic multiplier = %v, want 1.2", got)
	}
	if got := agri.Multiplier(Social); got != 1 {
		t.Fatalf("social multiplier = %v, want 1", got)
	}
}

func TestLoadOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	override := `crops:
  - {id: soy, name: Soy, base_price: 100, yield: 10, seasons: [spring], growth_days: 70}
`
	if err := os.WriteFile(filepath.Join(dir, "crops.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Crops) != 1 || c.Crops[0].BasePrice != 100 {
		t.Fatalf("override not applied: %+v", c.Crops)
	}
	if def := MustDefault(); def.Digest == c.Digest {
		t.Fatal("digest should change with overrides")
	}
}

func TestLoadRejectsBadSeason(t *testing.T) {
	dir := t.TempDir()
	bad := `crops:
  - {id: soy, name: Soy, base_price: 100, yield: 10, seasons: [monsoon], growth_days: 70}
`
	if err := os.WriteFile(filepath.Join(dir, "crops.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "unknown season") {
		t.Fatalf("expected unknown season error, got %v", err)
	}
}
