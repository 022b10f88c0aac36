package catalog

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/talgya/agro-hegemony/internal/weather"
)

//go:embed data/*.yaml
var embedded embed.FS

var files = []string{"rulesets.yaml", "roles.yaml", "crops.yaml", "market.yaml", "events.yaml"}

type rulesetsFile struct {
	Rulesets []*Ruleset `yaml:"rulesets"`
}

type rolesFile struct {
	Roles       []*Role      `yaml:"roles"`
	Productions []Production `yaml:"productions"`
	Campaigns   []Campaign   `yaml:"campaigns"`
	Practices   struct {
		Sustainable Practice `yaml:"sustainable"`
	} `yaml:"practices"`
}

type cropsFile struct {
	Crops []Crop `yaml:"crops"`
}

type marketFile struct {
	Regions []Region                         `yaml:"regions"`
	Trends  map[weather.Season][]TrendWeight `yaml:"trends"`
	News    NewsRules                        `yaml:"news"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load("")
}

// MustDefault returns the embedded catalog and panics if it is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load builds the catalog. Files present in dir replace their embedded
// counterpart; an empty dir uses the embedded data only.
func Load(dir string) (*Catalog, error) {
	raw := make(map[string][]byte, len(files))
	h := sha256.New()
	for _, name := range files {
		b, err := readFile(dir, name)
		if err != nil {
			return nil, err
		}
		raw[name] = b
		h.Write([]byte(name))
		h.Write(b)
	}

	var (
		rf  rulesetsFile
		ro  rolesFile
		cf  cropsFile
		mf  marketFile
		evs Events
	)
	decode := []struct {
		name string
		dst  any
	}{
		{"rulesets.yaml", &rf},
		{"roles.yaml", &ro},
		{"crops.yaml", &cf},
		{"market.yaml", &mf},
		{"events.yaml", &evs},
	}
	for _, d := range decode {
		if err := yaml.Unmarshal(raw[d.name], d.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
	}

	c := &Catalog{
		Rulesets:    make(map[string]*Ruleset, len(rf.Rulesets)),
		Roles:       make(map[string]*Role, len(ro.Roles)),
		Crops:       cf.Crops,
		Productions: make(map[string]Production, len(ro.Productions)),
		Campaigns:   make(map[string]Campaign, len(ro.Campaigns)),
		Practice:    ro.Practices.Sustainable,
		Regions:     mf.Regions,
		Trends:      mf.Trends,
		News:        mf.News,
		Events:      evs,
		Digest:      hex.EncodeToString(h.Sum(nil)),
	}
	for _, r := range rf.Rulesets {
		c.Rulesets[r.ID] = r
	}
	for _, r := range ro.Roles {
		c.Roles[r.ID] = r
		c.RoleOrder = append(c.RoleOrder, r.ID)
	}
	for _, p := range ro.Productions {
		c.Productions[p.ID] = p
	}
	for _, cp := range ro.Campaigns {
		c.Campaigns[cp.ID] = cp
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func readFile(dir, name string) ([]byte, error) {
	if dir != "" {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
	}
	b, err := embedded.ReadFile("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s: %w", name, err)
	}
	return b, nil
}

// Validate checks cross references between catalog files.
func (c *Catalog) Validate() error {
	if len(c.Rulesets) == 0 {
		return errors.New("catalog: no rulesets")
	}
	if len(c.Regions) == 0 {
		return errors.New("catalog: no market regions")
	}
	seen := make(map[string]bool, len(c.Crops))
	for _, cr := range c.Crops {
		if cr.ID == "" || seen[cr.ID] {
			return fmt.Errorf("catalog: duplicate or empty crop id %q", cr.ID)
		}
		seen[cr.ID] = true
		if cr.GrowthDays <= 0 || cr.BasePrice <= 0 {
			return fmt.Errorf("catalog: crop %q needs positive growth_days and base_price", cr.ID)
		}
		for _, s := range cr.Seasons {
			if !s.Valid() {
				return fmt.Errorf("catalog: crop %q has unknown season %q", cr.ID, s)
			}
		}
	}
	for id, rs := range c.Rulesets {
		if rs.Max <= rs.Min {
			return fmt.Errorf("catalog: ruleset %q has empty bounds", id)
		}
		if rs.ActiveCap <= 0 {
			return fmt.Errorf("catalog: ruleset %q needs a positive active_cap", id)
		}
		if !rs.Has(rs.Income) {
			return fmt.Errorf("catalog: ruleset %q income %q is not a tracked resource", id, rs.Income)
		}
		for _, cat := range rs.Categories {
			if _, ok := c.Events.Category(cat); !ok {
				return fmt.Errorf("catalog: ruleset %q references unknown event category %q", id, cat)
			}
		}
		for _, role := range c.Roles {
			if _, ok := role.Presets[id]; !ok {
				return fmt.Errorf("catalog: role %q has no preset for ruleset %q", role.ID, id)
			}
		}
	}
	for _, role := range c.Roles {
		if role.HomeProduction != "" {
			if _, ok := c.Productions[role.HomeProduction]; !ok {
				return fmt.Errorf("catalog: role %q home production %q unknown", role.ID, role.HomeProduction)
			}
		}
	}
	for _, t := range c.Events.RoleScripted {
		if _, ok := c.Roles[t.Role]; !ok {
			return fmt.Errorf("catalog: scripted event %q names unknown role %q", t.ID, t.Role)
		}
	}
	for _, n := range c.News.Templates {
		if n.Impact <= 0 || n.Weeks <= 0 {
			return fmt.Errorf("catalog: news %q needs positive impact and weeks", n.ID)
		}
	}
	return nil
}
