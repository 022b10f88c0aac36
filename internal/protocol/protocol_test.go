package protocol

import (
	"errors"
	"testing"

	"github.com/talgya/agro-hegemony/internal/engine"
)

func TestDecodeAction(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want engine.Action
	}{
		{"advance", `{"kind":"advance_turn"}`, engine.AdvanceTurn()},
		{"resolve", `{"kind":"resolve_event","event_id":"e1","option_id":"o1"}`, engine.ResolveEvent("e1", "o1")},
		{"plant", `{"kind":"plant_crop","cell_id":"plot-2-2","crop_id":"soy"}`, engine.PlantCrop("plot-2-2", "soy")},
		{"contract", `{"kind":"create_export_contract","crop_id":"soy","quantity":10,"region":"asia","price_per_unit":99.5,"duration_weeks":4}`,
			engine.CreateContract("soy", 10, "asia", 99.5, 4)},
		{"reset", `{"kind":"reset"}`, engine.Reset()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeAction([]byte(tc.raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecodeActionRejects(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"unknown kind":   `{"kind":"teleport"}`,
		"missing field":  `{"kind":"resolve_event","event_id":"e1"}`,
		"extra field":    `{"kind":"advance_turn","turbo":true}`,
		"zero quantity":  `{"kind":"create_export_contract","crop_id":"soy","quantity":0,"region":"asia","price_per_unit":1,"duration_weeks":4}`,
		"wrong type":     `{"kind":"fulfill_export_contract","contract_id":"c","amount":"ten"}`,
		"empty cell":     `{"kind":"acquire_cell","cell_id":""}`,
		"no kind at all": `{}`,
	}
	for name, raw := range cases {
		if _, err := DecodeAction([]byte(raw)); !errors.Is(err, ErrInvalidAction) {
			t.Errorf("%s: err = %v, want ErrInvalidAction", name, err)
		}
	}
}

func TestSchemaCoversEveryKind(t *testing.T) {
	s, err := schema()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if s == nil {
		t.Fatal("nil schema")
	}
	minimal := map[engine.ActionKind]string{
		engine.ActAdvanceTurn:          `{"kind":"advance_turn"}`,
		engine.ActResolveEvent:         `{"kind":"resolve_event","event_id":"e","option_id":"o"}`,
		engine.ActAcquireCell:          `{"kind":"acquire_cell","cell_id":"c"}`,
		engine.ActSetProduction:        `{"kind":"set_production","cell_id":"c","production":"soy"}`,
		engine.ActImproveProduction:    `{"kind":"improve_production","cell_id":"c"}`,
		engine.ActSustainablePractice:  `{"kind":"apply_sustainable_practice","cell_id":"c"}`,
		engine.ActCampaign:             `{"kind":"campaign","campaign":"social_movement"}`,
		engine.ActPlantCrop:            `{"kind":"plant_crop","cell_id":"c","crop_id":"soy"}`,
		engine.ActHarvestCrop:          `{"kind":"harvest_crop","cell_id":"c"}`,
		engine.ActSetExportDestination: `{"kind":"set_export_destination","region":"asia"}`,
		engine.ActCreateContract:       `{"kind":"create_export_contract","crop_id":"soy","quantity":1,"region":"asia","price_per_unit":1,"duration_weeks":1}`,
		engine.ActFulfillContract:      `{"kind":"fulfill_export_contract","contract_id":"c","amount":1}`,
		engine.ActReset:                `{"kind":"reset"}`,
	}
	for _, k := range engine.ActionKinds {
		raw, ok := minimal[k]
		if !ok {
			t.Errorf("no sample for %s", k)
			continue
		}
		act, err := DecodeAction([]byte(raw))
		if err != nil {
			t.Errorf("%s: %v", k, err)
			continue
		}
		if act.Kind != k {
			t.Errorf("kind = %s, want %s", act.Kind, k)
		}
	}
}

func TestKnownCodes(t *testing.T) {
	for _, c := range []string{"", ErrBadRequest, ErrNoop, ErrStale} {
		if !IsKnownCode(c) {
			t.Errorf("%q should be known", c)
		}
	}
	if IsKnownCode("E_NOPE") {
		t.Error("E_NOPE should be unknown")
	}
}
