package autoplay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const maxRecords = 256

// StepRecord captures one submitted action.
type StepRecord struct {
	Turn      int    `json:"turn"`
	Version   uint64 `json:"version"`
	Action    string `json:"action"`
	Changed   bool   `json:"changed"`
	Rationale string `json:"rationale,omitempty"`
}

// Journal keeps recent steps and the actions refused at the current version.
type Journal struct {
	Records []StepRecord `json:"records"`

	version uint64
	refused map[string]bool
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{refused: make(map[string]bool)}
}

// LoadJournal reads a journal file. Returns an empty journal if not found.
func LoadJournal(path string) *Journal {
	j := NewJournal()
	data, err := os.ReadFile(path)
	if err != nil {
		return j
	}
	if err := json.Unmarshal(data, j); err != nil {
		slog.Warn("autoplay journal corrupted, starting fresh", "error", err)
		return NewJournal()
	}
	return j
}

// Save writes the journal to path.
func (j *Journal) Save(path string) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Record adds a step. A refused step marks its action as refused until the
// state version moves.
func (j *Journal) Record(r StepRecord, key string) {
	j.Records = append(j.Records, r)
	if len(j.Records) > maxRecords {
		j.Records = j.Records[len(j.Records)-maxRecords:]
	}
	if !r.Changed {
		j.at(r.Version)
		j.refused[key] = true
	}
}

// Refused reports whether key was refused at version.
func (j *Journal) Refused(version uint64, key string) bool {
	j.at(version)
	return j.refused[key]
}

func (j *Journal) at(version uint64) {
	if j.refused == nil || j.version != version {
		j.refused = make(map[string]bool)
		j.version = version
	}
}

// Summary returns one line per action kind with applied/refused counts.
func (j *Journal) Summary() string {
	type count struct{ applied, refused int }
	counts := make(map[string]*count)
	var order []string
	for _, r := range j.Records {
		c, ok := counts[r.Action]
		if !ok {
			c = &count{}
			counts[r.Action] = c
			order = append(order, r.Action)
		}
		if r.Changed {
			c.applied++
		} else {
			c.refused++
		}
	}
	var b strings.Builder
	for _, k := range order {
		fmt.Fprintf(&b, "%s: applied=%d refused=%d\n", k, counts[k].applied, counts[k].refused)
	}
	return b.String()
}
