// Package pool reads and writes the YAML obligation seed file a project keeps
// next to its .threadkeeper directory.
package pool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/threadkeeper/internal/obligation"
)

// Adder receives loaded obligations. *scheduler.Scheduler satisfies it.
type Adder interface {
	AddObligation(o obligation.Obligation)
}

// Load reads the pool file. Entries without an id get a fresh uuid and
// entries without created_at get now.
func Load(path string, now time.Time) ([]obligation.Obligation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pool: read %s: %w", path, err)
	}
	return Parse(data, now)
}

// Parse decodes pool YAML. Both a bare list and a document with an
// obligations key are accepted.
func Parse(data []byte, now time.Time) ([]obligation.Obligation, error) {
	var entries []obligation.Obligation
	if err := yaml.Unmarshal(data, &entries); err != nil {
		var doc struct {
			Obligations []obligation.Obligation `yaml:"obligations"`
		}
		if docErr := yaml.Unmarshal(data, &doc); docErr != nil {
			return nil, fmt.Errorf("pool: parse: %w", err)
		}
		entries = doc.Obligations
	}

	seen := make(map[string]int, len(entries))
	out := make([]obligation.Obligation, 0, len(entries))
	for i, entry := range entries {
		normalized, err := normalize(entry, now)
		if err != nil {
			return nil, fmt.Errorf("pool: obligations[%d]: %w", i, err)
		}
		if prev, dup := seen[normalized.ID]; dup {
			return nil, fmt.Errorf("pool: obligations[%d]: id %q already used by obligations[%d]", i, normalized.ID, prev)
		}
		seen[normalized.ID] = i
		out = append(out, normalized)
	}
	return out, nil
}

// LoadInto loads the pool file and adds every entry to dst, returning how
// many were added.
func LoadInto(dst Adder, path string, now time.Time) (int, error) {
	items, err := Load(path, now)
	if err != nil {
		return 0, err
	}
	for _, o := range items {
		dst.AddObligation(o)
	}
	return len(items), nil
}

// Save writes obligations as a YAML list, creating parent directories.
func Save(path string, items []obligation.Obligation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pool: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("pool: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func normalize(o obligation.Obligation, now time.Time) (obligation.Obligation, error) {
	o.ID = strings.TrimSpace(o.ID)
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Content = strings.TrimSpace(o.Content)
	if o.Content == "" {
		return obligation.Obligation{}, fmt.Errorf("obligation %s missing content", o.ID)
	}

	urgency, err := obligation.ParseUrgency(string(o.Urgency))
	if err != nil {
		return obligation.Obligation{}, err
	}
	o.Urgency = urgency

	category, err := obligation.ParseCategory(string(o.Category))
	if err != nil {
		return obligation.Obligation{}, err
	}
	o.Category = category

	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.CharactersInvolved = trimAll(o.CharactersInvolved)
	o.Dependencies = trimAll(o.Dependencies)
	return o, nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
