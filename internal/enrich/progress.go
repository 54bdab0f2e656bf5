package enrich

import (
	"encoding/json"
	"os"
)

// Checkpoint records which requests were already processed so a resumed
// run can skip them. It is flushed after every batch, matching the
// writer's durability boundary.
type Checkpoint struct {
	path string
	done map[string]string // request key → "ok" | "failed"
}

// NewCheckpoint creates an empty checkpoint persisted at path.
func NewCheckpoint(path string) *Checkpoint {
	return &Checkpoint{path: path, done: make(map[string]string)}
}

// LoadCheckpoint reads an existing progress file; a missing or corrupt
// file yields an empty checkpoint.
func LoadCheckpoint(path string) *Checkpoint {
	cp := NewCheckpoint(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return cp
	}
	if err := json.Unmarshal(data, &cp.done); err != nil {
		cp.done = make(map[string]string)
	}
	return cp
}

// Processed reports whether the request key was handled in a prior run.
func (c *Checkpoint) Processed(key string) bool {
	_, ok := c.done[key]
	return ok
}

// Mark records the outcome for a request key.
func (c *Checkpoint) Mark(key, status string) { c.done[key] = status }

// Len returns the number of recorded requests.
func (c *Checkpoint) Len() int { return len(c.done) }

// Flush persists the checkpoint to disk.
func (c *Checkpoint) Flush() error {
	data, err := json.MarshalIndent(c.done, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}
