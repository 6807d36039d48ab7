package entity

import (
	"time"
)

// Precomputed is the self-contained payload of a snapshot. FilteredRecords is
// only populated when an allowed tab renders record rows, and then only with
// the filtered subset stripped of demographic fields.
type Precomputed struct {
	FilteredRecords []Record   `json:"filteredRecords,omitempty"`
	View            ClientView `json:"view"`
	Redacted        bool       `json:"redacted"`
}

// Clone deep-copies the view and the bundled records.
func (p Precomputed) Clone() Precomputed {
	out := Precomputed{
		View:     p.View.Clone(),
		Redacted: p.Redacted,
	}
	if p.FilteredRecords != nil {
		out.FilteredRecords = CloneRecords(p.FilteredRecords)
	}
	return out
}

// SnapshotMetadata is what List exposes about a snapshot.
type SnapshotMetadata struct {
	ID          string     `json:"shareId"`
	CreatedAt   time.Time  `json:"createdAt"`
	DatasetSize int        `json:"datasetSize"`
	ClientName  string     `json:"clientName"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// Clone copies m, including its expiry.
func (m SnapshotMetadata) Clone() SnapshotMetadata {
	out := m
	if m.ExpiresAt != nil {
		t := *m.ExpiresAt
		out.ExpiresAt = &t
	}
	return out
}

// Snapshot is an immutable published dashboard view. Nothing in it aliases
// live dashboard state.
type Snapshot struct {
	ID          string           `json:"shareId"`
	Config      ShareConfig      `json:"config"`
	Precomputed Precomputed      `json:"precomputedData"`
	Metadata    SnapshotMetadata `json:"metadata"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
}

// Clone returns a snapshot sharing no memory with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		ID:          s.ID,
		Config:      s.Config.Clone(),
		Precomputed: s.Precomputed.Clone(),
		Metadata:    s.Metadata.Clone(),
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		out.ExpiresAt = &t
	}
	return out
}

// Expired reports whether the snapshot lapsed at or before now.
func (s Snapshot) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
