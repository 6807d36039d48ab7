package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

type CreateShareRequest struct {
	SessionID string          `json:"sessionId,omitempty"`
	Config    json.RawMessage `json:"config"`
}

type CreateShareResponse struct {
	ShareID  string                  `json:"shareId"`
	URL      string                  `json:"url"`
	Metadata entity.SnapshotMetadata `json:"metadata"`
}

type ShareRequest struct {
	ShareID string `json:"shareId"`
}

type GetShareResponse struct {
	Snapshot entity.Snapshot `json:"snapshot"`
}

type ListSharesResponse struct {
	Shares []entity.SnapshotMetadata `json:"shares"`
}

type DeleteShareResponse struct {
	Deleted bool `json:"deleted"`
}

type ExportShareRequest struct {
	ShareID string `json:"shareId"`
	Async   bool   `json:"async,omitempty"`
}

type ExportShareResponse struct {
	XLSX   []byte `json:"xlsx,omitempty"`
	Queued bool   `json:"queued,omitempty"`
	Status string `json:"status,omitempty"`
}

type LoadDatasetRequest struct {
	Path string `json:"path"`
}

type LoadDatasetResponse struct {
	Source    string                 `json:"source"`
	Records   int                    `json:"records"`
	Questions []entity.QuestionField `json:"questions"`
}

// decode copies a Struct into v through its JSON form.
func decode(in *structpb.Struct, v any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// encode converts v into a Struct through its JSON form.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}
