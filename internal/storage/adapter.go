package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-chat/internal/types"
)

// Persisted record keys.
const (
	KeyData      = "resumeData"
	KeySessionID = "resumeSessionId"
	KeyUploadID  = "resumeUploadId"
)

// Snapshot is the persisted session state read at startup.
type Snapshot struct {
	Data      types.CollectedData
	SessionID *string
	UploadID  *string
	// HasData is true when a data record existed and decoded, even if it was an empty object.
	HasData bool
}

// Adapter reads and writes the three session records through a KV.
type Adapter struct {
	kv     KV
	logger *slog.Logger
}

// NewAdapter wraps kv. A nil logger uses slog.Default().
func NewAdapter(kv KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{kv: kv, logger: logger}
}

// Load restores all three records together. A corrupt data record is logged and treated as absent.
func (a *Adapter) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Data: types.CollectedData{}}

	raw, err := a.kv.Get(ctx, KeyData)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return Snapshot{}, err
	default:
		var data types.CollectedData
		if jerr := json.Unmarshal([]byte(raw), &data); jerr != nil {
			a.logger.Warn("[STORAGE] ignoring corrupt persisted data", "key", KeyData, "error", jerr)
		} else {
			snap.Data = data.Clone()
			snap.HasData = true
		}
	}

	if snap.SessionID, err = a.optional(ctx, KeySessionID); err != nil {
		return Snapshot{}, err
	}
	if snap.UploadID, err = a.optional(ctx, KeyUploadID); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SaveData persists the collected data as JSON.
func (a *Adapter) SaveData(ctx context.Context, data types.CollectedData) error {
	b, err := json.Marshal(data.Clone())
	if err != nil {
		return fmt.Errorf("failed to encode collected data: %w", err)
	}
	return a.kv.Set(ctx, KeyData, string(b))
}

// SaveSessionID persists the session identifier.
func (a *Adapter) SaveSessionID(ctx context.Context, id string) error {
	return a.kv.Set(ctx, KeySessionID, id)
}

// SaveUploadID persists the upload identifier.
func (a *Adapter) SaveUploadID(ctx context.Context, id string) error {
	return a.kv.Set(ctx, KeyUploadID, id)
}

// Clear removes all three records.
func (a *Adapter) Clear(ctx context.Context) error {
	return a.kv.Delete(ctx, KeyData, KeySessionID, KeyUploadID)
}

// Close closes the underlying store.
func (a *Adapter) Close() error {
	return a.kv.Close()
}

func (a *Adapter) optional(ctx context.Context, key string) (*string, error) {
	v, err := a.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
