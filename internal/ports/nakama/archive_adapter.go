package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"viralspiral/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const archiveCollection = "finished_games"

// NakamaArchiveAdapter persists finished game records into Nakama storage.
type NakamaArchiveAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaArchiveAdapter(nk runtime.NakamaModule) *NakamaArchiveAdapter {
	return &NakamaArchiveAdapter{nk: nk}
}

// SaveGame writes the record under the system user, readable by anyone.
func (a *NakamaArchiveAdapter) SaveGame(ctx context.Context, record ports.GameRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling game record: %w", err)
	}
	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      archiveCollection,
		Key:             record.GameID,
		Value:           string(value),
		PermissionRead:  2,
		PermissionWrite: 0,
	}})
	if err != nil {
		return fmt.Errorf("writing game record: %w", err)
	}
	return nil
}
