package ports

import "context"

// GameRecord is the final snapshot of a finished game persisted for later
// inspection.
type GameRecord struct {
	GameID     string         `json:"game_id"`
	Name       string         `json:"name"`
	Winner     string         `json:"winner,omitempty"`
	TGB        int            `json:"tgb"`
	FullRounds int            `json:"full_rounds"`
	Scores     map[string]int `json:"scores"`
	Error      string         `json:"error,omitempty"`
}

// ArchivePort persists finished game records.
type ArchivePort interface {
	// SaveGame writes the record; the implementation owns keying and
	// collection layout.
	SaveGame(ctx context.Context, record GameRecord) error
}
