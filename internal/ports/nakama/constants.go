package nakama

const (
	// RpcCreateGame creates a new authoritative match hosting one game.
	RpcCreateGame = "create_game"
	// RpcFindGame finds an open match by game name, or any with free slots.
	RpcFindGame = "find_game"
	// RpcJoinGrant exchanges a game password for a signed join grant.
	RpcJoinGrant = "join_grant"

	// MatchNameViralSpiral is the authoritative match handler name
	// registered with Nakama.
	MatchNameViralSpiral = "viral_spiral"

	// MatchLabelKeyOpenSlots is the label key carrying the number of
	// unclaimed player slots, used by find queries.
	MatchLabelKeyOpenSlots = "open"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpKeepCard           int64 = 1
	OpDiscardCard        int64 = 2
	OpPassCard           int64 = 3
	OpViralSpiral        int64 = 4
	OpInitiateCancel     int64 = 5
	OpVoteCancel         int64 = 6
	OpFakeNews           int64 = 7
	OpMarkAsFake         int64 = 8
	OpEncyclopediaSearch int64 = 9
	OpAboutGame          int64 = 10
	OpGetQueuedCard      int64 = 11

	// Server -> Client events
	OpPlayerJoined     int64 = 101
	OpHeartbeat        int64 = 102
	OpRoundStart       int64 = 103
	OpRoundEnd         int64 = 104
	OpPlayCardPrompt   int64 = 105
	OpVoteCancelPrompt int64 = 106
	OpActionPerformed  int64 = 107
	OpEndgame          int64 = 108
	OpActionRejected   int64 = 109
	OpAboutSnapshot    int64 = 110
)
