package gateway

// Inbound event types, sent by clients.
const (
	EventJoin        = "join"
	EventStartGame   = "start_game"
	EventQuestion    = "question"
	EventScoreUpdate = "score_update"
)

// Outbound event types, emitted by the gateway.
const (
	EventUpdatePlayers = "update_players"
	EventGameStarted   = "game_started"
	EventNextQuestion  = "question"
	EventGameOver      = "game_over"
	EventError         = "error"
)

// InboundEvent is the envelope for every client-sent message.
type InboundEvent struct {
	Type     string `json:"type"`
	GameID   string `json:"game_id"`
	Username string `json:"username"`
}
