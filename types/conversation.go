package types

// Conversation is derived, never persisted: one row per distinct
// counterpart, recomputed on fetch and patched on live updates.
type Conversation struct {
	Counterpart Profile `json:"counterpart"`
	LastMessage Message `json:"lastMessage"`
	UnreadCount int     `json:"unreadCount"`
}
