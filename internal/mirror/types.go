package mirror

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FileEntry is one virtual file in the synchronized filesystem document.
// IDs are stable and unique; collection order is insertion order.
type FileEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// ChatMessage is one turn of the display transcript. The transcript is
// append-only and chronological. It is display history only: the model is
// called single-shot per turn, so this sequence is never replayed as model
// context.
type ChatMessage struct {
	Role           string `json:"role"`
	Text           string `json:"text"`
	IsSystemAction bool   `json:"isSystemAction,omitempty"`
}

// Logical document kinds tracked per identity.
const (
	KindFilesystem = "filesystem"
	KindChat       = "chat"
	KindSettings   = "settings"
)
