package event

type Type string

const (
	TypeEntryCreated     Type = "entry.created"
	TypeEntryDeleted     Type = "entry.deleted"
	TypeWhitelistAdded   Type = "whitelist.added"
	TypeWhitelistRemoved Type = "whitelist.removed"
	TypeUserRegistered   Type = "user.registered"
	TypeLoginRejected    Type = "login.rejected"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Subject   string `json:"subject"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
	Actor     string `json:"actor,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
