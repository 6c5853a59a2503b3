package domain

// Action names the mutation that produced a snapshot.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionRestore Action = "restore"
	ActionUpsert  Action = "upsert" // synthesized by the server on a full collection write
	ActionUnknown Action = "unknown"
)

// ParseAction maps a wire value to an Action. Empty or unrecognised values become ActionUnknown.
func ParseAction(s string) Action {
	switch a := Action(s); a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionRestore, ActionUpsert:
		return a
	default:
		return ActionUnknown
	}
}

// Label is the human-readable name shown in history listings.
func (a Action) Label() string {
	switch a {
	case ActionCreate:
		return "added"
	case ActionUpdate:
		return "edited"
	case ActionDelete:
		return "deleted"
	case ActionRestore:
		return "restored"
	case ActionUpsert:
		return "synced"
	default:
		return string(a)
	}
}

// Snapshot is an immutable record of the whole collection before and after one action.
// Before and After are full copies, so any After is directly restorable.
type Snapshot struct {
	ID     string     `json:"id"`
	Action Action     `json:"action"`
	Time   Timestamp  `json:"time"`
	Before Collection `json:"before"`
	After  Collection `json:"after"`
}

// Clone returns a snapshot that shares no backing arrays with s.
func (s Snapshot) Clone() Snapshot {
	s.Before = s.Before.Clone()
	s.After = s.After.Clone()
	return s
}

// CloneSnapshots copies a history list. The result is never nil.
func CloneSnapshots(in []Snapshot) []Snapshot {
	out := make([]Snapshot, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
