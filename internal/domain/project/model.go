package project

import "time"

// Status describes whether a project is live. Terminated is absorbing:
// no operation transitions a project back to active.
type Status string

const (
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"
)

// ChannelKind identifies the role a channel plays within a project group.
type ChannelKind string

const (
	KindCategory   ChannelKind = "category"
	KindInfo       ChannelKind = "info"
	KindDiscussion ChannelKind = "discussion"
	KindDocuments  ChannelKind = "documents"
	KindVoice      ChannelKind = "voice"
)

// ChannelResource is a platform channel owned exclusively by a project.
// All listed resources are released when the project terminates.
type ChannelResource struct {
	ID   string      `json:"id"`
	Kind ChannelKind `json:"kind"`
}

// Task is the single open task assigned to a project member.
// Re-assignment overwrites the previous entry for that member.
type Task struct {
	MemberID string `json:"member_id"`
	Task     string `json:"task"`
}

// Project is the persisted state of one project group.
type Project struct {
	ID                 string            `json:"id"`
	GroupNumber        int               `json:"group_number"`
	LeaderID           string            `json:"leader_id"`
	MemberIDs          []string          `json:"member_ids"`
	RoleID             string            `json:"role_id"`
	LeaderRoleID       string            `json:"leader_role_id"`
	ChannelResources   []ChannelResource `json:"channel_resources"`
	Progress           int               `json:"progress"`
	TechDocsStatus     string            `json:"tech_docs_status"`
	PresentationStatus string            `json:"presentation_status"`
	Tasks              []Task            `json:"tasks"`
	Status             Status            `json:"status"`

	// ConfirmationPending is the persisted mutex guarding the termination
	// decision window. It is authoritative across process restarts.
	ConfirmationPending bool `json:"confirmation_pending"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMember reports whether id is in the member set.
func (p *Project) HasMember(id string) bool {
	for _, m := range p.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// Channel returns the id of the first channel of the given kind, or "".
func (p *Project) Channel(kind ChannelKind) string {
	for _, ch := range p.ChannelResources {
		if ch.Kind == kind {
			return ch.ID
		}
	}
	return ""
}
