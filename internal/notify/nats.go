// Package notify delivers notification events over NATS. The gateway glue
// that owns user-visible formatting subscribes to these subjects; events
// carry kinds and identifiers only and are never the system of record.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
	"github.com/nats-io/nats.go"
)

// Notifier implements project.Notifier on top of a NATS connection.
type Notifier struct {
	conn   *nats.Conn
	prefix string
}

// New creates a NATS-backed notifier. prefix namespaces all subjects
// (e.g. "guardia").
func New(conn *nats.Conn, prefix string) *Notifier {
	return &Notifier{conn: conn, prefix: prefix}
}

// NotifyCaller publishes an ephemeral acknowledgement for one user.
func (n *Notifier) NotifyCaller(ctx context.Context, callerID string, ev project.Event) error {
	return n.publish(fmt.Sprintf("%s.notify.user.%s", n.prefix, callerID), ev)
}

// NotifyChannel publishes a broadcast for a project channel.
func (n *Notifier) NotifyChannel(ctx context.Context, channelID string, ev project.Event) error {
	return n.publish(fmt.Sprintf("%s.notify.channel.%s", n.prefix, channelID), ev)
}

// infoPayload is the info-embed content contract.
type infoPayload struct {
	GroupNumber        int                       `json:"group_number"`
	InfoChannelID      string                    `json:"info_channel_id,omitempty"`
	MemberIDs          []string                  `json:"member_ids"`
	LeaderID           string                    `json:"leader_id"`
	Progress           int                       `json:"progress"`
	TechDocsStatus     string                    `json:"tech_docs_status"`
	PresentationStatus string                    `json:"presentation_status"`
	Tasks              []project.Task            `json:"tasks,omitempty"`
	Channels           []project.ChannelResource `json:"channels,omitempty"`
}

// RenderInfo publishes the full info-embed content for re-rendering.
func (n *Notifier) RenderInfo(ctx context.Context, proj *project.Project) error {
	payload := infoPayload{
		GroupNumber:        proj.GroupNumber,
		InfoChannelID:      proj.Channel(project.KindInfo),
		MemberIDs:          proj.MemberIDs,
		LeaderID:           proj.LeaderID,
		Progress:           proj.Progress,
		TechDocsStatus:     proj.TechDocsStatus,
		PresentationStatus: proj.PresentationStatus,
		Tasks:              proj.Tasks,
		Channels:           proj.ChannelResources,
	}
	return n.publish(fmt.Sprintf("%s.project.info", n.prefix), payload)
}

// PromptTermination publishes the confirm/cancel affordance for a decision
// token. The subscriber must restrict the choice to token.CallerID.
func (n *Notifier) PromptTermination(ctx context.Context, channelID string, token *project.DecisionToken) error {
	return n.publish(fmt.Sprintf("%s.project.prompt.%s", n.prefix, token.ID), token)
}

func (n *Notifier) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
