// Package gateway dispatches inbound user actions to the project
// lifecycle. Commands arrive as JSON over NATS request/reply from the chat
// gateway sidecar; each is parsed into a typed request, validated at this
// boundary, and answered with a discriminated ok/error-kind result.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
	"github.com/nats-io/nats.go"
)

// Dispatcher routes gateway commands to the lifecycle service.
type Dispatcher struct {
	svc    *project.Service
	logger *slog.Logger
}

// NewDispatcher creates a command dispatcher.
func NewDispatcher(svc *project.Service, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, logger: logger}
}

// Subscribe attaches the dispatcher to the command subject.
func (d *Dispatcher) Subscribe(conn *nats.Conn, prefix string) (*nats.Subscription, error) {
	return conn.Subscribe(prefix+".command", func(msg *nats.Msg) {
		resp := d.handle(context.Background(), msg.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			d.logger.Error("marshaling command response", "error", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			d.logger.Error("responding to command", "error", err)
		}
	})
}

type envelope struct {
	Command  string `json:"command"`
	CallerID string `json:"caller_id"`

	GroupNumber        int     `json:"group_number,omitempty"`
	MemberID           string  `json:"member_id,omitempty"`
	Task               string  `json:"task,omitempty"`
	Progress           *int    `json:"progress,omitempty"`
	TechDocsStatus     *string `json:"tech_docs_status,omitempty"`
	PresentationStatus *string `json:"presentation_status,omitempty"`
	ChannelKind        string  `json:"channel_kind,omitempty"`
	ChannelName        string  `json:"channel_name,omitempty"`
	TokenID            string  `json:"token_id,omitempty"`
	Decision           string  `json:"decision,omitempty"`
}

type response struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

func (d *Dispatcher) handle(ctx context.Context, data []byte) response {
	var req envelope
	if err := json.Unmarshal(data, &req); err != nil {
		return response{Error: "bad_request", Message: "malformed command"}
	}
	if req.CallerID == "" {
		return response{Error: "bad_request", Message: "caller_id required"}
	}

	var (
		payload any
		err     error
	)
	switch req.Command {
	case "start_project":
		payload, err = d.svc.StartProject(ctx, req.CallerID, req.GroupNumber)
	case "add_member":
		err = d.svc.AddMember(ctx, req.CallerID, req.MemberID)
	case "remove_member":
		err = d.svc.RemoveMember(ctx, req.CallerID, req.MemberID)
	case "leave_project":
		err = d.svc.LeaveProject(ctx, req.CallerID)
	case "edit_project":
		err = d.svc.EditProject(ctx, req.CallerID, project.DetailsUpdate{
			Progress:           req.Progress,
			TechDocsStatus:     req.TechDocsStatus,
			PresentationStatus: req.PresentationStatus,
		})
	case "edit_task":
		err = d.svc.EditTask(ctx, req.CallerID, req.MemberID, req.Task)
	case "add_channel":
		payload, err = d.svc.AddChannel(ctx, req.CallerID, req.ChannelKind, req.ChannelName)
	case "request_termination":
		payload, err = d.svc.RequestTermination(ctx, req.CallerID)
	case "resolve_termination":
		err = d.svc.ResolveTermination(ctx, req.TokenID, req.CallerID, project.Decision(req.Decision))
	case "info":
		payload, err = d.svc.Info(ctx, req.CallerID)
	case "list_projects":
		payload, err = d.svc.ListActive(ctx)
	default:
		return response{Error: "bad_request", Message: "unknown command " + req.Command}
	}

	if err != nil {
		kind := errorKind(err)
		if kind == "internal" {
			d.logger.Error("command failed", "command", req.Command, "caller", req.CallerID, "error", err)
		}
		return response{Error: kind, Message: err.Error()}
	}
	return response{OK: true, Payload: payload}
}

// errorKind classifies a lifecycle error into a stable code the rendering
// layer maps to user-visible text.
func errorKind(err error) string {
	switch {
	case errors.Is(err, project.ErrInvalidGroupNumber):
		return "invalid_group_number"
	case errors.Is(err, project.ErrProgressInvalid):
		return "progress_invalid"
	case errors.Is(err, project.ErrNoChangeSpecified):
		return "no_change_specified"
	case errors.Is(err, project.ErrChannelKindInvalid):
		return "channel_kind_invalid"
	case errors.Is(err, project.ErrNotLeader):
		return "not_leader"
	case errors.Is(err, project.ErrNoActiveProject):
		return "no_active_project"
	case errors.Is(err, project.ErrSelfRemovalForbidden):
		return "self_removal_forbidden"
	case errors.Is(err, project.ErrLeaderCannotLeave):
		return "leader_cannot_leave"
	case errors.Is(err, project.ErrDecisionNotAllowed):
		return "decision_not_allowed"
	case errors.Is(err, project.ErrCallerAlreadyLeader):
		return "caller_already_leader"
	case errors.Is(err, project.ErrGroupNumberTaken):
		return "group_number_taken"
	case errors.Is(err, project.ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, project.ErrConfirmationPending):
		return "confirmation_pending"
	case errors.Is(err, project.ErrWindowClosed):
		return "window_closed"
	case errors.Is(err, project.ErrMemberNotFound):
		return "member_not_found"
	case errors.Is(err, project.ErrProjectNotFound):
		return "project_not_found"
	case errors.Is(err, project.ErrProvisionFailed):
		return "provision_failed"
	default:
		return "internal"
	}
}
