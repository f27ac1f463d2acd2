// Package platform is the NATS request/reply client for the chat gateway.
// The gateway sidecar owns the actual platform session; this client only
// issues capability requests (create/delete channel and role, grant/revoke
// role) and reports the returned handles.
package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
	"github.com/nats-io/nats.go"
)

// Client implements project.Platform over NATS request/reply.
type Client struct {
	conn   *nats.Conn
	prefix string
}

// New creates a NATS-backed platform client. prefix namespaces all
// subjects (e.g. "guardia").
func New(conn *nats.Conn, prefix string) *Client {
	return &Client{conn: conn, prefix: prefix}
}

type reply struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// CreateRole requests a new role and returns its handle.
func (c *Client) CreateRole(ctx context.Context, spec project.RoleSpec) (string, error) {
	return c.requestID(ctx, "role.create", struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		Mentionable bool   `json:"mentionable"`
	}{spec.Name, spec.Color, spec.Mentionable})
}

// DeleteRole requests deletion of a role.
func (c *Client) DeleteRole(ctx context.Context, roleID string) error {
	_, err := c.requestID(ctx, "role.delete", struct {
		RoleID string `json:"role_id"`
	}{roleID})
	return err
}

// GrantRole requests granting a role to a member.
func (c *Client) GrantRole(ctx context.Context, memberID, roleID string) error {
	_, err := c.requestID(ctx, "role.grant", struct {
		MemberID string `json:"member_id"`
		RoleID   string `json:"role_id"`
	}{memberID, roleID})
	return err
}

// RevokeRole requests revoking a role from a member.
func (c *Client) RevokeRole(ctx context.Context, memberID, roleID string) error {
	_, err := c.requestID(ctx, "role.revoke", struct {
		MemberID string `json:"member_id"`
		RoleID   string `json:"role_id"`
	}{memberID, roleID})
	return err
}

// CreateChannel requests a new channel and returns its handle.
func (c *Client) CreateChannel(ctx context.Context, spec project.ChannelSpec) (string, error) {
	return c.requestID(ctx, "channel.create", struct {
		Name     string `json:"name"`
		Kind     string `json:"kind"`
		ParentID string `json:"parent_id,omitempty"`
		ReadOnly bool   `json:"read_only,omitempty"`
	}{spec.Name, string(spec.Kind), spec.ParentID, spec.ReadOnly})
}

// DeleteChannel requests deletion of a channel.
func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := c.requestID(ctx, "channel.delete", struct {
		ChannelID string `json:"channel_id"`
	}{channelID})
	return err
}

func (c *Client) requestID(ctx context.Context, op string, payload any) (string, error) {
	subject := fmt.Sprintf("%s.platform.%s", c.prefix, op)

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling %s request: %w", op, err)
	}

	msg, err := c.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return "", fmt.Errorf("requesting %s: %w", op, err)
	}

	var resp reply
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return "", fmt.Errorf("decoding %s reply: %w", op, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s rejected: %s", op, resp.Error)
	}
	return resp.ID, nil
}
