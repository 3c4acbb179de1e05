package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// The webhook surface carries three payload shapes: the one-time
// url_verification handshake, slash commands, and block actions. Each is
// parsed at the boundary into an explicit variant; shape mismatches are
// rejected rather than defaulted.

// PayloadKind tags an Interaction variant.
type PayloadKind string

const (
	KindURLVerification PayloadKind = "url_verification"
	KindEventCallback   PayloadKind = "event_callback"
	KindSlashCommand    PayloadKind = "slash_command"
	KindBlockAction     PayloadKind = "block_action"
)

// URLVerificationPayload is the platform's endpoint-ownership handshake.
type URLVerificationPayload struct {
	Token     string `json:"token"`
	Challenge string `json:"challenge"`
}

// EventCallbackPayload is a steady-state event delivery (e.g. a channel
// message).
type EventCallbackPayload struct {
	Event struct {
		Type     string `json:"type"`
		User     string `json:"user"`
		Channel  string `json:"channel"`
		Text     string `json:"text"`
		TS       string `json:"ts"`
		ThreadTS string `json:"thread_ts"`
	} `json:"event"`
}

// SlashCommandPayload is an operator-typed command.
type SlashCommandPayload struct {
	Command   string
	ChannelID string
	UserID    string
}

// BlockActionPayload is a button click reported back from an interactive
// card.
type BlockActionPayload struct {
	ActionID    string
	Value       string
	ChannelID   string
	ChannelName string
	UserID      string
	UserName    string
}

// Interaction is the tagged union over the webhook payload shapes.
type Interaction struct {
	Kind            PayloadKind
	URLVerification *URLVerificationPayload
	EventCallback   *EventCallbackPayload
	SlashCommand    *SlashCommandPayload
	BlockAction     *BlockActionPayload
}

// parseEventPayload decodes the JSON body of the events endpoint.
func parseEventPayload(body []byte) (*Interaction, error) {
	var envelope struct {
		Type      string `json:"type"`
		Token     string `json:"token"`
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse event payload: %w", err)
	}

	switch envelope.Type {
	case "url_verification":
		if envelope.Challenge == "" {
			return nil, fmt.Errorf("url_verification payload missing challenge")
		}
		return &Interaction{
			Kind: KindURLVerification,
			URLVerification: &URLVerificationPayload{
				Token:     envelope.Token,
				Challenge: envelope.Challenge,
			},
		}, nil
	case "event_callback":
		var callback EventCallbackPayload
		if err := json.Unmarshal(body, &callback); err != nil {
			return nil, fmt.Errorf("parse event callback: %w", err)
		}
		return &Interaction{Kind: KindEventCallback, EventCallback: &callback}, nil
	}
	return nil, fmt.Errorf("unknown event payload type %q", envelope.Type)
}

// parseCommandPayload decodes the form body of the commands endpoint.
func parseCommandPayload(body []byte) (*Interaction, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse command payload: %w", err)
	}

	command := values.Get("command")
	if command == "" {
		return nil, fmt.Errorf("command payload missing command field")
	}

	return &Interaction{
		Kind: KindSlashCommand,
		SlashCommand: &SlashCommandPayload{
			Command:   command,
			ChannelID: values.Get("channel_id"),
			UserID:    values.Get("user_id"),
		},
	}, nil
}

// parseActionPayload decodes the form-wrapped JSON body of the actions
// endpoint.
func parseActionPayload(body []byte) (*Interaction, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse action payload: %w", err)
	}

	raw := values.Get("payload")
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("action payload missing payload field")
	}

	var parsed struct {
		Actions []struct {
			ActionID string `json:"action_id"`
			Value    string `json:"value"`
		} `json:"actions"`
		Channel struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"channel"`
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse action payload JSON: %w", err)
	}
	if len(parsed.Actions) == 0 {
		return nil, fmt.Errorf("action payload has no actions")
	}

	return &Interaction{
		Kind: KindBlockAction,
		BlockAction: &BlockActionPayload{
			ActionID:    parsed.Actions[0].ActionID,
			Value:       parsed.Actions[0].Value,
			ChannelID:   parsed.Channel.ID,
			ChannelName: parsed.Channel.Name,
			UserID:      parsed.User.ID,
			UserName:    parsed.User.Name,
		},
	}, nil
}
