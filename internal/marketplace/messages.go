package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyContent rejects a send before any network call happens.
var ErrEmptyContent = errors.New("marketplace: message content is empty")

func conversationPath(prefix string, listingID, otherUserID int64) string {
	return fmt.Sprintf("%s/%d/%d", prefix, listingID, otherUserID)
}

// Conversations lists the caller's conversations, one entry per
// (listing, counterpart) pair, with the latest message as preview.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var conversations []Conversation
	if err := c.do(ctx, http.MethodGet, "/message/conversations", nil, nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// Thread fetches the full message list for one conversation, ordered by
// sentAt ascending.
func (c *Client) Thread(ctx context.Context, listingID, otherUserID int64) ([]Message, error) {
	var messages []Message
	path := conversationPath("/message/conversation", listingID, otherUserID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flags every message of the conversation as read for the
// caller. Re-marking an already read conversation is harmless.
func (c *Client) MarkRead(ctx context.Context, listingID, otherUserID int64) error {
	path := conversationPath("/message/mark-read", listingID, otherUserID)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// SendMessage posts one message. Content must be non-empty after
// trimming; the check runs before any request is issued.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) error {
	if strings.TrimSpace(params.Content) == "" {
		return ErrEmptyContent
	}
	return c.do(ctx, http.MethodPost, "/message", nil, params, nil)
}

// DeleteConversation removes the conversation and all its messages.
func (c *Client) DeleteConversation(ctx context.Context, listingID, otherUserID int64) error {
	path := conversationPath("/message/delete-conversation", listingID, otherUserID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
