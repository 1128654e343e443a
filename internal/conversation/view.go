// Package conversation implements the two-pane inbox of the messages
// page: the conversation list on one side, the active thread on the
// other. The view keeps both consistent by refetching after every
// mutation, which is the delivery contract of the marketplace API
// (polling, no push).
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Viherino/iss-bolha-frontend/internal/marketplace"
)

// SentByYouPreview replaces the list preview when the latest message
// came from the logged-in user; the preview is meant to show what the
// other party said.
const SentByYouPreview = "Vi ste poslali sporočilo"

var (
	ErrEmptyMessage = errors.New("conversation: message content is empty")
	ErrNoSelection  = errors.New("conversation: no conversation selected")
	ErrDeleteMode   = errors.New("conversation: selection disabled while delete mode is active")
	ErrUnknownPair  = errors.New("conversation: no conversation for that listing and user")
)

// Selection identifies the active conversation of the view.
type Selection struct {
	ListingID   int64
	OtherUserID int64
	Listing     marketplace.ListingRef
	OtherUser   marketplace.User
}

// View is the inbox of one authenticated user. All mutating operations
// serialize on a single mutex held across their network sequence, so
// the fixed orderings below (thread → mark-read → list, send → thread →
// list) can never interleave with each other.
type View struct {
	api    *marketplace.Client
	self   marketplace.User
	logger *slog.Logger

	group singleflight.Group

	mu            sync.Mutex
	conversations []marketplace.Conversation
	selected      *Selection
	messages      []marketplace.Message
	deleteMode    bool
}

// NewView binds an inbox to the session-scoped client and its user.
func NewView(api *marketplace.Client, self marketplace.User, logger *slog.Logger) *View {
	return &View{api: api, self: self, logger: logger}
}

// Refresh fetches the conversation list. Concurrent callers collapse
// into one upstream request.
func (v *View) Refresh(ctx context.Context) error {
	result, err, _ := v.group.Do("conversations", func() (any, error) {
		return v.api.Conversations(ctx)
	})
	if err != nil {
		return err
	}
	conversations := result.([]marketplace.Conversation)
	v.mu.Lock()
	v.conversations = conversations
	v.mu.Unlock()
	return nil
}

// refreshLocked refetches the list inside an operation already holding
// the mutex. Sequential by design: the list must not race the mutation
// that preceded it.
func (v *View) refreshLocked(ctx context.Context) error {
	conversations, err := v.api.Conversations(ctx)
	if err != nil {
		return err
	}
	v.conversations = conversations
	return nil
}

// Activate selects the conversation for (listingID, otherUserID) and
// loads its thread. The sequence is fixed: fetch thread, then
// best-effort mark-read, then refetch the list so the unread badge
// clears. Re-activating the current selection just re-runs the
// sequence. While delete mode is on, activation is refused so that one
// click can never both select and delete.
func (v *View) Activate(ctx context.Context, listingID, otherUserID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.deleteMode {
		return ErrDeleteMode
	}

	conv, ok := v.findLocked(listingID, otherUserID)
	if !ok {
		// The click may refer to a conversation created since the last
		// render; resolve against a fresh list before giving up.
		if err := v.refreshLocked(ctx); err != nil {
			return err
		}
		if conv, ok = v.findLocked(listingID, otherUserID); !ok {
			return ErrUnknownPair
		}
	}

	messages, err := v.api.Thread(ctx, listingID, otherUserID)
	if err != nil {
		return err
	}

	v.selected = &Selection{
		ListingID:   listingID,
		OtherUserID: otherUserID,
		Listing:     conv.Listing,
		OtherUser:   v.counterpart(conv),
	}
	v.messages = messages

	// Mark-read failures must not block the thread; the badge just
	// stays until the next successful pass.
	if err := v.api.MarkRead(ctx, listingID, otherUserID); err != nil {
		if v.logger != nil {
			v.logger.Warn("mark-read failed", "listing_id", listingID, "other_user_id", otherUserID, "error", err)
		}
		return nil
	}
	if err := v.refreshLocked(ctx); err != nil && v.logger != nil {
		v.logger.Warn("conversation list refresh failed after mark-read", "error", err)
	}
	return nil
}

// Send posts content into the active conversation. Whitespace-only
// content and a missing selection short-circuit before any network
// call. On success the thread and the list are refetched; on failure
// the view is left untouched so the caller can retry with the same
// input.
func (v *View) Send(ctx context.Context, content string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if v.selected == nil {
		return ErrNoSelection
	}
	sel := *v.selected

	err := v.api.SendMessage(ctx, marketplace.SendMessageParams{
		Content:     content,
		RecipientID: sel.OtherUserID,
		ListingID:   sel.ListingID,
	})
	if err != nil {
		return err
	}

	messages, err := v.api.Thread(ctx, sel.ListingID, sel.OtherUserID)
	if err != nil {
		return err
	}
	v.messages = messages
	if err := v.refreshLocked(ctx); err != nil && v.logger != nil {
		v.logger.Warn("conversation list refresh failed after send", "error", err)
	}
	return nil
}

// Delete removes a whole conversation. When the deleted pair is the
// active selection, the thread pane is cleared too; deleting any other
// conversation leaves the selection alone. The list is refetched and
// delete mode ends on success; on failure nothing changes.
func (v *View) Delete(ctx context.Context, listingID, otherUserID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.api.DeleteConversation(ctx, listingID, otherUserID); err != nil {
		return err
	}

	if v.selected != nil && v.selected.ListingID == listingID && v.selected.OtherUserID == otherUserID {
		v.selected = nil
		v.messages = nil
	}
	if err := v.refreshLocked(ctx); err != nil && v.logger != nil {
		v.logger.Warn("conversation list refresh failed after delete", "error", err)
	}
	v.deleteMode = false
	return nil
}

// SetDeleteMode toggles the click semantics of the list between
// "select" and "delete with confirmation".
func (v *View) SetDeleteMode(on bool) {
	v.mu.Lock()
	v.deleteMode = on
	v.mu.Unlock()
}

// DeleteMode reports whether list clicks currently delete.
func (v *View) DeleteMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deleteMode
}

func (v *View) findLocked(listingID, otherUserID int64) (marketplace.Conversation, bool) {
	for _, conv := range v.conversations {
		if conv.Listing.ID == listingID && v.counterpart(conv).ID == otherUserID {
			return conv, true
		}
	}
	return marketplace.Conversation{}, false
}

// counterpart returns the participant that is not the logged-in user.
func (v *View) counterpart(conv marketplace.Conversation) marketplace.User {
	if conv.Sender.ID == v.self.ID {
		return conv.Recipient
	}
	return conv.Sender
}
