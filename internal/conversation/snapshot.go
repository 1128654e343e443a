package conversation

import "github.com/Viherino/iss-bolha-frontend/internal/marketplace"

// Item is one row of the conversation list with the rendering rules
// already applied, so templates stay dumb.
type Item struct {
	Conversation marketplace.Conversation
	OtherUser    marketplace.User
	Preview      string
	Unread       bool
	Selected     bool
}

// Snapshot is an immutable copy of the view state for rendering.
type Snapshot struct {
	Items      []Item
	Selected   *Selection
	Messages   []marketplace.Message
	DeleteMode bool
}

// Snapshot copies the current state. The returned value shares nothing
// with the live view.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Items:      make([]Item, 0, len(v.conversations)),
		Messages:   append([]marketplace.Message(nil), v.messages...),
		DeleteMode: v.deleteMode,
	}
	if v.selected != nil {
		sel := *v.selected
		snap.Selected = &sel
	}
	for _, conv := range v.conversations {
		other := v.counterpart(conv)
		snap.Items = append(snap.Items, Item{
			Conversation: conv,
			OtherUser:    other,
			Preview:      v.preview(conv),
			Unread:       v.unread(conv),
			Selected: v.selected != nil &&
				v.selected.ListingID == conv.Listing.ID &&
				v.selected.OtherUserID == other.ID,
		})
	}
	return snap
}

// preview shows the other party's words; the user's own latest message
// collapses to a fixed placeholder.
func (v *View) preview(conv marketplace.Conversation) string {
	if conv.Sender.ID == v.self.ID {
		return SentByYouPreview
	}
	return conv.Content
}

// unread is meaningful only from the recipient's side: a conversation
// whose latest message the user sent is never shown as unread.
func (v *View) unread(conv marketplace.Conversation) bool {
	return !conv.IsRead && conv.Recipient.ID == v.self.ID
}
