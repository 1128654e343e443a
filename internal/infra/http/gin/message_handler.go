package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"github.com/Viherino/iss-bolha-frontend/internal/conversation"
)

// MessageHandler drives the two-pane inbox. All state lives in the
// session's conversation view; the handler translates form posts into
// view operations and renders snapshots.
type MessageHandler struct {
	Logger *slog.Logger
}

func (h MessageHandler) Page(c *gin.Context) {
	view, ok := h.inbox(c)
	if !ok {
		return
	}
	data := baseData(c, "messages")
	if err := view.Refresh(c.Request.Context()); err != nil {
		data["Error"] = errorText(err, "Sporočil ni bilo mogoče naložiti.")
	}
	h.render(c, view, data)
}

func (h MessageHandler) Select(c *gin.Context) {
	view, ok := h.inbox(c)
	if !ok {
		return
	}
	listingID, otherUserID, err := pairForm(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/messages")
		return
	}

	err = view.Activate(c.Request.Context(), listingID, otherUserID)
	switch {
	case err == nil, errors.Is(err, conversation.ErrDeleteMode):
		// A click while delete mode is on must never select; dropping
		// it keeps the two click semantics mutually exclusive.
		c.Redirect(http.StatusFound, "/messages")
	case errors.Is(err, conversation.ErrUnknownPair):
		c.Redirect(http.StatusFound, "/messages")
	default:
		data := baseData(c, "messages")
		data["Error"] = errorText(err, "Pogovora ni bilo mogoče naložiti.")
		h.render(c, view, data)
	}
}

func (h MessageHandler) Send(c *gin.Context) {
	view, ok := h.inbox(c)
	if !ok {
		return
	}
	content := c.PostForm("content")

	err := view.Send(c.Request.Context(), content)
	if err == nil {
		// Success clears the input: redirect renders a fresh page.
		c.Redirect(http.StatusFound, "/messages")
		return
	}

	data := baseData(c, "messages")
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		// Whitespace-only input never reached the network.
		c.Redirect(http.StatusFound, "/messages")
		return
	case errors.Is(err, conversation.ErrNoSelection):
		data["Error"] = "Izberite pogovor za pošiljanje sporočila."
	default:
		// Failed send keeps the draft so the user can retry.
		data["Error"] = errorText(err, "Napaka pri pošiljanju sporočila.")
		data["Draft"] = content
	}
	h.render(c, view, data)
}

func (h MessageHandler) Delete(c *gin.Context) {
	view, ok := h.inbox(c)
	if !ok {
		return
	}
	if c.PostForm("confirm") != "1" {
		c.Redirect(http.StatusFound, "/messages")
		return
	}
	listingID, otherUserID, err := pairForm(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/messages")
		return
	}

	if err := view.Delete(c.Request.Context(), listingID, otherUserID); err != nil {
		data := baseData(c, "messages")
		data["Error"] = errorText(err, "Pogovora ni bilo mogoče izbrisati.")
		h.render(c, view, data)
		return
	}
	c.Redirect(http.StatusFound, "/messages")
}

func (h MessageHandler) ToggleDeleteMode(c *gin.Context) {
	view, ok := h.inbox(c)
	if !ok {
		return
	}
	view.SetDeleteMode(c.PostForm("on") == "1")
	c.Redirect(http.StatusFound, "/messages")
}

func (h MessageHandler) inbox(c *gin.Context) (*conversation.View, bool) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return nil, false
	}
	view, err := sess.Inbox()
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return nil, false
	}
	return view, true
}

func (h MessageHandler) render(c *gin.Context, view *conversation.View, data gin.H) {
	snap := view.Snapshot()
	data["Snapshot"] = snap
	data["Selected"] = snap.Selected
	c.HTML(http.StatusOK, "messages.tmpl", data)
}

func pairForm(c *gin.Context) (int64, int64, error) {
	listingID, err := strconv.ParseInt(c.PostForm("listingId"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	otherUserID, err := strconv.ParseInt(c.PostForm("otherUserId"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return listingID, otherUserID, nil
}

var _ MessageHTTP = (*MessageHandler)(nil)
