package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"github.com/Viherino/iss-bolha-frontend/internal/marketplace"
)

// ListingHandler renders the browse/detail/create/edit pages. Every
// page is a thin view over the marketplace API; the handler owns no
// state beyond the request.
type ListingHandler struct {
	Logger *slog.Logger
}

func (h ListingHandler) Home(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}
	api := sess.API()
	data := baseData(c, "home")

	query := strings.TrimSpace(c.Query("q"))
	categoryID, _ := strconv.ParseInt(c.Query("category"), 10, 64)
	data["Query"] = query
	data["SelectedCategoryID"] = categoryID

	categories, err := api.Categories(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("categories fetch failed", "error", err)
		}
	} else {
		data["Categories"] = categories
	}

	listings, err := api.SearchListings(c.Request.Context(), query, categoryID)
	if err != nil {
		data["Error"] = errorText(err, "Oglasov ni bilo mogoče naložiti.")
		c.HTML(http.StatusOK, "home.tmpl", data)
		return
	}
	data["Listings"] = listings
	c.HTML(http.StatusOK, "home.tmpl", data)
}

func (h ListingHandler) Detail(c *gin.Context) {
	h.renderDetail(c, "", "")
}

func (h ListingHandler) renderDetail(c *gin.Context, contactError, draft string) {
	sess, ok := currentSession(c)
	if !ok {
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		c.HTML(http.StatusNotFound, "error.tmpl", withError(baseData(c, "home"), "Oglas ne obstaja."))
		return
	}

	data := baseData(c, "home")
	listing, err := sess.API().Listing(c.Request.Context(), id)
	if err != nil {
		c.HTML(http.StatusOK, "error.tmpl", withError(data, errorText(err, "Oglasa ni bilo mogoče naložiti.")))
		return
	}
	data["Listing"] = listing
	data["ContactError"] = contactError
	data["Draft"] = draft
	data["Sent"] = c.Query("sent") == "1"
	if user := sess.User(); user != nil && listing.User != nil {
		data["IsOwner"] = user.ID == listing.User.ID
	}
	c.HTML(http.StatusOK, "detail.tmpl", data)
}

// ContactSeller opens a conversation about a listing by sending the
// first message to its seller.
func (h ListingHandler) ContactSeller(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	content := c.PostForm("content")
	if strings.TrimSpace(content) == "" {
		h.renderDetail(c, "Vnesite vaše sporočilo.", content)
		return
	}

	listing, err := sess.API().Listing(c.Request.Context(), id)
	if err != nil || listing.User == nil {
		h.renderDetail(c, errorText(err, "Prodajalca ni bilo mogoče najti."), content)
		return
	}
	err = sess.API().SendMessage(c.Request.Context(), marketplace.SendMessageParams{
		Content:     content,
		RecipientID: listing.User.ID,
		ListingID:   listing.ID,
	})
	if err != nil {
		h.renderDetail(c, errorText(err, "Napaka pri pošiljanju sporočila."), content)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/listing/%d?sent=1", id))
}

func (h ListingHandler) CreatePage(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	data := baseData(c, "create")
	h.attachCategories(c, sess.API(), data)
	c.HTML(http.StatusOK, "listing_form.tmpl", data)
}

func (h ListingHandler) Create(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	params, formErr := listingForm(c)
	params.UserID = sess.User().ID

	data := baseData(c, "create")
	data["Form"] = params
	h.attachCategories(c, sess.API(), data)
	if formErr != "" {
		data["Error"] = formErr
		c.HTML(http.StatusOK, "listing_form.tmpl", data)
		return
	}

	created, err := sess.API().CreateListing(c.Request.Context(), params)
	if err != nil {
		data["Error"] = errorText(err, "Objava oglasa ni uspela.")
		c.HTML(http.StatusOK, "listing_form.tmpl", data)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/listing/%d", created.ID))
}

func (h ListingHandler) EditPage(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	listing, err := sess.API().Listing(c.Request.Context(), id)
	if err != nil {
		c.HTML(http.StatusOK, "error.tmpl", withError(baseData(c, "home"), errorText(err, "Oglasa ni bilo mogoče naložiti.")))
		return
	}
	if listing.User == nil || listing.User.ID != sess.User().ID {
		c.Redirect(http.StatusFound, fmt.Sprintf("/listing/%d", id))
		return
	}

	data := baseData(c, "edit")
	data["Listing"] = listing
	data["Form"] = marketplace.ListingParams{
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Condition:   listing.Condition,
		CategoryID:  categoryID(listing),
	}
	h.attachCategories(c, sess.API(), data)
	c.HTML(http.StatusOK, "listing_form.tmpl", data)
}

func (h ListingHandler) Edit(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	params, formErr := listingForm(c)

	data := baseData(c, "edit")
	data["Form"] = params
	// The form action needs the listing id even on a re-render.
	data["Listing"] = &marketplace.Listing{ID: id}
	h.attachCategories(c, sess.API(), data)
	if formErr != "" {
		data["Error"] = formErr
		c.HTML(http.StatusOK, "listing_form.tmpl", data)
		return
	}

	if _, err := sess.API().UpdateListing(c.Request.Context(), id, params); err != nil {
		data["Error"] = errorText(err, "Posodobitev oglasa ni uspela.")
		c.HTML(http.StatusOK, "listing_form.tmpl", data)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/listing/%d", id))
}

func (h ListingHandler) Delete(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		c.Redirect(http.StatusFound, "/profile")
		return
	}
	if err := sess.API().DeleteListing(c.Request.Context(), id); err != nil && h.Logger != nil {
		h.Logger.Warn("listing delete failed", "listing_id", id, "error", err)
	}
	c.Redirect(http.StatusFound, "/profile")
}

func (h ListingHandler) attachCategories(c *gin.Context, api *marketplace.Client, data gin.H) {
	categories, err := api.Categories(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("categories fetch failed", "error", err)
		}
		return
	}
	data["Categories"] = categories
}

func listingForm(c *gin.Context) (marketplace.ListingParams, string) {
	params := marketplace.ListingParams{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Condition:   c.PostForm("condition"),
	}
	params.CategoryID, _ = strconv.ParseInt(c.PostForm("categoryId"), 10, 64)
	price, priceErr := strconv.ParseFloat(strings.TrimSpace(c.PostForm("price")), 64)
	params.Price = price

	switch {
	case params.Title == "" || params.Description == "":
		return params, "Izpolnite vsa obvezna polja."
	case priceErr != nil || price <= 0:
		return params, "Vnesite veljavno ceno."
	case params.Condition == "":
		return params, "Izberite stanje predmeta."
	case params.CategoryID <= 0:
		return params, "Izberite kategorijo."
	}
	return params, ""
}

func pathID(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func categoryID(listing *marketplace.Listing) int64 {
	if listing.Category == nil {
		return 0
	}
	return listing.Category.ID
}

func withError(data gin.H, message string) gin.H {
	data["Error"] = message
	return data
}

var _ ListingHTTP = (*ListingHandler)(nil)
