package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"github.com/Viherino/iss-bolha-frontend/internal/marketplace"
)

// AuthHandler renders the login/register/profile pages and drives the
// session store operations behind them.
type AuthHandler struct {
	Logger *slog.Logger
}

func (h AuthHandler) LoginPage(c *gin.Context) {
	sess, ok := currentSession(c)
	if ok && sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	data := baseData(c, "login")
	if c.Query("registered") == "1" {
		data["Notice"] = "Registracija uspešna. Prijavite se."
	}
	c.HTML(http.StatusOK, "login.tmpl", data)
}

func (h AuthHandler) Login(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	data := baseData(c, "login")
	data["Email"] = email
	if email == "" || password == "" {
		data["Error"] = "Vnesite e-pošto in geslo."
		c.HTML(http.StatusOK, "login.tmpl", data)
		return
	}

	if _, err := sess.Login(c.Request.Context(), email, password); err != nil {
		data["Error"] = loginErrorText(err)
		c.HTML(http.StatusOK, "login.tmpl", data)
		return
	}
	c.Redirect(http.StatusFound, "/home")
}

func (h AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.tmpl", baseData(c, "register"))
}

func (h AuthHandler) Register(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.Redirect(http.StatusFound, "/register")
		return
	}
	params := marketplace.RegisterParams{
		Username:    strings.TrimSpace(c.PostForm("username")),
		Email:       strings.TrimSpace(c.PostForm("email")),
		Password:    c.PostForm("password"),
		FirstName:   strings.TrimSpace(c.PostForm("firstName")),
		LastName:    strings.TrimSpace(c.PostForm("lastName")),
		PhoneNumber: strings.TrimSpace(c.PostForm("phoneNumber")),
		Address:     strings.TrimSpace(c.PostForm("address")),
	}

	data := baseData(c, "register")
	data["Form"] = params
	if params.Username == "" || params.Email == "" || params.Password == "" ||
		params.FirstName == "" || params.LastName == "" {
		data["Error"] = "Izpolnite vsa obvezna polja."
		c.HTML(http.StatusOK, "register.tmpl", data)
		return
	}

	// Registration only creates the account; the session stays as it
	// was and the user logs in separately.
	if _, err := sess.Register(c.Request.Context(), params); err != nil {
		data["Error"] = registerErrorText(err)
		c.HTML(http.StatusOK, "register.tmpl", data)
		return
	}
	c.Redirect(http.StatusFound, "/login?registered=1")
}

func (h AuthHandler) Logout(c *gin.Context) {
	if sess, ok := currentSession(c); ok {
		sess.Logout(c.Request.Context())
	}
	c.Redirect(http.StatusFound, "/home")
}

func (h AuthHandler) ProfilePage(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	user := sess.User()
	data := baseData(c, "profile")

	profile, err := sess.API().User(c.Request.Context(), user.ID)
	if err != nil {
		data["Error"] = errorText(err, "Profila ni bilo mogoče naložiti.")
		c.HTML(http.StatusOK, "profile.tmpl", data)
		return
	}
	data["Profile"] = profile

	listings, err := sess.API().MyListings(c.Request.Context())
	if err != nil {
		// The profile form is still usable without the listings pane.
		data["ListingsError"] = errorText(err, "Vaših oglasov ni bilo mogoče naložiti.")
		if h.Logger != nil {
			h.Logger.Warn("my-listings fetch failed", "user_id", user.ID, "error", err)
		}
	} else {
		data["Listings"] = listings
	}
	c.HTML(http.StatusOK, "profile.tmpl", data)
}

func (h AuthHandler) UpdateProfile(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !sess.IsLoggedIn() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	user := sess.User()
	params := marketplace.UpdateUserParams{
		FirstName:   strings.TrimSpace(c.PostForm("firstName")),
		LastName:    strings.TrimSpace(c.PostForm("lastName")),
		PhoneNumber: strings.TrimSpace(c.PostForm("phoneNumber")),
		Address:     strings.TrimSpace(c.PostForm("address")),
	}

	if _, err := sess.API().UpdateUser(c.Request.Context(), user.ID, params); err != nil {
		data := baseData(c, "profile")
		data["Error"] = errorText(err, "Posodobitev profila ni uspela.")
		data["Profile"] = &marketplace.User{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			FirstName:   params.FirstName,
			LastName:    params.LastName,
			PhoneNumber: params.PhoneNumber,
			Address:     params.Address,
		}
		c.HTML(http.StatusOK, "profile.tmpl", data)
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

func loginErrorText(err error) string {
	return errorText(err, "Prijava ni uspela.")
}

func registerErrorText(err error) string {
	return errorText(err, "Registracija ni uspela.")
}

// errorText surfaces backend messages verbatim and hides transport
// noise behind a generic fallback.
func errorText(err error, fallback string) string {
	var apiErr *marketplace.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

var _ AuthHTTP = (*AuthHandler)(nil)
