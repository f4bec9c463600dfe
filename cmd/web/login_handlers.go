package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/toyshop/web/internal/auth"
	"github.com/toyshop/web/internal/kvstore"
	mw "github.com/toyshop/web/internal/middleware"
)

// LoginView drives the two-step phone login form.
type LoginView struct {
	Lang  string
	Step  string // "phone" or "otp"
	Phone string
	Error string
}

// LoginHandler renders the phone entry step. Already logged-in buyers are
// sent to their orders.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	if auth.LoggedIn(sess) {
		http.Redirect(w, r, "/orders", http.StatusSeeOther)
		return
	}

	view := LoginView{Lang: lang, Step: "phone"}
	view.Phone, _ = sess.Get(kvstore.KeyPhone)

	renderLoginPage(w, r, lang, view)
}

// LoginPhoneHandler requests an OTP for the submitted phone number and moves
// the form to the code step.
func LoginPhoneHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	phone, err := auth.NormalizePhone(r.FormValue("phone"))
	if err != nil {
		respondLoginStep(w, r, lang, LoginView{
			Lang:  lang,
			Step:  "phone",
			Phone: strings.TrimSpace(r.FormValue("phone")),
			Error: i18nOrDefault(lang, "login.badPhone", "Enter a valid phone number, e.g. 998901234567"),
		}, http.StatusUnprocessableEntity)
		return
	}

	if err := authClient.RegisterPhone(r.Context(), phone); err != nil {
		respondLoginStep(w, r, lang, LoginView{
			Lang:  lang,
			Step:  "phone",
			Phone: phone,
			Error: i18nOrDefault(lang, "login.sendFailed", "Could not send the code, try again"),
		}, http.StatusBadGateway)
		return
	}

	respondLoginStep(w, r, lang, LoginView{Lang: lang, Step: "otp", Phone: phone}, http.StatusOK)
}

// LoginVerifyHandler checks the OTP and stores the issued tokens in the
// session.
func LoginVerifyHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	phone, err := auth.NormalizePhone(r.FormValue("phone"))
	if err != nil {
		respondLoginStep(w, r, lang, LoginView{
			Lang:  lang,
			Step:  "phone",
			Error: i18nOrDefault(lang, "login.badPhone", "Enter a valid phone number, e.g. 998901234567"),
		}, http.StatusUnprocessableEntity)
		return
	}
	otp := strings.TrimSpace(r.FormValue("otp"))

	sess := mw.GetSession(r)
	tokens, err := authClient.Login(r.Context(), phone, otp)
	if err != nil {
		msg := i18nOrDefault(lang, "login.failed", "Wrong code, try again")
		if !errors.Is(err, auth.ErrLoginFailed) {
			msg = i18nOrDefault(lang, "login.sendFailed", "Could not send the code, try again")
		}
		respondLoginStep(w, r, lang, LoginView{Lang: lang, Step: "otp", Phone: phone, Error: msg}, http.StatusUnprocessableEntity)
		return
	}

	auth.SaveTokens(sess, tokens, phone)
	// a fresh login gets a fresh session id; the catalog scroll state
	// follows it
	oldID := sess.ID
	sess.RegenerateID()
	migrateCatalogSession(oldID, sess.ID)

	redirectTo(w, r, "/")
}

// LogoutHandler drops the stored tokens and returns home.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	auth.ClearTokens(sess)
	redirectTo(w, r, "/")
}

func renderLoginPage(w http.ResponseWriter, r *http.Request, lang string, view LoginView) {
	title := i18nOrDefault(lang, "login.title", "Sign in")
	desc := i18nOrDefault(lang, "login.description", "Sign in with your phone number to order.")
	vm := basePage(r, lang, title, desc)
	vm.Login = view
	vm.SEO.Robots = "noindex, nofollow"
	renderPage(w, r, "login", vm)
}

func respondLoginStep(w http.ResponseWriter, r *http.Request, lang string, view LoginView, code int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	if mw.IsHTMX(r.Context()) {
		renderTemplate(w, r, "frag_login_form", view)
		return
	}
	renderLoginPage(w, r, lang, view)
}
