// Common routes and pages

package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/G-Node/console/console/db"
	"github.com/G-Node/console/console/dom"
	"github.com/G-Node/console/console/form"
	"github.com/G-Node/console/console/multiform"
	"github.com/G-Node/console/console/splitpane"
	"github.com/G-Node/console/console/widget"
	"github.com/G-Node/console/console/worker"
	"github.com/G-Node/console/templates"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const timefmt = "15:04:05 Mon Jan 2 2006"

// authedHandler is a handler that requires an authenticated user
type authedHandler func(w http.ResponseWriter, r *http.Request, sess *db.Session)

// parsePages combines the layout with the content of every page.
func parsePages() (map[string]*template.Template, error) {
	sources := map[string]string{
		"form":  templates.Form,
		"login": templates.Login,
		"log":   templates.LogView,
	}
	pages := make(map[string]*template.Template, len(sources))
	for name, src := range sources {
		tmpl, err := template.New("layout").Parse(templates.Layout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout template: %w", err)
		}
		if tmpl, err = tmpl.Parse(src); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// reqLoginHandler acts as middleware to check if the user is logged in.
// Returns a function that matches 'authedHandler()'.
// Use for pages that require authentication (everything except the login page).
func (srv *Service) reqLoginHandler(handler authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(srv.Config.CookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		sess, err := srv.db.GetSession(cookie.Value)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				srv.log.Error("Failed to load session", zap.Error(err))
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if sess.Expired(srv.Config.SessionMaxAge) {
			srv.log.Info("Session expired", zap.String("user", sess.UserName))
			if err := srv.db.DeleteSession(sess.ID); err != nil {
				srv.log.Error("Failed to delete session", zap.Error(err))
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		handler(w, r, sess)
	}
}

// setupWebRoutes sets up the common routes shared by all instances of the service.
//
// Login, Form (editable and read-only), submission log, validation and
// layout routes
func (srv *Service) setupWebRoutes() {
	router := srv.web.Router
	router.StrictSlash(true)

	router.HandleFunc("/login", srv.renderLoginPage).Methods("GET")
	router.HandleFunc("/login", srv.userLoginPost).Methods("POST")
	router.HandleFunc("/logout", srv.logout).Methods("GET")

	router.HandleFunc("/", srv.reqLoginHandler(srv.renderForm)).Methods("GET")
	router.HandleFunc("/", srv.reqLoginHandler(srv.processForm)).Methods("POST")
	router.HandleFunc("/log", srv.reqLoginHandler(srv.renderLog)).Methods("GET")
	router.HandleFunc("/log/{id:[0-9]+}", srv.reqLoginHandler(srv.showSubmission)).Methods("GET")

	router.HandleFunc("/api/validate", srv.reqLoginHandler(srv.validateValues)).Methods("POST")
	router.HandleFunc("/profile/layout/{pane}", srv.reqLoginHandler(srv.getLayout)).Methods("GET")
	router.HandleFunc("/profile/layout/{pane}", srv.reqLoginHandler(srv.putLayout)).Methods("PUT")

	router.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.Dir("./assets"))))
}

func (srv *Service) renderLogin(w http.ResponseWriter, status int, message string) {
	data := make(map[string]interface{})
	if message != "" {
		data["error"] = message
	}
	var buf bytes.Buffer
	if err := srv.pages["login"].Execute(&buf, data); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error showing login page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (srv *Service) renderLoginPage(w http.ResponseWriter, r *http.Request) {
	srv.renderLogin(w, http.StatusOK, "")
}

func (srv *Service) userLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "Invalid login request")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		srv.renderLogin(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	client, err := worker.Login(srv.Config.RepositoryServer, username, password)
	if err != nil {
		srv.log.Info("Login failed", zap.String("user", username), zap.Error(err))
		srv.renderLogin(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	sess := db.NewSession(client.UserName, client.Token)
	if err := srv.db.InsertSession(sess); err != nil {
		srv.log.Error("Failed to store session", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	cookie := http.Cookie{
		Name:     srv.Config.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
	}
	if srv.Config.SessionMaxAge > 0 {
		cookie.Expires = sess.Created.Add(srv.Config.SessionMaxAge)
	}
	http.SetCookie(w, &cookie)
	srv.log.Info("User logged in", zap.String("user", sess.UserName))
	// Redirect to form
	http.Redirect(w, r, "/", http.StatusFound)
}

func (srv *Service) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(srv.Config.CookieName); err == nil && cookie.Value != "" {
		if err := srv.db.DeleteSession(cookie.Value); err != nil {
			srv.log.Error("Failed to delete session", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:    srv.Config.CookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// userClient returns the repository client of the session user.
func (srv *Service) userClient(sess *db.Session) *worker.Client {
	return worker.NewClient(srv.Config.RepositoryServer, sess.UserName, sess.Token)
}

// userForm returns the form as adapted by the form action for the user.
func (srv *Service) userForm(user *worker.Client) (form.Form, error) {
	srv.mu.RLock()
	f, fa := srv.form, srv.formAction
	srv.mu.RUnlock()
	if fa == nil {
		return f, nil
	}
	adapted, err := fa(f, srv.bot, user)
	if err != nil {
		return f, err
	}
	if adapted != nil {
		f = *adapted
	}
	return f, nil
}

// paneView holds the split pane values the form template reads.
type paneView struct {
	Name         string
	Orientation  string
	FirstPercent string
}

func (srv *Service) paneView(user string) paneView {
	p, err := srv.panes.Pane(user, MainPane)
	if err != nil {
		srv.log.Warn("Failed to load layout", zap.String("user", user), zap.Error(err))
		p = splitpane.NewPane(MainPane, splitpane.Horizontal, 0, 0)
	}
	return paneView{
		Name:         p.Name,
		Orientation:  p.Orientation.String(),
		FirstPercent: strconv.FormatFloat(p.Ratio*100, 'f', 1, 64),
	}
}

// formPage is a rendered form with its widgets bound.
type formPage struct {
	page *widget.Page
	form *widget.FormWidget
}

// buildPage renders the form template and binds the widgets of the result.
func (srv *Service) buildPage(data map[string]interface{}) (*formPage, error) {
	var buf bytes.Buffer
	if err := srv.pages["form"].Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render form: %w", err)
	}
	doc, err := dom.Parse(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered form: %w", err)
	}
	page := srv.registry.NewPage(doc)
	page.SetUp(nil, false)
	fw, ok := page.WidgetOf(doc.Find(widget.FormSelector)).(*widget.FormWidget)
	if !ok {
		return nil, fmt.Errorf("rendered page has no form")
	}
	fw.Prepare()
	return &formPage{page: page, form: fw}, nil
}

// setAlerts replaces the alerts shown above the form.
func (srv *Service) setAlerts(fp *formPage, alerts widget.Alerts) error {
	var buf bytes.Buffer
	if err := srv.pages["form"].ExecuteTemplate(&buf, "alerts", alerts); err != nil {
		return fmt.Errorf("failed to render alerts: %w", err)
	}
	fp.page.Document().Find(".form-alerts").SetHtml(buf.String())
	return nil
}

func (srv *Service) writePage(w http.ResponseWriter, status int, fp *formPage) {
	markup, err := fp.page.Render()
	if err != nil {
		srv.log.Error("Failed to render page", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error showing form")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(markup))
}

// formData collects the template data of the form page for a user.
func (srv *Service) formData(user *worker.Client) (map[string]interface{}, form.Form, error) {
	f, err := srv.userForm(user)
	if err != nil {
		return nil, f, err
	}
	data := make(map[string]interface{})
	data["form"] = f
	data["pane"] = srv.paneView(user.UserName)
	return data, f, nil
}

func (srv *Service) renderForm(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	data, _, err := srv.formData(srv.userClient(sess))
	if err != nil {
		srv.log.Error("Form action failed", zap.String("user", sess.UserName), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to prepare form")
		return
	}
	fp, err := srv.buildPage(data)
	if err != nil {
		srv.log.Error("Failed to build form", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error showing form")
		return
	}
	srv.writePage(w, http.StatusOK, fp)
}

// processForm decodes a post into the widgets of the form.  Posts carrying
// a multi-form control re-render the edited form; all others are validated
// and queued.
func (srv *Service) processForm(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	if err := r.ParseForm(); err != nil {
		srv.log.Warn("Failed to parse form", zap.Error(err))
	}
	user := srv.userClient(sess)
	data, f, err := srv.formData(user)
	if err != nil {
		srv.log.Error("Form action failed", zap.String("user", sess.UserName), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to prepare form")
		return
	}
	fp, err := srv.buildPage(data)
	if err != nil {
		srv.log.Error("Failed to build form", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error showing form")
		return
	}

	root := fp.form.Element()
	if err := multiform.Decode(fp.page, root, r.PostForm); err != nil {
		srv.log.Warn("Rejected form post", zap.String("user", sess.UserName), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	handled, err := multiform.Control(fp.page, root, r.PostForm)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if handled {
		fp.form.Prepare()
		srv.writePage(w, http.StatusOK, fp)
		return
	}

	var alerts widget.Alerts
	if !fp.form.Validate(alerts.Add) {
		if err := srv.setAlerts(fp, alerts); err != nil {
			srv.log.Error("Failed to show alerts", zap.Error(err))
		}
		srv.writePage(w, http.StatusUnprocessableEntity, fp)
		return
	}

	sub := worker.NewUserSubmission(user, f.Name, fp.form.Values())
	if err := srv.worker.Enqueue(sub); err != nil {
		srv.log.Error("Failed to queue submission", zap.String("user", sess.UserName), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusServiceUnavailable, "Submission could not be queued")
		return
	}

	// redirect to submission log
	http.Redirect(w, r, "/log", http.StatusSeeOther)
}

func (srv *Service) renderLog(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	subs, err := srv.db.GetUserSubmissions(sess.UserName)
	if err != nil {
		srv.log.Error("Failed to read submissions", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error reading submissions from DB")
		return
	}
	var buf bytes.Buffer
	if err := srv.pages["log"].Execute(&buf, subs); err != nil {
		srv.log.Error("Failed to render log", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error showing submission listing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (srv *Service) showSubmission(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	sub, err := srv.db.GetSubmission(id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		srv.log.Error("Failed to read submission", zap.Int64("id", id), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error reading submission from DB")
		return
	}
	if sub == nil || sub.UserName != sess.UserName {
		srv.web.ErrorResponse(w, http.StatusNotFound, "No such submission")
		return
	}

	data, _, err := srv.formData(srv.userClient(sess))
	if err != nil {
		srv.log.Error("Form action failed", zap.String("user", sess.UserName), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to prepare form")
		return
	}
	// Add timestamps and messages to template data and set read-only
	data["readonly"] = true
	data["submit_time"] = sub.SubmitTime.Format(timefmt)
	if sub.IsFinished() {
		data["end_time"] = sub.EndTime.Format(timefmt)
	}
	data["messages"] = sub.Messages
	if sub.Failed() {
		data["error"] = sub.Error
	}

	fp, err := srv.buildPage(data)
	if err != nil {
		srv.log.Error("Failed to build form", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error showing submission")
		return
	}
	fp.form.SetValue(sub.Values, false)
	fp.form.ReadOnly()
	srv.writePage(w, http.StatusOK, fp)
}

// validation is the response of the validation endpoint.
type validation struct {
	Valid  bool                   `json:"valid"`
	Alerts widget.Alerts          `json:"alerts"`
	Value  map[string]interface{} `json:"value"`
}

// validateValues checks a JSON object of field values against the form of
// the user without submitting it.
func (srv *Service) validateValues(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	var values map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		srv.web.JSONResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON document"})
		return
	}
	data, _, err := srv.formData(srv.userClient(sess))
	if err != nil {
		srv.log.Error("Form action failed", zap.String("user", sess.UserName), zap.Error(err))
		srv.web.JSONResponse(w, http.StatusInternalServerError, map[string]string{"error": "failed to prepare form"})
		return
	}
	fp, err := srv.buildPage(data)
	if err != nil {
		srv.log.Error("Failed to build form", zap.Error(err))
		srv.web.JSONResponse(w, http.StatusInternalServerError, map[string]string{"error": "failed to build form"})
		return
	}
	fp.form.SetValue(values, false)
	alerts := widget.Alerts{}
	valid := fp.form.Validate(alerts.Add)
	srv.web.JSONResponse(w, http.StatusOK, validation{Valid: valid, Alerts: alerts, Value: fp.form.Values()})
}

// layoutRequest changes the divider of a pane: either to an absolute ratio
// or by dragging it within a pane of the given size.
type layoutRequest struct {
	Ratio  *float64 `json:"ratio"`
	Drag   int      `json:"drag"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

type layoutResponse struct {
	Name        string           `json:"name"`
	Orientation string           `json:"orientation"`
	Ratio       float64          `json:"ratio"`
	Position    int              `json:"position"`
	Layout      splitpane.Layout `json:"layout"`
}

func newLayoutResponse(p *splitpane.Pane, l splitpane.Layout) layoutResponse {
	return layoutResponse{
		Name:        p.Name,
		Orientation: p.Orientation.String(),
		Ratio:       p.Ratio,
		Position:    p.Position(),
		Layout:      l,
	}
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func (srv *Service) getLayout(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	p, err := srv.panes.Pane(sess.UserName, mux.Vars(r)["pane"])
	if err != nil {
		srv.web.JSONResponse(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	l := p.Layout(queryInt(r, "width"), queryInt(r, "height"))
	srv.web.JSONResponse(w, http.StatusOK, newLayoutResponse(p, l))
}

func (srv *Service) putLayout(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		srv.web.JSONResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON document"})
		return
	}
	p, err := srv.panes.Pane(sess.UserName, mux.Vars(r)["pane"])
	if err != nil {
		srv.web.JSONResponse(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if req.Ratio != nil {
		p.SetRatio(*req.Ratio)
	}
	l := p.Layout(req.Width, req.Height)
	if req.Drag != 0 {
		l = p.Drag(req.Drag)
	}
	if err := srv.panes.Save(sess.UserName, p); err != nil {
		srv.log.Error("Failed to save layout", zap.Error(err))
		srv.web.JSONResponse(w, http.StatusInternalServerError, map[string]string{"error": "failed to save layout"})
		return
	}
	srv.web.JSONResponse(w, http.StatusOK, newLayoutResponse(p, l))
}
