// Package console is a web service that shows a form to users logged in on a
// repository server, validates the submitted values with the widgets bound
// to the rendered form and hands valid submissions to a custom action.
package console

import (
	"fmt"
	"html/template"
	"os"
	"os/signal"
	"sync"

	"github.com/G-Node/console/console/db"
	"github.com/G-Node/console/console/form"
	"github.com/G-Node/console/console/i18n"
	"github.com/G-Node/console/console/multiform"
	"github.com/G-Node/console/console/splitpane"
	"github.com/G-Node/console/console/web"
	"github.com/G-Node/console/console/widget"
	"github.com/G-Node/console/console/worker"
	"go.uber.org/zap"
)

// FormAction adapts the form for a user before it is shown.  It may return
// nil to keep the form unchanged.
type FormAction func(f form.Form, bot, user *worker.Client) (*form.Form, error)

// MainPane is the split pane holding the form and the submission messages.
const MainPane = "main"

// Service represents a full service which contains a web server, a database
// for submissions, sessions and profiles, and a worker that runs the submit
// action.
type Service struct {
	web      *web.Server
	db       *db.Connection
	worker   *worker.Worker
	log      *zap.Logger
	texts    *i18n.Texts
	registry *widget.Registry
	panes    *splitpane.Manager
	pages    map[string]*template.Template
	bot      *worker.Client

	mu         sync.RWMutex
	form       form.Form
	formAction FormAction

	Config Config
}

// NewService creates a new Service with a given form, an optional form action
// and the submit action.
func NewService(f form.Form, fa FormAction, action worker.SubmitAction, config Config) (*Service, error) {
	srv := new(Service)
	srv.Config = config.withDefaults()
	srv.log = zap.NewNop()

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	srv.pages = pages

	conn, err := db.New(srv.Config.DBPath)
	if err != nil {
		return nil, err
	}
	srv.db = conn

	srv.texts = i18n.New(srv.Config.Language)
	srv.worker = worker.New(srv.db, srv.Config.QueueLength, srv.log)
	srv.web = web.New(srv.Config.Port, srv.log)
	srv.setupRegistry()
	srv.setupPanes()
	srv.setupWebRoutes()

	// set form and funcs
	srv.SetForm(f)
	srv.SetFormAction(fa)
	srv.SetSubmitAction(action)
	return srv, nil
}

func (srv *Service) setupRegistry() {
	reg := widget.NewRegistry(srv.texts, srv.log)
	widget.Defaults(reg)
	multiform.Register(reg)
	srv.registry = reg
}

func (srv *Service) setupPanes() {
	srv.panes = splitpane.NewManager(srv.db, srv.log.Named("layout"))
	srv.panes.Define(splitpane.NewPane(MainPane, splitpane.Horizontal, 320, 160))
}

// SetLogger replaces the logger of the service and its parts.  It must be
// called before Start.
func (srv *Service) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	srv.log = log
	srv.worker.SetLogger(log.Named("worker"))
	srv.web.SetLogger(log.Named("web"))
	srv.setupPanes()
	srv.setupRegistry()
}

// login to the configured repository server as the bot user that represents
// this service and hand the client to the worker.
func (srv *Service) login() error {
	client, err := worker.Login(srv.Config.RepositoryServer, srv.Config.BotUsername, srv.Config.BotPassword)
	if err != nil {
		return err
	}
	srv.bot = client
	srv.worker.SetClient(client)
	return nil
}

// Start the service (worker and web server).
func (srv *Service) Start() error {
	srv.mu.RLock()
	nelems := len(srv.form.Elements())
	srv.mu.RUnlock()
	if nelems == 0 {
		return fmt.Errorf("form without elements is invalid")
	}
	if srv.worker.Action == nil {
		return fmt.Errorf("nil submit action is invalid")
	}

	if srv.Config.RepositoryServer != "" && srv.Config.BotUsername != "" {
		srv.log.Info("Logging in to repository server", zap.String("server", srv.Config.RepositoryServer))
		if err := srv.login(); err != nil {
			srv.log.Warn("Bot login failed; actions run without a service client", zap.Error(err))
		} else {
			srv.log.Info("Logged in")
		}
	}

	srv.log.Info("Starting worker")
	srv.worker.Start()
	srv.log.Info("Worker started")

	srv.log.Info("Starting web service")
	if err := srv.web.Start(); err != nil {
		return err
	}
	srv.log.Info("Web server started", zap.String("address", srv.web.ListenAddr()))
	return nil
}

// WaitForInterrupt blocks until the service receives an interrupt signal (SIGINT).
func (srv *Service) WaitForInterrupt() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)
	<-sigchan
}

// Stop the service by gracefully shutting down the web service, stopping the
// worker, and closing the database connection, in that order.
func (srv *Service) Stop() {
	srv.log.Info("Stopping web service")
	srv.web.Stop()

	srv.log.Info("Stopping worker queue")
	srv.worker.Stop()

	srv.log.Info("Closing database connection")
	if err := srv.db.Close(); err != nil {
		srv.log.Error("Error closing database", zap.Error(err))
	}
	srv.log.Info("Service stopped")
}

// Close releases the database of a service that was never started.
func (srv *Service) Close() error {
	return srv.db.Close()
}

// Address returns the address the web server listens on.
func (srv *Service) Address() string {
	return srv.web.ListenAddr()
}

// SetForm can be used to set or override the form for the service.
func (srv *Service) SetForm(f form.Form) {
	pages := make([]form.Page, len(f.Pages))
	copy(pages, f.Pages)
	f.Pages = pages
	srv.mu.Lock()
	srv.form = f
	srv.mu.Unlock()
}

// SetFormAction sets or clears the action adapting the form for each user.
func (srv *Service) SetFormAction(fa FormAction) {
	srv.mu.Lock()
	srv.formAction = fa
	srv.mu.Unlock()
}

// SetSubmitAction can be used to set or override the submit action for the
// service.
func (srv *Service) SetSubmitAction(action worker.SubmitAction) {
	srv.worker.Action = action
}
