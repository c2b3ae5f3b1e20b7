package console

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/G-Node/console/console/form"
	"github.com/G-Node/console/console/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(t *testing.T) Config {
	return Config{
		CookieName: "test-cookie",
		DBPath:     filepath.Join(t.TempDir(), "console.db"),
	}
}

func waitFor(t *testing.T, s *worker.UserSubmission) {
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("Submission %q did not finish", s.Label)
	}
}

func TestServiceFailStart(t *testing.T) {
	s, err := NewService(form.Form{}, nil, noopAction, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	defer s.Close()
	if s.Start() == nil {
		t.Fatal("Service start succeeded without form elements; should have failed")
	}

	f := form.Form{Pages: []form.Page{{Elements: make([]form.Element, 1)}}}
	s2, err := NewService(f, nil, nil, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	defer s2.Close()
	if s2.Start() == nil {
		t.Fatal("Service start succeeded without submit action; should have failed")
	}
}

func TestServiceWithForm(t *testing.T) {
	elems := []form.Element{
		{
			ID:          "el1",
			Name:        "testfield1",
			Label:       "TestField1",
			Description: "Field of tests",
		},
		{
			ID:          "el2",
			Name:        "testfield2",
			Label:       "TestField2",
			Description: "Field of tests, part 2",
		},
	}
	f := new(form.Form)
	f.Pages = []form.Page{{Elements: elems}}
	srv, err := NewService(*f, nil, noopAction, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start service: %s", err.Error())
	}
	if srv.Address() == "" {
		t.Error("Started service has no listen address")
	}

	srv.Stop()
}

func noopAction(values map[string]interface{}, _, _ *worker.Client) ([]string, error) {
	return nil, nil
}

func TestServiceWithFormAction(t *testing.T) {
	f := new(form.Form)
	f.Pages = []form.Page{{Elements: make([]form.Element, 1)}}
	srv, err := NewService(*f, addElementAction, noopAction, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start service: %s", err.Error())
	}
	defer srv.Stop()

	adapted, err := srv.userForm(worker.NewClient("", "alice", ""))
	if err != nil {
		t.Fatalf("Form action failed: %s", err.Error())
	}
	if elems := adapted.Elements(); len(elems) != 1 || elems[0].Name != "Test" {
		t.Fatalf("Unexpected adapted form elements: %+v", elems)
	}

	j := worker.NewUserSubmission(worker.NewClient("", "", ""), "testjob", map[string]interface{}{"α": "alpha", "ω": "omega"})
	if err := srv.worker.Enqueue(j); err != nil {
		t.Fatalf("Failed to queue submission: %s", err.Error())
	}
	waitFor(t, j)

	if len(j.Messages) > 0 {
		t.Fatalf("Unexpected submission output messages: %+v", j.Messages)
	}
}

func addElementAction(f form.Form, _, _ *worker.Client) (*form.Form, error) {
	fnew := new(form.Form)
	fnew.Pages = []form.Page{{Elements: []form.Element{{Name: "Test", ID: "test", Description: "A test", Label: "Test"}}}}
	return fnew, nil
}

func TestServiceWithSubmitAction(t *testing.T) {
	f := new(form.Form)
	f.Pages = []form.Page{{Elements: make([]form.Element, 1)}}
	srv, err := NewService(*f, nil, echoAction, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start service: %s", err.Error())
	}
	defer srv.Stop()

	values := map[string]interface{}{
		"α":    "alpha",
		"ω":    "omega",
		"tags": []interface{}{"a", "b"},
	}
	j := worker.NewUserSubmission(worker.NewClient("", "", ""), "testjob", values)
	if err := srv.worker.Enqueue(j); err != nil {
		t.Fatalf("Failed to queue submission: %s", err.Error())
	}
	waitFor(t, j)

	expected := []string{"tags:a, b", "α:alpha", "ω:omega"}
	if len(j.Messages) != len(expected) {
		t.Fatalf("Unexpected submission output: %+v", j.Messages)
	}
	for idx := range expected {
		if j.Messages[idx] != expected[idx] {
			t.Fatalf("Unexpected submission output message [%d]: %q", idx, j.Messages[idx])
		}
	}
}

func echoAction(values map[string]interface{}, _, _ *worker.Client) ([]string, error) {
	echo := make([]string, 0, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case []interface{}:
			parts := make([]string, len(val))
			for idx := range val {
				parts[idx] = fmt.Sprint(val[idx])
			}
			echo = append(echo, fmt.Sprintf("%s:%s", k, strings.Join(parts, ", ")))
		default:
			echo = append(echo, fmt.Sprintf("%s:%v", k, val))
		}
	}

	sort.Strings(echo)
	return echo, nil
}

func TestSetForm(t *testing.T) {
	f := form.Form{Name: "first", Pages: []form.Page{{Elements: make([]form.Element, 1)}}}
	srv, err := NewService(f, nil, noopAction, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	defer srv.Close()

	f.Pages[0] = form.Page{Description: "changed"}
	got, _ := srv.userForm(worker.NewClient("", "alice", ""))
	if got.Pages[0].Description != "" {
		t.Fatal("Changing the original form changed the service form")
	}

	srv.SetForm(form.Form{Name: "second"})
	if got, _ = srv.userForm(worker.NewClient("", "alice", "")); got.Name != "second" {
		t.Fatalf("Form not replaced: %q", got.Name)
	}

	srv.SetFormAction(func(f form.Form, _, _ *worker.Client) (*form.Form, error) {
		return nil, fmt.Errorf("no form for you")
	})
	if _, err := srv.userForm(worker.NewClient("", "alice", "")); err == nil {
		t.Fatal("Failing form action did not return an error")
	}
}

func TestLoggers(t *testing.T) {
	f := new(form.Form)
	f.Pages = []form.Page{{Elements: make([]form.Element, 1)}}
	srv, err := NewService(*f, nil, noopAction, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}

	core, logs := observer.New(zap.InfoLevel)
	srv.SetLogger(zap.New(core))

	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start service: %s", err.Error())
	}
	srv.Stop()

	expMessages := []string{
		"Starting worker",
		"Worker started",
		"Starting web service",
		"Web server started",
		"Stopping web service",
		"Stopping worker queue",
		"Closing database connection",
		"Service stopped",
	}

	entries := logs.AllUntimed()
	for _, msg := range expMessages {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Fatalf("Expected message %q not found in log", msg)
		}
	}
	if entries[0].Message != expMessages[0] || entries[len(entries)-1].Message != expMessages[len(expMessages)-1] {
		t.Fatalf("Unexpected order of log messages: first %q, last %q", entries[0].Message, entries[len(entries)-1].Message)
	}
}

func TestSetLoggerPanes(t *testing.T) {
	f := new(form.Form)
	f.Pages = []form.Page{{Elements: make([]form.Element, 1)}}
	srv, err := NewService(*f, nil, noopAction, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	srv.SetLogger(zap.New(core))

	if err := srv.db.SetProfile("alice", "layout."+MainPane, "wide"); err != nil {
		t.Fatalf("Failed to store profile: %s", err.Error())
	}
	p, err := srv.panes.Pane("alice", MainPane)
	if err != nil {
		t.Fatalf("Pane %q not defined after SetLogger: %s", MainPane, err.Error())
	}
	if p.Ratio != 0.5 {
		t.Fatalf("Unexpected ratio for invalid stored value: %v", p.Ratio)
	}
	entries := logs.FilterMessage("ignoring stored divider position").AllUntimed()
	if len(entries) != 1 || entries[0].LoggerName != "layout" {
		t.Fatalf("Layout warning not logged by the layout logger: %+v", entries)
	}
}

func TestBotLoginBeforeWorker(t *testing.T) {
	gogs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/users/bot/tokens") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"name": "console", "sha1": "bottoken"}]`)
	}))
	defer gogs.Close()

	f := new(form.Form)
	f.Pages = []form.Page{{Elements: make([]form.Element, 1)}}
	config := testConfig(t)
	config.RepositoryServer = gogs.URL
	config.BotUsername = "bot"
	config.BotPassword = "secret"
	srv, err := NewService(*f, nil, noopAction, config)
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	core, logs := observer.New(zap.InfoLevel)
	srv.SetLogger(zap.New(core))

	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start service: %s", err.Error())
	}
	defer srv.Stop()

	if c := srv.worker.Client(); c == nil || c.UserName != "bot" {
		t.Fatalf("Worker has no bot client: %+v", c)
	}
	var order []string
	for _, e := range logs.AllUntimed() {
		if e.Message == "Logged in" || e.Message == "Starting worker" {
			order = append(order, e.Message)
		}
	}
	if len(order) != 2 || order[0] != "Logged in" {
		t.Fatalf("Bot must be logged in before the worker starts: %v", order)
	}
}
