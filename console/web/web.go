// Package web wraps the HTTP server and router of the service.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/G-Node/console/templates"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ErrorResponse logs an error and renders an error page with the given message,
// returning the given status code to the user.
func (ws *Server) ErrorResponse(w http.ResponseWriter, status int, message string) {
	ws.log.Warn("Error response", zap.Int("status", status), zap.String("message", message))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	tmpl := template.New("layout")
	tmpl, err := tmpl.Parse(templates.Layout)
	if err != nil {
		tmpl = template.New("content")
	}
	tmpl, err = tmpl.Parse(templates.Fail)
	if err != nil {
		w.Write([]byte(message))
		return
	}
	errinfo := struct {
		StatusCode int
		StatusText string
		Message    string
	}{
		status,
		http.StatusText(status),
		message,
	}
	if err := tmpl.Execute(w, &errinfo); err != nil {
		ws.log.Error("Error rendering fail page", zap.Error(err))
	}
}

// JSONResponse writes v as a JSON document with the given status code.
func (ws *Server) JSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ws.log.Error("Error writing JSON response", zap.Error(err))
	}
}

// Server implements the web server for the console service.
type Server struct {
	*http.Server
	Router   *mux.Router
	log      *zap.Logger
	listener net.Listener
}

// New returns a web Server with an initialised mux.Router and http.Server
// listening on the given port.  Port 0 picks a free port on Start.
func New(port uint16, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	srv := new(Server)
	srv.Router = new(mux.Router)
	srv.log = log
	httpsrv := new(http.Server)
	httpsrv.Handler = srv.Router

	httpsrv.Addr = fmt.Sprintf(":%d", port)
	httpsrv.WriteTimeout = time.Second * 15
	httpsrv.ReadTimeout = time.Second * 15
	httpsrv.IdleTimeout = time.Second * 60
	srv.Server = httpsrv
	return srv
}

// SetLogger replaces the logger.
func (ws *Server) SetLogger(log *zap.Logger) {
	ws.log = log
}

// Start opens the listening socket and serves requests in a goroutine.  This
// method does not block. Use WaitForInterrupt() or implement your own
// blocking function to wait for any other stop condition.
func (ws *Server) Start() error {
	ln, err := net.Listen("tcp", ws.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ws.Addr, err)
	}
	ws.listener = ln
	go func() {
		if err := ws.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ws.log.Error("Web server stopped", zap.Error(err))
		}
	}()
	return nil
}

// ListenAddr returns the address the server listens on once started.
func (ws *Server) ListenAddr() string {
	if ws.listener == nil {
		return ws.Addr
	}
	return ws.listener.Addr().String()
}

// Stop gracefully stops the web service.
func (ws *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	// Gracefully shut down, waiting for the timeout deadline for connections to close.
	if err := ws.Shutdown(ctx); err != nil {
		ws.log.Error("Web server shutdown failed", zap.Error(err))
	}
}
