// Package worker runs the submit action of the service on queued
// submissions, one at a time, and records the outcome in the database.
package worker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/G-Node/console/console/db"
	"go.uber.org/zap"
)

// DefaultQueueLength is the queue capacity used when none is configured.
const DefaultQueueLength = 100

// ErrQueueFull is returned by Enqueue when the queue has no room.
var ErrQueueFull = errors.New("submission queue full")

var errNoAction = errors.New("no submit action set")

// SubmitAction processes the values of a valid form.  The bot client acts as
// the service, the user client as the submitting user.  The returned
// messages are stored with the submission.
type SubmitAction func(values map[string]interface{}, bot, user *Client) ([]string, error)

// UserSubmission is a submission together with the client of the user who
// made it.
type UserSubmission struct {
	*db.Submission
	client *Client
	done   chan struct{}
}

// NewUserSubmission returns a submission of values for the user of client.
func NewUserSubmission(client *Client, label string, values map[string]interface{}) *UserSubmission {
	s := &db.Submission{Label: label, Values: values}
	if client != nil {
		s.UserName = client.UserName
	}
	return &UserSubmission{Submission: s, client: client, done: make(chan struct{})}
}

// Done is closed when the submission has been processed.
func (s *UserSubmission) Done() <-chan struct{} {
	return s.done
}

// Worker with queue for running submissions asynchronously.
type Worker struct {
	queue  chan *UserSubmission
	stop   chan struct{}
	wg     sync.WaitGroup
	Action SubmitAction
	mu     sync.RWMutex
	client *Client
	db     *db.Connection
	log    *zap.Logger
}

// New returns a worker storing submissions in dbconn.  A queueLength of zero
// selects DefaultQueueLength.
func New(dbconn *db.Connection, queueLength int, log *zap.Logger) *Worker {
	if queueLength <= 0 {
		queueLength = DefaultQueueLength
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := new(Worker)
	w.queue = make(chan *UserSubmission, queueLength)
	w.stop = make(chan struct{})
	w.db = dbconn
	w.log = log
	return w
}

// SetClient sets the bot client handed to the action.  It may be called
// while the worker runs.
func (w *Worker) SetClient(c *Client) {
	w.mu.Lock()
	w.client = c
	w.mu.Unlock()
}

// Client returns the bot client.
func (w *Worker) Client() *Client {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.client
}

// SetLogger replaces the logger.  It must be called before Start.
func (w *Worker) SetLogger(log *zap.Logger) {
	w.log = log
}

// Enqueue stores the submission in the database and adds it to the queue.
func (w *Worker) Enqueue(s *UserSubmission) error {
	s.SubmitTime = time.Now()
	if err := w.db.InsertSubmission(s.Submission); err != nil {
		return fmt.Errorf("failed to store submission %q: %w", s.Label, err)
	}
	select {
	case w.queue <- s:
		w.log.Debug("Submission queued", zap.Int64("id", s.ID), zap.String("label", s.Label))
		return nil
	default:
		s.EndTime = time.Now()
		s.Error = ErrQueueFull.Error()
		w.save(s)
		close(s.done)
		return ErrQueueFull
	}
}

// Stop stops the worker after the running submission has finished.  Queued
// submissions stay unfinished in the database.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Worker) run(s *UserSubmission) {
	defer close(s.done)
	defer w.save(s) // Update submission entry in db when done
	log := w.log.With(zap.Int64("id", s.ID), zap.String("label", s.Label), zap.String("user", s.UserName))
	log.Info("Starting submission")
	var msgs []string
	err := errNoAction
	if w.Action != nil {
		msgs, err = w.Action(s.Values, w.Client(), s.client)
	}
	s.EndTime = time.Now()
	s.Messages = msgs
	if err == nil {
		log.Info("Submission finished", zap.Int("messages", len(msgs)))
	} else {
		log.Error("Submission failed", zap.Error(err))
		s.Error = err.Error()
	}
}

func (w *Worker) save(s *UserSubmission) {
	if err := w.db.UpdateSubmission(s.Submission); err != nil {
		w.log.Error("Failed to update submission", zap.Int64("id", s.ID), zap.Error(err))
	}
}

// Start runs the queue in a goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case s := <-w.queue:
				w.run(s)
			case <-w.stop:
				return
			}
		}
	}()
	w.log.Debug("Worker queue running", zap.Int("capacity", cap(w.queue)))
}
