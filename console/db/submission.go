package db

import (
	"fmt"
	"time"
)

// Submission records a form submitted by a user and the outcome of the
// action that processed it.
type Submission struct {
	// Submission ID (auto)
	ID int64 `xorm:"pk autoincr"`
	// Name of the user who submitted the form
	UserName string `xorm:"index"`
	// Name of the submitted form
	Label string
	// Form values, keyed by field name
	Values map[string]interface{}
	// Messages returned by the action
	Messages []string
	// Error returned by the action, empty on success
	Error string
	// Time when the submission was queued
	SubmitTime time.Time
	// Time when the action finished (0 if ongoing)
	EndTime time.Time
}

// IsFinished returns true if the action has finished (has an EndTime).
func (s *Submission) IsFinished() bool {
	return !s.EndTime.IsZero()
}

// Failed returns true if the action finished with an error.
func (s *Submission) Failed() bool {
	return s.Error != ""
}

// InsertSubmission inserts a new Submission into the database.  Upon
// successful return, the Submission has a new unique ID.
func (conn *Connection) InsertSubmission(s *Submission) error {
	// ID is assigned on insertion
	if _, err := conn.engine.Insert(s); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// UpdateSubmission writes all fields of an existing Submission.
func (conn *Connection) UpdateSubmission(s *Submission) error {
	n, err := conn.engine.ID(s.ID).AllCols().Update(s)
	if err != nil {
		return fmt.Errorf("failed to update submission %d: %w", s.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("submission %d: %w", s.ID, ErrNotFound)
	}
	return nil
}

// GetUserSubmissions retrieves the Submissions of a user, newest first.
func (conn *Connection) GetUserSubmissions(username string) ([]Submission, error) {
	subs := make([]Submission, 0)
	if err := conn.engine.Where("user_name = ?", username).Desc("id").Find(&subs); err != nil {
		return nil, fmt.Errorf("failed to list submissions of %q: %w", username, err)
	}
	return subs, nil
}

// AllSubmissions returns all Submission entries in the database.
func (conn *Connection) AllSubmissions() ([]Submission, error) {
	subs := make([]Submission, 0)
	if err := conn.engine.Find(&subs); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// GetSubmission retrieves a Submission from the database given its ID.
func (conn *Connection) GetSubmission(id int64) (*Submission, error) {
	s := new(Submission)
	if has, err := conn.engine.ID(id).Get(s); err != nil {
		return nil, fmt.Errorf("failed to get submission %d: %w", id, err)
	} else if !has {
		return nil, fmt.Errorf("submission %d: %w", id, ErrNotFound)
	}
	return s, nil
}
