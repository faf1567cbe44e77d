// Package chat defines how deploy entries are delivered to a chat service.
package chat

//go:generate mockgen -destination=../mocks/chat.go -package=mocks -source=chat.go

import (
	"fmt"
	"strings"
	"time"
)

// Poster can publish a single message to a chat destination.
type Poster interface {
	Post(content string) error
}

// TransportError reports a message that never received a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("perform request: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectedError reports a message the chat service answered with an unexpected status.
type RejectedError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RejectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %s", e.Status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

// DeployHashtag returns the dated tag appended to announcements, e.g. "#oct_19_deploy".
func DeployHashtag(day time.Time) string {
	return strings.ToLower(day.Format("#Jan_02_deploy"))
}
