package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/op/go-logging"
	"github.com/shini4i/postdeplist/internal/chat"
	"golang.org/x/time/rate"
)

// Outcome records the result of posting a single deploy entry.
type Outcome struct {
	Entry string
	Err   error
}

// Success reports whether the entry was accepted by the chat service.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// Announcer posts deploy entries one at a time, in order, and reports each outcome.
type Announcer struct {
	Log    *logging.Logger
	Poster chat.Poster
	// Hashtag is appended to every message when non-empty.
	Hashtag string
	// Limiter paces consecutive posts when set.
	Limiter *rate.Limiter
}

// Announce posts every entry. A failed entry never stops the remaining ones.
func (a Announcer) Announce(ctx context.Context, entries []string) ([]Outcome, error) {
	if a.Poster == nil {
		return nil, errors.New("announcer requires a poster implementation")
	}
	if a.Log == nil {
		return nil, errors.New("announcer requires a logger")
	}

	outcomes := make([]Outcome, 0, len(entries))
	for _, entry := range entries {
		content := a.compose(entry)

		var err error
		if a.Limiter != nil {
			err = a.Limiter.Wait(ctx)
		}
		if err == nil {
			err = a.Poster.Post(content)
		}

		a.report(content, err)
		outcomes = append(outcomes, Outcome{Entry: entry, Err: err})
	}

	failed := CountFailures(outcomes)
	if len(outcomes) > 0 {
		a.Log.Infof("===> Posted %d of %d deploy entries (%s failed)", len(outcomes)-failed, len(outcomes), failureCount(failed))
	}

	return outcomes, nil
}

func (a Announcer) compose(entry string) string {
	if a.Hashtag == "" {
		return entry
	}
	return entry + "  " + a.Hashtag
}

func (a Announcer) report(content string, err error) {
	if err == nil {
		a.Log.Infof("%s - %s", content, green("Success!"))
		return
	}

	a.Log.Errorf("%s - %s", content, red("Failed!"))

	var rejected *chat.RejectedError
	if errors.As(err, &rejected) && rejected.Body != "" {
		a.Log.Errorf("▶ Status %d: %s", rejected.StatusCode, rejected.Body)
		return
	}
	a.Log.Errorf("▶ %v", err)
}

// CountFailures returns the number of outcomes that did not succeed.
func CountFailures(outcomes []Outcome) int {
	failed := 0
	for _, outcome := range outcomes {
		if !outcome.Success() {
			failed++
		}
	}
	return failed
}

func failureCount(failed int) string {
	if failed == 0 {
		return fmt.Sprint(failed)
	}
	return red(failed)
}
