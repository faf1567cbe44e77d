package deploylist

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shini4i/postdeplist/internal/models"
)

// jiraTimeLayout is the format Jira uses for datetime custom fields.
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

var deployTimeLayouts = []string{
	jiraTimeLayout,
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
}

// FilterOptions controls which tracker issues become deploy entries.
type FilterOptions struct {
	// BaseURL is the tracker URL used to build issue links.
	BaseURL string
	// Today selects the deploy date. Only its calendar date is used.
	Today time.Time
	// Hour, when set, additionally requires the deploy time to fall within that hour.
	Hour *int
}

// Filter keeps issues scheduled for today (or unscheduled) and returns them as sorted entries.
// A deploy time that cannot be parsed fails the whole filter.
func Filter(issues []models.Issue, opts FilterOptions) ([]string, error) {
	baseURL := opts.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	entries := []string{}
	for _, issue := range issues {
		include, err := scheduledFor(issue, opts)
		if err != nil {
			return nil, err
		}
		if include {
			entries = append(entries, FormatEntry(baseURL, issue))
		}
	}

	sort.Strings(entries)

	return entries, nil
}

// FormatEntry renders an issue as "<baseURL>browse/<key> - <summary>".
func FormatEntry(baseURL string, issue models.Issue) string {
	return fmt.Sprintf("%sbrowse/%s - %s", baseURL, issue.Key, issue.Summary)
}

func scheduledFor(issue models.Issue, opts FilterOptions) (bool, error) {
	raw := strings.TrimSpace(issue.DeployTime)
	if raw == "" {
		return true, nil
	}

	deployTime, err := ParseDeployTime(raw)
	if err != nil {
		return false, &TimeParseError{Key: issue.Key, Value: issue.DeployTime, Err: err}
	}

	// Date and hour are read in the offset the tracker returned.
	if !sameDate(deployTime, opts.Today) {
		return false, nil
	}

	if opts.Hour != nil && deployTime.Hour() != *opts.Hour {
		return false, nil
	}

	return true, nil
}

// ParseDeployTime parses a deploy time in Jira's datetime format or RFC 3339.
func ParseDeployTime(value string) (time.Time, error) {
	var errs []error
	for _, layout := range deployTimeLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		errs = append(errs, err)
	}
	return time.Time{}, errors.Join(errs...)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
