package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shini4i/postdeplist/internal/models"
)

// Prompt asks the user for credentials interactively.
type Prompt struct {
	In  io.Reader
	Out io.Writer
	// ReadSecret reads a password without echo. Passwords are read from In when nil.
	ReadSecret func() (string, error)
}

type question struct {
	label  string
	secret bool
	target *string
}

// Ensure Prompt implements Provider.
var _ Provider = (*Prompt)(nil)

// Credentials prompts for the Flowdock login followed by the Jira login.
func (p *Prompt) Credentials() (models.ServiceCredentials, error) {
	reader := bufio.NewReader(p.In)

	readLine := func() (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	readSecret := readLine
	if p.ReadSecret != nil {
		readSecret = p.ReadSecret
	}

	var creds models.ServiceCredentials
	questions := []question{
		{label: "Please enter your Flowdock username: ", target: &creds.Chat.Username},
		{label: "Please enter your Flowdock password: ", secret: true, target: &creds.Chat.Password},
		{label: "Please enter your JIRA username: ", target: &creds.Tracker.Username},
		{label: "Please enter your JIRA password: ", secret: true, target: &creds.Tracker.Password},
	}

	for _, q := range questions {
		if _, err := fmt.Fprint(p.Out, q.label); err != nil {
			return models.ServiceCredentials{}, err
		}

		if !q.secret {
			value, err := readLine()
			if err != nil {
				return models.ServiceCredentials{}, fmt.Errorf("read input: %w", err)
			}
			*q.target = strings.TrimSpace(value)
			continue
		}

		value, err := readSecret()
		if err != nil {
			return models.ServiceCredentials{}, fmt.Errorf("read input: %w", err)
		}
		*q.target = strings.TrimRight(value, "\r\n")
	}

	if !creds.Chat.Complete() || !creds.Tracker.Complete() {
		return models.ServiceCredentials{}, errors.New("all credential values are required")
	}

	return creds, nil
}
