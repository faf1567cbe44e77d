package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/op/go-logging"
	"github.com/shini4i/postdeplist/cmd/postdeplist/utils"
	"github.com/shini4i/postdeplist/internal/chat"
	"github.com/shini4i/postdeplist/internal/chat/flowdock"
	"github.com/shini4i/postdeplist/internal/credentials"
	"github.com/shini4i/postdeplist/internal/deploylist"
	"github.com/shini4i/postdeplist/internal/models"
	"github.com/shini4i/postdeplist/internal/ports"
	"github.com/shini4i/postdeplist/internal/tracker"
	"github.com/shini4i/postdeplist/internal/tracker/jira"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
)

var (
	// ErrNoInput indicates neither a filter ID nor a deploy list was supplied.
	ErrNoInput = errors.New("either a filter ID or a deploy list file is required")
	// ErrPostFailures indicates at least one entry could not be posted.
	ErrPostFailures = errors.New("some deploy entries were not posted")
)

// TrackerFactory builds the tracker client used to resolve a filter.
type TrackerFactory func(cfg Config, creds models.Credentials) (tracker.Searcher, error)

// PosterFactory builds the chat poster that receives the entries.
type PosterFactory func(cfg Config, creds models.Credentials) (chat.Poster, error)

// Dependencies aggregates runtime collaborators required by App.
type Dependencies struct {
	FS             afero.Fs
	Globber        ports.Globber
	Logger         *logging.Logger
	Credentials    credentials.Provider
	TrackerFactory TrackerFactory
	PosterFactory  PosterFactory
	Now            func() time.Time
}

// App orchestrates reading a deploy list and announcing it.
type App struct {
	cfg            Config
	fs             afero.Fs
	globber        ports.Globber
	logger         *logging.Logger
	credentials    credentials.Provider
	trackerFactory TrackerFactory
	posterFactory  PosterFactory
	now            func() time.Time
}

// New constructs an App using the supplied configuration and dependencies.
func New(cfg Config, deps Dependencies) (*App, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger must be provided")
	}
	if deps.Credentials == nil {
		return nil, errors.New("credentials provider must be provided")
	}
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Globber == nil {
		deps.Globber = utils.CustomGlobber{FS: deps.FS}
	}
	if deps.TrackerFactory == nil {
		deps.TrackerFactory = defaultTrackerFactory
	}
	if deps.PosterFactory == nil {
		deps.PosterFactory = defaultPosterFactory
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &App{
		cfg:            cfg,
		fs:             deps.FS,
		globber:        deps.Globber,
		logger:         deps.Logger,
		credentials:    deps.Credentials,
		trackerFactory: deps.TrackerFactory,
		posterFactory:  deps.PosterFactory,
		now:            deps.Now,
	}, nil
}

// Run collects the deploy entries, posts each of them and returns any terminal error.
// Every entry is attempted; ErrPostFailures is returned afterwards if any failed.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("===> Running postdeplist version [%s]", cyan(a.cfg.Version))

	creds, err := a.credentials.Credentials()
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	poster, err := a.posterFactory(a.cfg, creds.Chat)
	if err != nil {
		return err
	}
	if poster == nil {
		return errors.New("poster factory returned nil")
	}

	entries, err := a.collectEntries(ctx, creds.Tracker)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		a.logger.Info("No deploy entries found. Exiting...")
		return nil
	}

	a.logger.Infof("===> Posting %d deploy entries to [%s]", len(entries), cyan(a.cfg.Organization+"/"+a.cfg.Flow))

	announcer := Announcer{
		Log:     a.logger,
		Poster:  poster,
		Hashtag: a.hashtag(),
		Limiter: a.limiter(),
	}

	outcomes, err := announcer.Announce(ctx, entries)
	if err != nil {
		return err
	}

	if failed := CountFailures(outcomes); failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", ErrPostFailures, failed, len(outcomes))
	}

	return nil
}

// collectEntries selects exactly one producer; a filter ID takes priority over a list file.
func (a *App) collectEntries(ctx context.Context, trackerCreds models.Credentials) ([]string, error) {
	switch {
	case a.cfg.FilterID != "":
		if a.cfg.ListFile != "" {
			a.logger.Warningf("Both a filter and a deploy list were given, ignoring [%s]", yellow(a.cfg.ListFile))
		}
		return a.entriesFromTracker(ctx, trackerCreds)
	case a.cfg.ListFile != "":
		return a.entriesFromFile()
	default:
		return nil, ErrNoInput
	}
}

func (a *App) entriesFromTracker(ctx context.Context, creds models.Credentials) ([]string, error) {
	a.logger.Infof("===> Querying filter [%s]", cyan(a.cfg.FilterID))

	searcher, err := a.trackerFactory(a.cfg, creds)
	if err != nil {
		return nil, err
	}

	issues, err := searcher.Search(ctx, a.cfg.FilterID)
	if err != nil {
		return nil, fmt.Errorf("query tracker: %w", err)
	}

	entries, err := deploylist.Filter(issues, deploylist.FilterOptions{
		BaseURL: a.cfg.JiraURL,
		Today:   a.now(),
		Hour:    a.cfg.deployHour(),
	})
	if err != nil {
		return nil, fmt.Errorf("filter tracker results: %w", err)
	}

	a.logger.Debugf("▶ %d of %d issues are scheduled for today", len(entries), len(issues))

	return entries, nil
}

func (a *App) entriesFromFile() ([]string, error) {
	a.logger.Infof("===> Reading deploy list [%s]", cyan(a.cfg.ListFile))

	entries, err := deploylist.ReadFiles(a.fs, a.globber, a.cfg.ListFile)
	if err != nil {
		return nil, fmt.Errorf("read deploy list: %w", err)
	}

	return entries, nil
}

func (a *App) hashtag() string {
	if !a.cfg.Hashtag {
		return ""
	}
	return chat.DeployHashtag(a.now())
}

func (a *App) limiter() *rate.Limiter {
	if a.cfg.PostsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(a.cfg.PostsPerSecond), 1)
}

func defaultTrackerFactory(cfg Config, creds models.Credentials) (tracker.Searcher, error) {
	return jira.NewClient(jira.Config{
		BaseURL:         cfg.JiraURL,
		Credentials:     creds,
		DeployTimeField: cfg.DeployTimeField,
	})
}

func defaultPosterFactory(cfg Config, creds models.Credentials) (chat.Poster, error) {
	return flowdock.NewPoster(flowdock.Config{
		BaseURL:      cfg.FlowdockURL,
		Organization: cfg.Organization,
		Flow:         cfg.Flow,
		DisplayName:  cfg.DisplayName,
		Credentials:  creds,
	})
}
