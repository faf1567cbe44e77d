package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shini4i/postdeplist/internal/app"
	"github.com/shini4i/postdeplist/internal/chat/flowdock"
	"github.com/shini4i/postdeplist/internal/helpers"
	"github.com/shini4i/postdeplist/internal/tracker/jira"
	"github.com/spf13/cobra"
)

const (
	defaultOrganization = "icg"
	defaultFlow         = "test"
	defaultDisplayName  = "TeamAwesome"
	defaultJiraURL      = "https://icg360.atlassian.net/"
)

const usageNotes = `
<filter id> is a JIRA filter ID from the Deploy List link.

<deploylist.txt> is any text file containing one or more deploy items,
separated by a single empty line or '--' on a line by itself. Glob
patterns such as 'deploys/**/*.txt' post every matching file in order.
`

// Options describes the collaborators and defaults required to build the CLI.
type Options struct {
	Version     string
	RunApp      func(app.Config) error
	InitLogging func(debug bool)
}

// Execute builds and runs the Cobra command tree using the supplied options.
func Execute(opts Options, args []string) error {
	root := newRootCommand(opts)

	if args != nil {
		root.SetArgs(args)
	}

	return root.Execute()
}

// newRootCommand builds the root Cobra command with its flags and env-backed defaults.
func newRootCommand(opts Options) *cobra.Command {
	flags := loadDefaults()
	var debug bool

	root := &cobra.Command{
		Use:          "postdeplist [-f | --filter <filter id>] [-l | --list <deploylist.txt>]",
		Short:        "Post a deploy list to a Flowdock flow",
		Long:         "Post a deploy list, read from a text file or a JIRA filter, to a Flowdock flow one item at a time.\n" + usageNotes,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.InitLogging != nil {
				opts.InitLogging(debug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(flags.filterID) == "" && strings.TrimSpace(flags.listFile) == "" {
				_ = cmd.Usage()
				return app.ErrNoInput
			}

			cfg, err := app.NewConfig(flags.configOptions(opts, debug)...)
			if err != nil {
				return err
			}

			if opts.RunApp == nil {
				return errors.New("no run handler provided")
			}

			return opts.RunApp(cfg)
		},
	}

	root.Version = opts.Version
	root.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug mode")
	root.Flags().StringVarP(&flags.filterID, "filter", "f", "", "JIRA filter ID")
	root.Flags().StringVarP(&flags.listFile, "list", "l", "", "Deploy list file or glob; entries separated by \"--\" or empty lines")
	root.Flags().StringVar(&flags.organization, "org", flags.organization, "Flowdock organization")
	root.Flags().StringVar(&flags.flow, "flow", flags.flow, "Flowdock flow receiving the deploy list")
	root.Flags().StringVar(&flags.displayName, "display-name", flags.displayName, "Name shown as the message author")
	root.Flags().StringVar(&flags.flowdockURL, "flowdock-url", flags.flowdockURL, fmt.Sprintf("Flowdock API base URL (default %s)", flowdock.DefaultBaseURL))
	root.Flags().StringVar(&flags.jiraURL, "jira-url", flags.jiraURL, "JIRA base URL")
	root.Flags().StringVar(&flags.deployTimeField, "deploy-time-field", flags.deployTimeField, "JIRA field holding the deploy time")
	root.Flags().IntVar(&flags.deployHour, "deploy-hour", flags.deployHour, fmt.Sprintf("Only post scheduled deploys at this hour (%d disables the check)", app.NoDeployHour))
	root.Flags().BoolVar(&flags.noHashtag, "no-hashtag", false, "Do not append the dated deploy hashtag")
	root.Flags().Float64Var(&flags.postsPerSecond, "rate", flags.postsPerSecond, "Maximum posts per second (0 for unlimited)")
	root.Flags().StringVar(&flags.credentialsFile, "config", flags.credentialsFile, "Credentials file (default is the user config directory)")

	return root
}

type rootFlags struct {
	filterID        string
	listFile        string
	organization    string
	flow            string
	displayName     string
	flowdockURL     string
	jiraURL         string
	deployTimeField string
	deployHour      int
	noHashtag       bool
	postsPerSecond  float64
	credentialsFile string
}

func loadDefaults() rootFlags {
	return rootFlags{
		organization:    helpers.GetEnv("POSTDEPLIST_ORG", defaultOrganization),
		flow:            helpers.GetEnv("POSTDEPLIST_FLOW", defaultFlow),
		displayName:     helpers.GetEnv("POSTDEPLIST_DISPLAY_NAME", defaultDisplayName),
		flowdockURL:     helpers.GetEnv("POSTDEPLIST_FLOWDOCK_URL", ""),
		jiraURL:         helpers.GetEnv("POSTDEPLIST_JIRA_URL", defaultJiraURL),
		deployTimeField: helpers.GetEnv("POSTDEPLIST_DEPLOY_TIME_FIELD", jira.DefaultDeployTimeField),
		deployHour:      helpers.GetEnvInt("POSTDEPLIST_DEPLOY_HOUR", app.DefaultDeployHour),
		postsPerSecond:  helpers.GetEnvFloat("POSTDEPLIST_RATE", 0),
		credentialsFile: helpers.GetEnv("POSTDEPLIST_CONFIG", ""),
	}
}

func (f rootFlags) configOptions(opts Options, debugEnabled bool) []app.ConfigOption {
	return []app.ConfigOption{
		app.WithFilterID(f.filterID),
		app.WithListFile(f.listFile),
		app.WithFlow(f.organization, f.flow),
		app.WithDisplayName(f.displayName),
		app.WithFlowdockURL(f.flowdockURL),
		app.WithJiraURL(f.jiraURL),
		app.WithDeployTimeField(f.deployTimeField),
		app.WithDeployHour(f.deployHour),
		app.WithHashtag(!f.noHashtag),
		app.WithPostsPerSecond(f.postsPerSecond),
		app.WithCredentialsFile(f.credentialsFile),
		app.WithDebug(debugEnabled),
		app.WithVersion(opts.Version),
	}
}
