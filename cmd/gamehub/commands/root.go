package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"game-hub/client"
	"game-hub/cmd/gamehub/output"
	"game-hub/config"
	"game-hub/logging"
)

const defaultAPIURL = "http://localhost:" + config.DefaultPort

// app is the state shared by every command of one invocation.
type app struct {
	store  client.TokenStore
	opener client.Opener

	apiURL     string
	apiKey     string
	jsonOutput bool
	verbose    bool

	api     *client.Client
	session *client.Session
	out     io.Writer
	in      *bufio.Reader
}

// Execute runs the root command
func Execute() {
	path, err := client.DefaultTokenPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	root := NewRootCmd(client.FileTokenStore{Path: path}, client.BrowserOpener)
	if err := root.Execute(); err != nil {
		output.Error(os.Stderr, "%s", client.Message(err))
		os.Exit(1)
	}
}

// NewRootCmd builds the gamehub command tree. Tokens are kept in store and
// download links are handed to opener.
func NewRootCmd(store client.TokenStore, opener client.Opener) *cobra.Command {
	a := &app{store: store, opener: opener}

	root := &cobra.Command{
		Use:   "gamehub",
		Short: "Browse, download and publish games on a game hub",
		Long: `gamehub is the command line client for a game hub.

Examples:
  gamehub list --category puzzle --sort highest-rated
  gamehub show <game-id>
  gamehub download <game-id>
  gamehub login --email ada@example.com
  gamehub upload --steam "https://store.steampowered.com/app/620/" --url https://...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.home(cmd.Context(), listOptions{})
		},
	}

	apiURL := os.Getenv("GAMEHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", apiURL, "Hub base URL (env GAMEHUB_API_URL)")
	root.PersistentFlags().StringVar(&a.apiKey, "api-key", os.Getenv("GAMEHUB_API_KEY"), "Public API key (env GAMEHUB_API_KEY)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log requests and failures to stderr")

	root.AddCommand(
		a.loginCmd(),
		a.signupCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.showCmd(),
		a.downloadCmd(),
		a.commentCmd(),
		a.uploadCmd(),
		a.profileCmd(),
		a.adminCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.in = bufio.NewReader(cmd.InOrStdin())
	if a.verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		slog.SetDefault(logging.Discard())
	}

	a.api = client.New(a.apiURL, a.apiKey)
	a.session = client.NewSession(a.api, a.store)
	if err := a.session.Init(cmd.Context()); err != nil {
		// The catalog is public; keep going and let protected commands fall back.
		slog.Warn("session restore failed", "error", err)
	}
	return nil
}

// guard resolves the view a command wants to open. When the session does not
// qualify the home listing is shown instead and ok is false.
func (a *app) guard(ctx context.Context, want client.View) (bool, error) {
	if client.Guard(want, a.session) == want {
		return true, nil
	}
	switch want {
	case client.ViewProfile:
		output.Warning(a.out, "Sign in to see your profile.")
	default:
		output.Warning(a.out, "That page is for admins only.")
	}
	return false, a.home(ctx, listOptions{})
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
