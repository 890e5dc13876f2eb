package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"callcenter-go/internal/apiclient"
	"callcenter-go/internal/config"
	"callcenter-go/internal/logger"
	"callcenter-go/internal/session"
	"callcenter-go/internal/types"
	"callcenter-go/internal/workflow"
)

func main() {
	_ = godotenv.Load() // loads .env
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app carries what every command needs. It is filled in by the root
// command's pre-run so flags and env are already parsed.
type app struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	cfgPath   string
	apiURL    string
	projectID int64
	asJSON    bool

	cfg    config.Config
	log    *logger.Logger
	store  session.Store
	client *apiclient.Client
	dialer workflow.Dialer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{in: bufio.NewReader(stdin), out: stdout, errOut: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", describe(err))
		return 1
	}
	return 0
}

// describe turns the errors users can act on into instructions.
func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return "not signed in: run `callcenter login --phone <phone>`"
	case errors.Is(err, apiclient.ErrUnauthorized):
		return "session expired or rejected: run `callcenter login --phone <phone>`"
	}
	return err.Error()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "callcenter",
		Short:         "Call-center client: contacts, calls, feedback and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", os.Getenv("CALLCENTER_CONFIG"), "YAML config file")
	pf.StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config)")
	pf.Int64VarP(&a.projectID, "project", "p", 0, "project id")
	pf.BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.projectsCmd(),
		a.contactsCmd(),
		a.callCmd(),
		a.workCmd(),
		a.feedbackCmd(),
		a.callsCmd(),
		a.rolesCmd(),
		a.reportCmd(),
		a.configCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.log = logger.NewTo(a.errOut, cfg.Environment, cfg.LogLevel)
	a.store = session.NewFileStore(cfg.SessionFile)
	a.client = apiclient.New(cfg.APIURL, a.store,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		apiclient.WithReadRetry(cfg.ReadRetryMaxElapsed),
		apiclient.WithLogger(a.log),
	)
	if a.dialer == nil {
		a.dialer = workflow.PrintDialer{W: a.out}
	}
	return nil
}

// identity returns the signed-in profile or session.ErrNoSession. Protected
// commands call it before touching the backend.
func (a *app) identity() (types.Profile, error) {
	sess, err := session.Require(a.store)
	if err != nil {
		return types.Profile{}, err
	}
	return sess.Profile, nil
}

func (a *app) project() (int64, error) {
	if a.projectID <= 0 {
		return 0, errors.New("--project is required")
	}
	return a.projectID, nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// prompt prints label and reads one trimmed line from stdin.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
