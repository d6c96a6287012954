package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/orgspace-systems/orgspace-stack/cli/internal/config"
	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/session"
)

// now is replaced in tests.
var now = time.Now

func profileName(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("profile")
	return cfg.ProfileName(name)
}

func apiURL(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		return u
	}
	return cfg.APIURLFor(profileName(cmd))
}

func outputFormat(cmd *cobra.Command) (output.Format, error) {
	f, _ := cmd.Flags().GetString("output")
	if f == "" {
		f = cfg.Output
	}
	return output.ParseFormat(f)
}

func newService(cmd *cobra.Command) *actions.Service {
	gw := gateway.NewClient(apiURL(cmd),
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithUserAgent("orgctl/"+Version),
	)
	return actions.NewService(gw, actions.Config{PublicURL: cfg.PublicURL})
}

func locale() language.Tag {
	return language.Make(cfg.Locale)
}

// env is what a signed-in command works with.
type env struct {
	ctx    context.Context
	svc    *actions.Service
	sess   *session.Session
	format output.Format
}

// signedIn resolves the active session. ORGCTL_TOKEN takes precedence over
// the stored profile; its identity comes from the token claims, completed
// from the caller's profile when the API allows it.
func signedIn(cmd *cobra.Command) (*env, error) {
	format, err := outputFormat(cmd)
	if err != nil {
		return nil, err
	}
	e := &env{ctx: cmd.Context(), svc: newService(cmd), format: format}

	if cfg.Token != "" {
		claims, err := e.svc.Gateway().ParseToken(cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("%s token: %w", config.EnvPrefix, err)
		}
		e.sess = session.New(cfg.Token, claims.Actor(), now(), 0, claims.Expiry())
		if err := e.svc.RefreshActor(e.ctx, e.sess); err != nil && actions.Classify(err).Kind == actions.KindSession {
			return nil, err
		}
		return e, nil
	}

	name := profileName(cmd)
	p, err := cfg.GetProfile(name)
	if err != nil || !p.SignedIn() {
		return nil, fmt.Errorf("profile '%s': %w", name, gateway.ErrNoSession)
	}
	if p.Expired(now()) {
		return nil, fmt.Errorf("profile '%s': %w", name, session.ErrExpired)
	}
	e.sess = &session.Session{
		ID:        name,
		Token:     p.AccessToken,
		Actor:     p.Session.Record(),
		ExpiresAt: p.ExpiresAt,
	}
	return e, nil
}

// confirmer asks on the terminal unless --yes was given. Anything but an
// explicit yes declines, including end of input.
func confirmer(cmd *cobra.Command) actions.ConfirmFunc {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return actions.AlwaysConfirm
	}
	in := lineReader(cmd)
	out := cmd.ErrOrStderr()
	return func(_ context.Context, p actions.Prompt) (bool, error) {
		fmt.Fprintf(out, "%s\n%s\n%s? [y/N]: ", p.Title, p.Message, p.Confirm)
		answer, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

var stdin struct {
	src io.Reader
	r   *bufio.Reader
}

// lineReader shares one buffered reader per input stream, so consecutive
// prompts do not lose piped lines.
func lineReader(cmd *cobra.Command) *bufio.Reader {
	src := cmd.InOrStdin()
	if stdin.r == nil || stdin.src != src {
		stdin.src, stdin.r = src, bufio.NewReader(src)
	}
	return stdin.r
}

// readLine prompts for a value that was not given as a flag.
func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := lineReader(cmd).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func roleFlag(cmd *cobra.Command, name string) (records.Role, error) {
	s, _ := cmd.Flags().GetString(name)
	role, ok := records.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("unknown role %q (want ADMIN, HR, MANAGER or EMPLOYEE)", s)
	}
	return role, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}
	return t.In(loc).Format("02/01/2006 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
