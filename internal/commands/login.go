package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/term"

	"dodo/internal/backend/googletasks"
	"dodo/internal/backend/supabase"
	"dodo/internal/config"
	"dodo/internal/exitcode"
	"dodo/internal/service"
	"dodo/internal/store"
)

func init() {
	Register(&LoginCmd{})
	Register(&SignupCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email string
	in    io.Reader
}

// SetInput sets the reader the password is read from (for testing).
func (c *LoginCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with the backend" }
func (c *LoginCmd) Usage() string     { return "dodo login [--email <address>]" }
func (c *LoginCmd) NeedsStore() bool  { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	switch cfg.Backend {
	case config.BackendSupabase:
		return passwordLogin(ctx, cfg, c.email, c.in, false, out, errOut)
	case config.BackendGoogle:
		return googleLogin(ctx, cfg, out, errOut)
	default:
		if !cfg.Quiet {
			fmt.Fprintf(out, "%s backend needs no login\n", cfg.Backend)
		}
		return exitcode.Success
	}
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	email string
	in    io.Reader
}

// SetInput sets the reader the password is read from (for testing).
func (c *SignupCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return nil }
func (c *SignupCmd) Synopsis() string  { return "Create an account on the hosted backend" }
func (c *SignupCmd) Usage() string     { return "dodo signup --email <address>" }
func (c *SignupCmd) NeedsStore() bool  { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if cfg.Backend != config.BackendSupabase {
		fmt.Fprintf(errOut, "error: signup is not supported by the %s backend\n", cfg.Backend)
		return exitcode.UserError
	}
	return passwordLogin(ctx, cfg, c.email, c.in, true, out, errOut)
}

// passwordLogin signs in (or up) with an email and a password read from in,
// then stores the session.
func passwordLogin(ctx context.Context, cfg *config.Config, email string, in io.Reader, signup bool, out, errOut io.Writer) int {
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		fmt.Fprintf(errOut, "error: supabase.url and supabase.anon_key must be set in %s/%s\n", cfg.Dir, config.ConfigFile)
		return exitcode.AuthError
	}
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Fprintln(errOut, "error: --email required")
		return exitcode.UserError
	}

	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(errOut, "Password: ")
	password, err := readPassword(in)
	fmt.Fprintln(errOut)
	if err != nil || password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	auth := supabase.NewAuth(cfg.Supabase.URL, cfg.Supabase.AnonKey, nil)
	var token *oauth2.Token
	if signup {
		token, err = auth.SignUp(ctx, email, password)
	} else {
		token, err = auth.SignIn(ctx, email, password)
	}
	switch {
	case errors.Is(err, supabase.ErrConfirmationRequired):
		if !cfg.Quiet {
			fmt.Fprintln(out, "check your inbox to confirm the address, then run: dodo login")
		}
		return exitcode.Success
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case err != nil:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if err := config.SaveToken(cfg.SessionPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func googleLogin(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
		googletasks.PrintSetupHelp(errOut, cfg.Dir)
		return exitcode.AuthError
	}

	// Check if already logged in (token exists and is valid)
	if cfg.HasCredentials() && googletasks.TokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	token, err := googletasks.Login(ctx, cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if err := config.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// readPassword reads a password without echo when r is a terminal and a
// plain line otherwise.
func readPassword(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine(r)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
