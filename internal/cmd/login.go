package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gravitrone/quill/internal/api"
	"github.com/gravitrone/quill/internal/config"
)

// prompter reads answers line by line from in.
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{reader: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	line, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (p *prompter) require(label string) (string, error) {
	v := p.ask(label)
	if v == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	return v, nil
}

// RunInteractiveLogin prompts for credentials, exchanges them for a token
// and persists it. The base URL and timings of an existing config are kept.
func RunInteractiveLogin(ctx context.Context, in io.Reader, out io.Writer) error {
	p := newPrompter(in, out)
	username, err := p.require("username")
	if err != nil {
		return err
	}
	password, err := p.require("password")
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return err
	}
	client := api.NewClient(cfg.APIBaseURL(), "", cfg.HTTPTimeout())
	resp, err := client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cfg.Token = resp.AccessToken
	cfg.Username = username
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "logged in as %s\n", username)
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// RunRegister prompts for a new account and creates it. It does not log in.
func RunRegister(ctx context.Context, in io.Reader, out io.Writer) error {
	p := newPrompter(in, out)
	username, err := p.require("username")
	if err != nil {
		return err
	}
	email, err := p.require("email")
	if err != nil {
		return err
	}
	password, err := p.require("password")
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return err
	}
	client := api.NewClient(cfg.APIBaseURL(), "", cfg.HTTPTimeout())
	user, err := client.Register(ctx, api.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	fmt.Fprintf(out, "account %s created. run 'quill login' to sign in\n", user.Username)
	return nil
}

// PendingSaver flushes unsaved edits before the session ends.
type PendingSaver interface {
	SaveAllPending(ctx context.Context) (int, error)
}

// Logout saves pending edits, ends the server session and forgets the
// stored credential. A failed save aborts the logout so no edit is lost; a
// failed server logout is only logged since the token is dropped anyway.
func Logout(ctx context.Context, pending PendingSaver, client *api.Client, cfg *config.Config, log logrus.FieldLogger) error {
	if pending != nil {
		if _, err := pending.SaveAllPending(ctx); err != nil {
			return fmt.Errorf("save pending notes: %w", err)
		}
	}
	if client != nil && client.Authenticated() {
		if err := client.Logout(ctx); err != nil && log != nil {
			log.WithError(err).Warn("server logout failed")
		}
		client.SetToken("")
	}
	cfg.Token = ""
	cfg.Username = ""
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// LoginCmd returns the `quill login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to a notes server",
		Long: heredoc.Doc(`
			Prompts for a username and password and stores the issued token
			in ~/.quill/config. Set base_url in that file to target another
			server.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunInteractiveLogin(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// RegisterCmd returns the `quill register` command.
func RegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: heredoc.Doc(`
			Prompts for a username, email and password and creates the
			account. Sign in afterwards with 'quill login'.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunRegister(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// LogoutCmd returns the `quill logout` command.
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			if err := Logout(cmd.Context(), nil, s.client, s.cfg, s.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
