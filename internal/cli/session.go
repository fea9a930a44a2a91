package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/applytrack/applytrack/internal/errors"
	"github.com/applytrack/applytrack/internal/session"
)

var (
	loginEmail    string
	loginPassword string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Log in and manage the stored token",
}

var sessionLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Long: `Log in with email and password and store the returned token.

When --password is omitted it is read from the first line of stdin:
  echo "$PASSWORD" | applytrack session login --email me@example.com`,
	Args: cobra.NoArgs,
	RunE: runSessionLogin,
}

var sessionLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	RunE:  runSessionLogout,
}

var sessionWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who the current token belongs to",
	Args:  cobra.NoArgs,
	RunE:  runSessionWhoami,
}

var sessionSetTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Store a token obtained elsewhere",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionSetToken,
}

func init() {
	sessionLoginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	sessionLoginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (read from stdin when empty)")

	sessionCmd.AddCommand(sessionLoginCmd)
	sessionCmd.AddCommand(sessionLogoutCmd)
	sessionCmd.AddCommand(sessionWhoamiCmd)
	sessionCmd.AddCommand(sessionSetTokenCmd)
	rootCmd.AddCommand(sessionCmd)
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", apperrors.IOWrap(err, "cli.readPassword", "failed to read password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runSessionLogin(cmd *cobra.Command, args []string) error {
	const op = "cli.login"

	if strings.TrimSpace(loginEmail) == "" {
		return apperrors.Validation(op, "--email is required")
	}
	password := loginPassword
	if password == "" {
		var err error
		if password, err = readPassword(cmd.InOrStdin()); err != nil {
			return err
		}
	}
	if password == "" {
		return apperrors.Validation(op, "password is required")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	auth := a.Authenticator()
	if auth == nil {
		return apperrors.Config(op, "login needs repository.mode api; in-memory data has no accounts")
	}

	token, err := auth.Login(cmd.Context(), loginEmail, password)
	if err != nil {
		return err
	}
	masker.AddSecret(token)
	if err := a.TokenStore().Save(token); err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), "Logged in as "+loginEmail)
	return nil
}

func runSessionLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	if err := a.TokenStore().Remove(); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runSessionSetToken(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	token := strings.TrimSpace(args[0])
	masker.AddSecret(token)
	if err := a.TokenStore().Save(token); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Token stored")
	return nil
}

// WhoamiOutput describes the current session.
type WhoamiOutput struct {
	LoggedIn  bool       `json:"logged_in" yaml:"logged_in" toml:"logged_in"`
	Opaque    bool       `json:"opaque,omitempty" yaml:"opaque,omitempty" toml:"opaque,omitempty"`
	UserID    string     `json:"user_id,omitempty" yaml:"user_id,omitempty" toml:"user_id,omitempty"`
	Email     string     `json:"email,omitempty" yaml:"email,omitempty" toml:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty" toml:"expires_at,omitempty"`
	Expired   bool       `json:"expired,omitempty" yaml:"expired,omitempty" toml:"expired,omitempty"`
}

func runSessionWhoami(cmd *cobra.Command, args []string) error {
	token := tokenFlag
	if token == "" {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		if token, err = a.TokenStore().Get(); err != nil {
			return err
		}
	}

	out := whoami(token, time.Now())
	return render(cmd, out, func(w io.Writer) {
		switch {
		case !out.LoggedIn:
			printWarning(w, "Not logged in. Run `applytrack session login`.")
		case out.Opaque:
			printInfo(w, "A token is stored but it is not a JWT; its owner is unknown.")
		default:
			printTitle(w, out.UserID)
			if out.Email != "" {
				fmt.Fprintf(w, "  Email:   %s\n", out.Email)
			}
			if out.ExpiresAt != nil {
				fmt.Fprintf(w, "  Expires: %s\n", out.ExpiresAt.Local().Format(time.RFC1123))
			}
			if out.Expired {
				printWarning(w, "The session has expired.")
			}
		}
	})
}

func whoami(token string, now time.Time) WhoamiOutput {
	if token == "" {
		return WhoamiOutput{}
	}
	claims, err := session.Inspect(token)
	if err != nil {
		return WhoamiOutput{LoggedIn: true, Opaque: true}
	}
	return WhoamiOutput{
		LoggedIn:  true,
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt,
		Expired:   claims.Expired(now),
	}
}
