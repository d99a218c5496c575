// Command balcaoctl is the operator CLI for a balcao deployment.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/balcao/balcao/internal/auth"
	"github.com/balcao/balcao/internal/bootstrap"
	"github.com/balcao/balcao/internal/config"
	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/service"
	"github.com/balcao/balcao/internal/store"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "balcaoctl",
		Short:        "Operator tools for the balcao point-of-sale backend",
		SilenceUsage: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment, if it exists")

	loadConfig := func() (*config.Config, error) {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
		return config.Load()
	}

	root.AddCommand(
		newGenSecretCmd(),
		newHashPasswordCmd(),
		newTokenCmd(loadConfig),
		newMigrateCmd(loadConfig),
		newSeedRootCmd(loadConfig),
	)
	return root
}

func newGenSecretCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := auth.GenerateSecret(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "bytes", auth.MinSecretLen, "random bytes before hex encoding")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its argon2id hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readSecretLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := auth.NewPasswordHasher(auth.DefaultArgon2Params).Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newTokenCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token for a user id and role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}

			issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, ttl)
			token, expiresAt, err := issuer.Issue(subject, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "user id placed in the token (required)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "user, admin or root")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newMigrateCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL tables for every entity kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.StorePostgres {
				return fmt.Errorf("migrate needs STORE_DRIVER=%s, got %q", config.StorePostgres, cfg.StoreDriver)
			}

			backend, err := bootstrap.OpenBackend(cmd.Context(), cfg, cliLogger(cmd))
			if err != nil {
				return errors.New(bootstrap.SanitizeError(err, cfg.DatabaseURL))
			}
			defer backend.Close()

			for _, kind := range model.Kinds {
				fmt.Fprintf(cmd.OutOrStdout(), "ready %s\n", store.TableName(kind))
			}
			return nil
		},
	}
}

func newSeedRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "seed-root",
		Short: "Create the first root user; the password is read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == config.StoreMemory && cfg.DataDir == "" {
				return errors.New("seed-root needs DATA_DIR or STORE_DRIVER=postgres; an in-memory store would discard the user on exit")
			}
			password, err := readSecretLine(cmd.InOrStdin())
			if err != nil {
				return err
			}

			backend, err := bootstrap.OpenBackend(cmd.Context(), cfg, cliLogger(cmd))
			if err != nil {
				return errors.New(bootstrap.SanitizeError(err, cfg.DatabaseURL))
			}
			defer backend.Close()

			raw, err := json.Marshal(service.RootAccount{Name: name, Email: email, Password: password})
			if err != nil {
				return err
			}
			user, err := service.SeedRoot(cmd.Context(), backend.Stores.Users, auth.NewPasswordHasher(auth.DefaultArgon2Params), cfg.SeedIdentity, raw)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created root user %s <%s>\n", user.ID, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name of the root user")
	cmd.Flags().StringVar(&email, "email", "", "sign-in e-mail of the root user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// cliLogger sends library logs to stderr so stdout stays machine-readable.
func cliLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func readSecretLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}
