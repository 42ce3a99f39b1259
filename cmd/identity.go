package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dtroode/authcore/internal/config"
	"github.com/dtroode/authcore/internal/credential"
	"github.com/dtroode/authcore/internal/model"
	"github.com/dtroode/authcore/internal/repository/postgres"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// NewHashPasswordCmd creates the hash-password subcommand. It prints an
// argon2id hash suitable for the identities.password_hash column.
func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from the terminal or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}

			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}

			hash, err := newHasher(cfg).Hash(password)
			if err != nil {
				return oops.Code("HASH_FAILED").Wrap(err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

// NewCreateIdentityCmd creates the create-identity subcommand.
func NewCreateIdentityCmd() *cobra.Command {
	var email, username string

	cmd := &cobra.Command{
		Use:   "create-identity",
		Short: "Create an identity with a password read from the terminal or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}

			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}

			hash, err := newHasher(cfg).Hash(password)
			if err != nil {
				return oops.Code("HASH_FAILED").Wrap(err)
			}

			db, err := postgres.NewConnection(cmd.Context(), cfg.Database.DSN)
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
			}
			defer db.Close()

			identity, err := postgres.NewIdentityRepository(db).Create(cmd.Context(), model.Identity{
				Email:        email,
				Username:     username,
				PasswordHash: hash,
			})
			if errors.Is(err, model.ErrAlreadyExists) {
				return oops.Code("IDENTITY_EXISTS").With("email", email).Errorf("identity already exists")
			}
			if err != nil {
				return oops.Code("IDENTITY_CREATE_FAILED").With("email", email).Wrap(err)
			}

			cmd.Printf("Created identity %s (%s)\n", identity.ID, identity.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newHasher(cfg *config.Config) *credential.Hasher {
	return credential.NewHasher(credential.KDFParams{
		Time:   cfg.KDF.Time,
		MemKiB: cfg.KDF.MemKiB,
		Par:    cfg.KDF.Par,
	})
}

// promptPassword reads a password without echo when stdin is a terminal and a
// single line otherwise, so the commands can be scripted.
func promptPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()

	var password string
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cmd.PrintErr("Password: ")
		b, err := readPassword(int(f.Fd()))
		cmd.PrintErrln()
		if err != nil {
			return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
		}
		password = string(b)
	} else {
		line, err := readLine(in)
		if err != nil {
			return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
		}
		password = line
	}

	if password == "" {
		return "", oops.Code("EMPTY_PASSWORD").Errorf("password cannot be empty")
	}
	return password, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
