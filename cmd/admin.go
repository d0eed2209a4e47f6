package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-petr/campus-wallet/internal/directoryservice"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/profilerepo"
	"github.com/go-petr/campus-wallet/pkg/configpkg"
	"github.com/go-petr/campus-wallet/pkg/tokenpkg"
)

func profilesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "manage directory profiles",
	}

	var id, name, role string

	add := &cobra.Command{
		Use:   "add",
		Short: "register a profile in the postgres directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.config.StoreDriver != configpkg.StorePostgres {
				return errors.New("profiles add needs STORE_DRIVER=postgres, use serve --admin with the memory store")
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			dir := directoryservice.New(profilerepo.NewRepoPGS(db), a.config.ReservedAccounts())

			ctx := a.logger.WithContext(cmd.Context())

			p, err := dir.Seed(ctx, domain.Identity{ID: id, Name: name, Role: domain.Role(role)})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.ID, p.Name, p.Role)

			return nil
		},
	}

	add.Flags().StringVar(&id, "id", "", "account identifier")
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&role, "role", string(domain.RoleStudent), "directory role")
	_ = add.MarkFlagRequired("id")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)

	return cmd
}

func tokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "manage access tokens",
	}

	var (
		accountID string
		role      string
		duration  time.Duration
	)

	issue := &cobra.Command{
		Use:   "issue",
		Short: "print a bearer token for an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !domain.Role(role).IsValid() {
				return fmt.Errorf("unsupported role %q", role)
			}

			if duration == 0 {
				duration = a.config.AccessTokenDuration
			}

			maker, err := tokenpkg.NewMaker(a.config.TokenType, a.config.TokenSymmetricKey)
			if err != nil {
				return err
			}

			token, payload, err := maker.CreateToken(accountID, role, duration)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			a.logger.Info().Str("account_id", payload.AccountID).Time("expires_at", payload.ExpiredAt).Msg("token issued")

			return nil
		},
	}

	issue.Flags().StringVar(&accountID, "account", "", "account identifier")
	issue.Flags().StringVar(&role, "role", string(domain.RoleStudent), "role carried by the token")
	issue.Flags().DurationVar(&duration, "duration", 0, "token lifetime, defaults to ACCESS_TOKEN_DURATION")
	_ = issue.MarkFlagRequired("account")

	cmd.AddCommand(issue)

	return cmd
}
