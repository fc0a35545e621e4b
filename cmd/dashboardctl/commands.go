package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/queue-dashboard/internal/auth"
	"github.com/spec-kit/queue-dashboard/internal/config"
	"github.com/spec-kit/queue-dashboard/internal/domain"
	"github.com/spec-kit/queue-dashboard/internal/repository"
	"github.com/spec-kit/queue-dashboard/internal/table"
	"github.com/spec-kit/queue-dashboard/internal/view"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboardctl",
		Short:         "Operator tool for the queue dashboard",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newHashPasswordCmd(),
		newTokenCmd(),
		newQueuesCmd(),
		newUsersCmd(),
		newUserCmd(),
	)
	return root
}

func newHashPasswordCmd() *cobra.Command {
	var (
		password string
		cost     int
	)
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for AUTH_OPERATOR_PASSWORD_HASH",
		Long: `Hash the operator password with bcrypt. The password is read from
--password or, when omitted, from the first line of standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to hash (default: read from stdin)")
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with AUTH_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := auth.Role(strings.ToLower(role))
			if r != auth.RoleOperator && r != auth.RoleViewer {
				return fmt.Errorf("unknown role %q (want operator or viewer)", role)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.AccessTokenTTLMinutes
			}
			token, exp, err := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl).GenerateToken(subject, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.UTC().Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, usually an email (required)")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleViewer), "operator or viewer")
	cmd.Flags().IntVar(&ttl, "ttl-minutes", 0, "Lifetime in minutes (default: AUTH_ACCESS_TOKEN_TTL_MINUTES)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// tableFlags are shared by the table commands.
type tableFlags struct {
	file      string
	sort      string
	direction string
	page      int
	pageSize  int
	collation string
	output    string
}

func (f *tableFlags) register(cmd *cobra.Command, defaultSort table.SortKey) {
	cmd.Flags().StringVar(&f.file, "file", "testdata/queues.json", "Snapshot JSON file")
	cmd.Flags().StringVar(&f.sort, "sort", string(defaultSort), "Sort key (empty keeps snapshot order)")
	cmd.Flags().StringVar(&f.direction, "direction", string(table.Ascending), "ascending or descending")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page to print")
	cmd.Flags().IntVar(&f.pageSize, "page-size", table.DefaultPageSize, "Rows per page")
	cmd.Flags().StringVar(&f.collation, "collation", string(table.CollationEnglish), "en or binary")
	cmd.Flags().StringVarP(&f.output, "output", "o", formatTable, "table, json or yaml")
}

func (f *tableFlags) load(ctx context.Context) ([]domain.Queue, view.Options, error) {
	collation, err := table.ParseCollation(f.collation)
	if err != nil {
		return nil, view.Options{}, err
	}
	raw, err := repository.NewFileQueueSource(f.file).Snapshot(ctx)
	if err != nil {
		return nil, view.Options{}, err
	}
	queues, _ := domain.Sanitize(raw)
	return queues, view.Options{Collation: collation}, nil
}

func parseState[T any](columns table.ColumnSet[T], key, direction string) (table.SortState, error) {
	k, err := columns.ParseKey(key)
	if err != nil {
		return table.SortState{}, err
	}
	d, err := table.ParseDirection(direction)
	if err != nil {
		return table.SortState{}, err
	}
	return table.SortState{Key: k, Direction: d}, nil
}

func newQueuesCmd() *cobra.Command {
	var flags tableFlags
	cmd := &cobra.Command{
		Use:   "queues",
		Short: "Print a page of the queue table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := parseState(view.QueueColumns, flags.sort, flags.direction)
			if err != nil {
				return err
			}
			queues, opts, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			res := view.QueueTable(queues, state, table.PageState{Current: flags.page, Size: flags.pageSize}, opts)
			return renderQueues(cmd.OutOrStdout(), flags.output, res)
		},
	}
	flags.register(cmd, table.SortNone)
	return cmd
}

func newUsersCmd() *cobra.Command {
	var flags tableFlags
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Print a page of the aggregated user table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := parseState(view.UserColumns, flags.sort, flags.direction)
			if err != nil {
				return err
			}
			queues, opts, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			res := view.UserTable(queues, state, table.PageState{Current: flags.page, Size: flags.pageSize}, opts)
			return renderUsers(cmd.OutOrStdout(), flags.output, res)
		},
	}
	flags.register(cmd, view.UserSortDisplayName)
	return cmd
}

func newUserCmd() *cobra.Command {
	var flags tableFlags
	cmd := &cobra.Command{
		Use:   "user <user-id>",
		Short: "Print a user and every ticket they raised",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queues, _, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			detail, ok := view.FindUser(queues, args[0])
			if !ok {
				return fmt.Errorf("user %q not found", args[0])
			}
			return renderUserDetail(cmd.OutOrStdout(), flags.output, detail)
		},
	}
	cmd.Flags().StringVar(&flags.file, "file", "testdata/queues.json", "Snapshot JSON file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", formatTable, "table, json or yaml")
	flags.collation = string(table.CollationEnglish)
	return cmd
}
