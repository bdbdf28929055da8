package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/iho/gofinance/internal/infrastructure/config"
	"github.com/iho/gofinance/internal/infrastructure/postgres"
)

type options struct {
	baseURL string
	userID  string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "gofinance-cli",
		Short:         "GoFinance CLI tool",
		Long:          `A command line interface for the GoFinance API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the GoFinance API")
	rootCmd.PersistentFlags().StringVar(&opts.userID, "user", os.Getenv("GOFINANCE_USER_ID"), "User ID sent as X-User-ID")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(goalCmd(opts), budgetCmd(opts), migrateCmd())
	return rootCmd
}

func goalCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Savings goal operations",
	}

	var (
		description string
		target      string
		currency    string
		initial     string
		due         string
	)
	createCmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"title": args[0]}
			if description != "" {
				body["description"] = description
			}
			if target != "" {
				body["target_amount"] = target
			}
			if currency != "" {
				body["currency"] = currency
			}
			if initial != "" {
				body["initial_amount"] = initial
			}
			if due != "" {
				dueDate, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid --due, expected YYYY-MM-DD: %w", err)
				}
				body["due_date"] = dueDate
			}
			return newAPIClient(opts).do(cmd, http.MethodPost, "/api/v1/goals", body)
		},
	}
	createCmd.Flags().StringVar(&description, "description", "", "Goal description")
	createCmd.Flags().StringVar(&target, "target", "", "Target amount")
	createCmd.Flags().StringVar(&currency, "currency", "", "Currency code")
	createCmd.Flags().StringVar(&initial, "initial", "", "Opening balance")
	createCmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient(opts).do(cmd, http.MethodGet, "/api/v1/goals"+pageQuery(limit, offset), nil)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	getCmd := &cobra.Command{
		Use:   "get <goal-id>",
		Short: "Show a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient(opts).do(cmd, http.MethodGet, goalPath(args[0]), nil)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <goal-id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient(opts).do(cmd, http.MethodDelete, goalPath(args[0]), nil)
		},
	}

	var entryLimit, entryOffset int
	entriesCmd := &cobra.Command{
		Use:   "entries <goal-id>",
		Short: "List ledger entries of a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := goalPath(args[0]) + "/entries" + pageQuery(entryLimit, entryOffset)
			return newAPIClient(opts).do(cmd, http.MethodGet, path, nil)
		},
	}
	entriesCmd.Flags().IntVar(&entryLimit, "limit", 20, "Page size")
	entriesCmd.Flags().IntVar(&entryOffset, "offset", 0, "Page offset")

	var eventLimit, eventOffset int
	eventsCmd := &cobra.Command{
		Use:   "events <goal-id>",
		Short: "List domain events recorded for a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := goalPath(args[0]) + "/events" + pageQuery(eventLimit, eventOffset)
			return newAPIClient(opts).do(cmd, http.MethodGet, path, nil)
		},
	}
	eventsCmd.Flags().IntVar(&eventLimit, "limit", 20, "Page size")
	eventsCmd.Flags().IntVar(&eventOffset, "offset", 0, "Page offset")

	cmd.AddCommand(
		createCmd,
		listCmd,
		getCmd,
		deleteCmd,
		entriesCmd,
		eventsCmd,
		movementCmd(opts, "contribute", "contributions", "Add money to a goal"),
		movementCmd(opts, "withdraw", "withdrawals", "Take money out of a goal"),
	)
	return cmd
}

func movementCmd(opts *options, use, resource, short string) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   use + " <goal-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"amount": args[1]}
			if name != "" {
				body["name"] = name
			}
			if description != "" {
				body["description"] = description
			}
			return newAPIClient(opts).do(cmd, http.MethodPost, goalPath(args[0])+"/"+resource, body)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Entry name")
	cmd.Flags().StringVar(&description, "description", "", "Entry description")
	return cmd
}

func budgetCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Budget operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "spending <budget-id>",
		Short: "Show spending against a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/budgets/" + url.PathEscape(args[0]) + "/spending"
			return newAPIClient(opts).do(cmd, http.MethodGet, path, nil)
		},
	})
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations (uses DATABASE_URL and MIGRATIONS_PATH)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if err := postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationVersion(cfg.DatabaseURL, cfg.MigrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty: %v\n", version, dirty)
				return nil
			},
		},
	)
	return cmd
}

type apiClient struct {
	baseURL string
	userID  string
	http    *http.Client
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		userID:  opts.userID,
		http:    &http.Client{Timeout: opts.timeout},
	}
}

// do sends the request and pretty prints the JSON answer to the command output.
// Mutating requests carry a fresh Idempotency-Key.
func (c *apiClient) do(cmd *cobra.Command, method, path string, body any) error {
	if c.userID == "" {
		return fmt.Errorf("user ID required: pass --user or set GOFINANCE_USER_ID")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-User-ID", c.userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch || method == http.MethodPut {
		req.Header.Set("Idempotency-Key", ulid.Make().String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	out := cmd.OutOrStdout()
	if len(respBody) == 0 {
		fmt.Fprintln(out, "ok")
		return nil
	}
	return printJSON(out, respBody)
}

func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func goalPath(id string) string {
	return "/api/v1/goals/" + url.PathEscape(id)
}

func pageQuery(limit, offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return "?" + q.Encode()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
