package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/assetbot/pkg/ports"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted sessions",
	Long:  `List, inspect and remove sessions kept in the configured store. Only useful with --store redis.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		keys, err := app.Engine.Sessions(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(keys) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Sessions:")
		for _, k := range keys {
			fmt.Fprintln(out, "- "+k)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-key>",
	Short: "Print the state of a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Inspect(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-key>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var errs []error
		for _, key := range args {
			if err := app.Engine.Forget(cmd.Context(), key); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", key, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", key)
		}
		return errors.Join(errs...)
	},
}

var requestsCmd = &cobra.Command{
	Use:   "requests [session-key]",
	Short: "List completed asset requests from the SQLite ledger",
	Long:  `List completed asset requests, optionally for one session. Use the approve and reject subcommands to record the IT team's decision.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Recorder == nil {
			return errors.New("no request ledger configured (set --sqlite or ASSETBOT_SQLITE_PATH)")
		}
		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		requests, err := app.Recorder.List(cmd.Context(), key)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range requests {
			fmt.Fprintf(out, "%s  %s  %s  %-8s  %s / %s  (%s)\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.SessionKey, r.Status, r.AssetType, r.Configuration, r.Reason)
		}
		return nil
	},
}

// reviewCmd builds a subcommand of requests that sets a request's review status.
func reviewCmd(verb string, status ports.RequestStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <request-id>",
		Short: "Mark an asset request as " + string(status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Recorder == nil {
				return errors.New("no request ledger configured (set --sqlite or ASSETBOT_SQLITE_PATH)")
			}
			if err := app.Recorder.UpdateStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s %s.\n", args[0], status)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.AddCommand(reviewCmd("approve", ports.RequestApproved))
	requestsCmd.AddCommand(reviewCmd("reject", ports.RequestRejected))
}
