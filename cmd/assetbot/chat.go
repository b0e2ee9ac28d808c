package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/assetbot"
	"github.com/aretw0/assetbot/internal/cli"
	"github.com/aretw0/assetbot/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive asset request session",
	Long:  `Reads one message per line from stdin and prints the assistant's replies. Type /exit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interrupt := cli.WatchInterrupts(cmd.Context())
		defer interrupt.Stop()
		ctx := interrupt.Context()

		app, logger, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		if metricsAddr != "" {
			srv := &http.Server{
				Addr:              metricsAddr,
				Handler:           app.Metrics.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Metrics server stopped", "addr", metricsAddr, "err", err)
				}
			}()
			defer srv.Close()
			logger.Info("Serving metrics", "addr", metricsAddr)
		}

		session, _ := cmd.Flags().GetString("session")
		identity, _ := cmd.Flags().GetString("identity")
		if identity == "" {
			identity = session
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, assetbot.Version)
		}

		err = cli.RunChat(ctx, app.Engine, cli.ChatOptions{
			SessionKey: session,
			Identity:   identity,
			In:         os.Stdin,
			Out:        os.Stdout,
			Render:     tui.NewRenderer(os.Stdout),
			Logger:     logger,
		})
		if sig := interrupt.Signal(); sig != nil {
			logger.Info("Chat interrupted", "signal", sig.String())
		}
		return err
	},
}

func init() {
	chatCmd.Flags().StringP("session", "s", "local", "Session key, e.g. the employee id")
	chatCmd.Flags().String("identity", "", "User identity recorded on the session (defaults to the session key)")
	chatCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while chatting")
	rootCmd.AddCommand(chatCmd)
}
