// internal/cli/root.go
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type appKeyType struct{}

var appKey = appKeyType{}

var rootCmd = &cobra.Command{
	Use:   "atsctl",
	Short: "Analyze and optimize resumes against job descriptions",
	Long: `atsctl scores resumes against job descriptions using a remote ATS
backend, keeps the latest analysis recoverable across invocations, and
rewrites resumes around the keywords they are missing.`,
	SilenceUsage: true,
}

// Execute attaches the app container to the context and runs the CLI.
// Every invocation is recorded as one operation.
func Execute(ctx context.Context, app *App) error {
	ctx = context.WithValue(ctx, appKey, app)
	rootCmd.SetContext(ctx)

	start := time.Now()
	cmd, err := rootCmd.ExecuteContextC(ctx)

	if app.Obs != nil {
		operation := "atsctl"
		if cmd != nil {
			operation = cmd.CommandPath()
		}
		status := "success"
		if err != nil {
			status = "error"
		}
		app.Obs.RecordOperation(ctx, operation, status)
		app.Obs.RecordOperationDuration(ctx, operation, time.Since(start))
	}
	return err
}

func appFromContext(ctx context.Context) *App {
	if app, ok := ctx.Value(appKey).(*App); ok {
		return app
	}
	panic("app not found in context")
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}
