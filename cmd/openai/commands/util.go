package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// resolveAuth returns the provider of the selected context, falling back
// to the environment when no context is selected.
func resolveAuth() (*openai.AuthProvider, *cli.Context, error) {
	ctx, err := getContext()
	if err != nil {
		return nil, nil, err
	}
	if ctx == nil {
		printVerbose("No context selected, using environment")
		auth, err := openai.FromEnv()
		if err != nil {
			return nil, nil, err
		}
		return auth, nil, nil
	}
	printVerbose("Using context: %s", ctx.Name)
	auth, err := ctx.AuthProvider()
	if err != nil {
		return nil, nil, err
	}
	return auth, ctx, nil
}

// createClient creates an API client from the selected context.
func createClient() (*openai.Client, error) {
	auth, ctx, err := resolveAuth()
	if err != nil {
		return nil, err
	}
	timeout := openai.DefaultTimeout
	if ctx != nil {
		timeout = ctx.TimeoutDuration(timeout)
	}
	printVerbose("Provider: %s, timeout: %s", auth.Provider(), timeout)
	return openai.NewClient(auth,
		openai.WithTimeout(timeout),
		openai.WithLogger(logger),
	), nil
}

// defaultModel returns the context's default_model, or fallback.
func defaultModel(fallback string) string {
	ctx, err := getContext()
	if err == nil && ctx != nil {
		if m := ctx.DefaultModel(); m != "" {
			return m
		}
	}
	return fallback
}

// loadRequest loads a request from a YAML or JSON file
func loadRequest(v any) error {
	return cli.LoadRequest(inputFile, v)
}

// parseMetadata turns key=value pairs into a map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	md := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q, want key=value", p)
		}
		md[k] = v
	}
	return md, nil
}

// addListFlags registers the pagination flags read by listParams.
func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "Maximum number of items")
	cmd.Flags().String("after", "", "Cursor: return items after this ID")
	cmd.Flags().String("order", "", "Sort order: asc or desc")
}

func listParams(cmd *cobra.Command) (*openai.ListParams, error) {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, fmt.Errorf("failed to read 'limit' flag: %w", err)
	}
	after, err := cmd.Flags().GetString("after")
	if err != nil {
		return nil, fmt.Errorf("failed to read 'after' flag: %w", err)
	}
	order, err := cmd.Flags().GetString("order")
	if err != nil {
		return nil, fmt.Errorf("failed to read 'order' flag: %w", err)
	}
	if limit == 0 && after == "" && order == "" {
		return nil, nil
	}
	return &openai.ListParams{Limit: limit, After: after, Order: order}, nil
}

// printSuccessOrResult prints a confirmation, or the result itself when
// machine-readable output was requested.
func printSuccessOrResult(result any, format string, args ...any) error {
	if outputJSON || outputFile != "" {
		return outputResult(result)
	}
	cli.PrintSuccess(format, args...)
	return nil
}
