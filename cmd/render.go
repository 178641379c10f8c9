package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/luukumag/article-preview/internal/preview"
)

const defaultRenderUserAgent = "facebookexternalhit/1.1"

func newRenderCmd() *cobra.Command {
	var (
		id        string
		userAgent string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Resolve one preview request and print the response",
		Long: `render runs a single request through the preview resolver against the
configured store and prints the status line, headers and body. The default
user agent is a crawler, so the full preview document is produced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			app, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			defer func() { _ = app.Close(cmd.Context()) }()

			resp := app.Resolver().Resolve(cmd.Context(), id, userAgent)
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "article id or slug")
	cmd.Flags().StringVar(&userAgent, "user-agent", defaultRenderUserAgent, "User-Agent to classify")

	return cmd
}

func printResponse(w io.Writer, resp preview.Response) error {
	if _, err := fmt.Fprintf(w, "%d %s\n", resp.Status, resp.Outcome); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range resp.Header[k] {
			if _, err := fmt.Fprintf(w, "%s: %s\n", k, v); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
		}
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", resp.Body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}
