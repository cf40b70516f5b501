package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxsort/internal/email"
)

type fetchOptions struct {
	accessToken string
	count       int64
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the most recent Gmail messages as JSON",
		Long: `Fetch the id, sender and snippet of the most recent messages in the
mailbox that the access token belongs to, and print them as JSON.

The output can be piped into "inboxsort classify --input -".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.accessToken == "" {
				return errors.New("--access-token is required")
			}

			count := root.cfg.Gmail.DefaultCount
			if cmd.Flags().Changed("count") {
				if opts.count <= 0 {
					return errors.New("--count must be a positive integer")
				}
				count = opts.count
			}

			records, err := newFetcher(root.cfg, nil).Fetch(cmd.Context(), opts.accessToken, count)
			if err != nil {
				return fmt.Errorf("failed to fetch emails: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Emails []email.Record `json:"emails"`
			}{Emails: records})
		},
	}

	cmd.Flags().StringVar(&opts.accessToken, "access-token", "", "Google OAuth access token with the gmail.readonly scope")
	cmd.Flags().Int64Var(&opts.count, "count", 15, "Number of messages to fetch. Can also use DEFAULT_FETCH_COUNT env var.")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
