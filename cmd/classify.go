package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxsort/internal/classifier"
	"github.com/teemow/inboxsort/internal/email"
)

type classifyOptions struct {
	openAIKey string
	input     string
}

func newClassifyCmd(root *rootOptions) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify messages read from a file or stdin",
		Long: `Read messages as JSON, either an array of {id, from, snippet} objects or
the {"emails": [...]} document printed by "inboxsort fetch", and print
them with a category assigned by the model.

The API key is read from --openai-key or the OPENAI_API_KEY env var.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := opts.openAIKey
			if !cmd.Flags().Changed("openai-key") {
				key = os.Getenv("OPENAI_API_KEY")
			}
			if key == "" {
				return errors.New("--openai-key or OPENAI_API_KEY is required")
			}

			data, err := readInput(cmd.InOrStdin(), opts.input)
			if err != nil {
				return err
			}
			records, err := decodeRecords(data)
			if err != nil {
				return err
			}

			classified, err := newClassifier(root.cfg, nil).Classify(cmd.Context(), records, key)
			if err != nil {
				var ce *classifier.Error
				if errors.As(err, &ce) && ce.Kind == classifier.KindMalformedModelOutput {
					fmt.Fprintf(cmd.ErrOrStderr(), "raw model output:\n%s\n", ce.Raw)
				}
				return fmt.Errorf("failed to classify emails: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Classified []email.Classified `json:"classified"`
			}{Classified: classified})
		},
	}

	cmd.Flags().StringVar(&opts.openAIKey, "openai-key", "", "API key for the chat-completion service")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "Input file, or - for stdin")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// decodeRecords accepts a bare array or an object with an emails array.
func decodeRecords(data []byte) ([]email.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("input is empty")
	}

	var records []email.Record
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
		return records, nil
	}

	var doc struct {
		Emails []email.Record `json:"emails"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if doc.Emails == nil {
		return nil, errors.New("invalid input: emails array is required")
	}
	return doc.Emails, nil
}
