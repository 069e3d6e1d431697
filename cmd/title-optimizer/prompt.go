package main

import (
	"fmt"

	"github.com/joestump/title-optimizer/internal/llm"
	"github.com/spf13/cobra"
)

// newPromptCmd prints the messages that would be sent upstream, without calling the API.
func newPromptCmd() *cobra.Command {
	var req llm.TitleRequest
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt built for a title, without calling the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := llm.RenderPrompt(req)
			if err != nil {
				return fmt.Errorf("render prompt: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[system]\n%s\n\n[user]\n%s\n", llm.SystemPrompt, prompt)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "current product title")
	cmd.Flags().StringVar(&req.Category, "category", "", "product category")
	cmd.Flags().StringVar(&req.Keywords, "keywords", "", "target keywords, comma separated")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
