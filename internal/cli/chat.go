package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feitianbubu/aigen"
)

var (
	chatSystem      string
	chatTemperature float64
	chatMaxTokens   int
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a chat message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck
		p, err := e.provider(aigen.CapabilityChat)
		if err != nil {
			return err
		}

		req := aigen.ChatRequest{MaxTokens: chatMaxTokens}
		if chatSystem != "" {
			req.Messages = append(req.Messages, aigen.ChatMessage{Role: "system", Content: chatSystem})
		}
		req.Messages = append(req.Messages, aigen.ChatMessage{Role: "user", Content: strings.Join(args, " ")})
		if cmd.Flags().Changed("temperature") {
			req.Temperature = &chatTemperature
		}

		out, err := e.client.Chat(cmd.Context(), p, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Text)
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSystem, "system", "", "system prompt")
	chatCmd.Flags().Float64Var(&chatTemperature, "temperature", aigen.DefaultTemperature, "sampling temperature")
	chatCmd.Flags().IntVar(&chatMaxTokens, "max-tokens", 0, "reply token limit")
	addProviderFlag(chatCmd)
	rootCmd.AddCommand(chatCmd)
}
