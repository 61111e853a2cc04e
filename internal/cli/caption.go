package cli

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/feitianbubu/aigen"
)

var (
	captionPrompt      string
	captionRPS         float64
	captionConcurrency int
)

var captionCmd = &cobra.Command{
	Use:   "caption <image>...",
	Short: "Describe images as generation prompts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if captionRPS <= 0 {
			return errors.Errorf("--rps must be positive, got %v", captionRPS)
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck
		p, err := e.provider(aigen.CapabilityImageToText)
		if err != nil {
			return err
		}

		limiter := rate.NewLimiter(rate.Limit(captionRPS), 1)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(captionConcurrency, 1))

		var mu sync.Mutex
		for _, path := range args {
			g.Go(func() error {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
				out, err := e.client.ImageToText(ctx, p, aigen.CaptionRequest{
					Image:  aigen.ImageFile{Path: path},
					Prompt: captionPrompt,
				})
				if err != nil {
					e.logger.Error("caption failed", zap.String("image", path), zap.Error(err))
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n\n", path, out.Text)
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	captionCmd.Flags().StringVar(&captionPrompt, "prompt", "", "instruction sent with each image")
	captionCmd.Flags().Float64Var(&captionRPS, "rps", 1, "requests per second")
	captionCmd.Flags().IntVar(&captionConcurrency, "concurrency", 4, "requests in flight")
	addProviderFlag(captionCmd)
	rootCmd.AddCommand(captionCmd)
}
