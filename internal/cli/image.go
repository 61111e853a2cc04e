package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feitianbubu/aigen"
)

var (
	imageNegative string
	imageWidth    int
	imageHeight   int
	imageSteps    int
	imageSource   string
	imageStrength float64
	imageOut      string
)

var imageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate an image from a prompt, or transform --image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck
		p, err := e.provider(aigen.CapabilityTextToImage)
		if err != nil {
			return err
		}

		var req aigen.OperationRequest = aigen.TextToImageRequest{
			Prompt:         args[0],
			NegativePrompt: imageNegative,
			Width:          imageWidth,
			Height:         imageHeight,
			Steps:          imageSteps,
		}
		if imageSource != "" {
			req = aigen.ImageToImageRequest{
				Image:    aigen.ImageFile{Path: imageSource},
				Prompt:   args[0],
				Strength: imageStrength,
				Steps:    imageSteps,
			}
		}

		outcome, err := e.client.Generate(cmd.Context(), p, req)
		if err != nil {
			return err
		}
		out := outcome.(aigen.ImageOutcome)
		w := cmd.OutOrStdout()

		if imageOut != "" {
			path, err := aigen.NewFetcher(e.cfg.FetcherConfig(e.logger)).SaveImage(cmd.Context(), out, imageOut)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, path)
			return nil
		}
		switch a := out.Artifact.(type) {
		case aigen.ImageURL:
			fmt.Fprintln(w, a.URL)
		case aigen.ImageBase64:
			fmt.Fprintf(w, "base64 image (%d chars); pass --out to save it\n", len(a.Data))
		case aigen.UnrecognizedBody:
			fmt.Fprintf(w, "unrecognized response:\n%s\n", a.Raw)
		}
		return nil
	},
}

func init() {
	imageCmd.Flags().StringVar(&imageNegative, "negative", "", "negative prompt")
	imageCmd.Flags().IntVar(&imageWidth, "width", 0, "width in pixels (default 1024)")
	imageCmd.Flags().IntVar(&imageHeight, "height", 0, "height in pixels (default 1024)")
	imageCmd.Flags().IntVar(&imageSteps, "steps", 0, "inference steps (default 30)")
	imageCmd.Flags().StringVar(&imageSource, "image", "", "source image for image-to-image")
	imageCmd.Flags().Float64Var(&imageStrength, "strength", 0, "how far to move from --image, in (0,1] (default 0.75)")
	imageCmd.Flags().StringVarP(&imageOut, "out", "o", "", "directory to save the image in")
	addProviderFlag(imageCmd)
	rootCmd.AddCommand(imageCmd)
}
