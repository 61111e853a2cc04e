package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feitianbubu/aigen"
)

var (
	videoImage    string
	videoDuration int
	videoWait     bool
	videoOut      string
)

var videoCmd = &cobra.Command{
	Use:   "video [prompt]",
	Short: "Start a video job from a prompt, an --image, or both",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.logger.Sync() //nolint:errcheck
		p, err := e.provider(aigen.CapabilityVideo)
		if err != nil {
			return err
		}

		var prompt string
		if len(args) > 0 {
			prompt = args[0]
		}
		out, job, err := e.client.GenerateVideo(cmd.Context(), p, aigen.VideoRequest{
			Input:    videoInput(prompt, videoImage),
			Duration: videoDuration,
		})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		if job == nil || !videoWait {
			fmt.Fprintf(w, "status: %s\n", out.Status)
			if out.VideoURL != "" {
				fmt.Fprintf(w, "video: %s\n", out.VideoURL)
			}
			if out.TaskID != "" {
				fmt.Fprintf(w, "task: %s\n", out.TaskID)
			}
			if out.StatusURL != "" {
				fmt.Fprintf(w, "poll: %s\n", out.StatusURL)
			}
			return nil
		}

		pollCfg := e.cfg.PollerConfig(e.logger)
		if videoOut != "" {
			pollCfg.DownloadDir = videoOut
		}
		pollCfg.OnProgress = func(pr aigen.Progress) {
			if pr.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] check failed: %v\n", pr.Attempt, pr.MaxAttempts, pr.Err)
				return
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", pr.Attempt, pr.MaxAttempts, pr.Status)
		}
		poller := aigen.NewPoller(e.client, aigen.NewFetcher(e.cfg.FetcherConfig(e.logger)), pollCfg)

		res, err := poller.Poll(cmd.Context(), *job)
		if err != nil {
			return err
		}
		switch res.State {
		case aigen.PollCompleted:
			fmt.Fprintf(w, "video: %s\n", res.Outcome.VideoURL)
			if res.Path != "" {
				fmt.Fprintf(w, "saved: %s\n", res.Path)
			}
			return nil
		case aigen.PollFailed:
			return fmt.Errorf("video job %s failed", job.TaskID)
		default:
			return fmt.Errorf("video job %s still %s after %d checks", job.TaskID, res.Outcome.Status, res.Attempts)
		}
	},
}

func videoInput(prompt, image string) aigen.VideoInput {
	switch {
	case image == "":
		return aigen.PromptOnly{Prompt: prompt}
	case prompt == "":
		return aigen.ImageOnly{Image: aigen.ImageFile{Path: image}}
	}
	return aigen.PromptAndImage{Prompt: prompt, Image: aigen.ImageFile{Path: image}}
}

func init() {
	videoCmd.Flags().StringVar(&videoImage, "image", "", "source image")
	videoCmd.Flags().IntVar(&videoDuration, "duration", aigen.DefaultVideoDuration, "length in seconds")
	videoCmd.Flags().BoolVarP(&videoWait, "wait", "w", false, "poll until the job finishes")
	videoCmd.Flags().StringVarP(&videoOut, "out", "o", "", "directory to download the finished video to")
	addProviderFlag(videoCmd)
	rootCmd.AddCommand(videoCmd)
}
