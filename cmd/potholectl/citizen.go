package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ompisal63/smart-pothole-system/analyze"
	"github.com/ompisal63/smart-pothole-system/submit"
)

func analyzeCmd(newEnv func() (*env, error)) *cobra.Command {
	var watchDir string

	cmd := &cobra.Command{
		Use:   "analyze [image]",
		Short: "Score a road image with the remote classifier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			task := analyze.NewTask(e.client, e.logger)

			if watchDir != "" {
				return runWatch(cmd.Context(), e, task, watchDir)
			}

			if len(args) != 1 {
				return fmt.Errorf("an image path is required unless --watch is given")
			}

			verdict, err := task.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printVerdict(args[0], verdict.IsPothole, verdict.Confidence)
			return nil
		},
	}

	cmd.Flags().StringVar(&watchDir, "watch", "", "Watch a directory and analyze new images as they appear")
	return cmd
}

func runWatch(parent context.Context, e *env, task *analyze.Task, dir string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := analyze.NewWatcher(dir, task, analyze.WithWatcherLogger(e.logger))

	go func() {
		for result := range watcher.Results() {
			if result.Err != nil {
				color.Red("%s: %v", result.Path, result.Err)
				continue
			}
			printVerdict(result.Path, result.Verdict.IsPothole, result.Verdict.Confidence)
		}
	}()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func reportCmd(newEnv func() (*env, error)) *cobra.Command {
	var (
		imagePath   string
		fullName    string
		email       string
		mobile      string
		latitude    float64
		longitude   float64
		description string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Raise a geotagged complaint for a verified pothole",
		Long: `Report runs the full citizen flow: the image is scored by the
remote classifier first, and a complaint is only registered when the
verdict confirms road damage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			wf := submit.NewWorkflow(e.client, submit.WithLogger(e.logger))
			defer wf.Close()

			if err := wf.SelectImage(imagePath); err != nil {
				return err
			}

			fmt.Println("Analyzing image…")
			if err := wf.Analyze(cmd.Context()); err != nil {
				return err
			}

			state := wf.State()
			if state.Phase == submit.PhaseRejected {
				printVerdict(imagePath, false, state.Verdict.Confidence)
				return fmt.Errorf("no significant road damage detected; complaint not raised")
			}
			printVerdict(imagePath, true, state.Verdict.Confidence)

			if err := wf.BeginDraft(); err != nil {
				return err
			}
			if err := wf.Edit(func(d *submit.Draft) {
				d.FullName = fullName
				d.Email = email
				d.Mobile = mobile
				d.Coordinate = &submit.Coordinate{Latitude: latitude, Longitude: longitude}
				d.LocationDescription = description
			}); err != nil {
				return err
			}

			fmt.Println("Registering complaint…")
			if err := wf.Submit(cmd.Context()); err != nil {
				return err
			}

			color.Green("Complaint registered: %s", wf.State().ComplaintID)
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Road image to submit (required)")
	cmd.Flags().StringVar(&fullName, "name", "", "Reporter full name")
	cmd.Flags().StringVar(&email, "email", "", "Reporter email address")
	cmd.Flags().StringVar(&mobile, "mobile", "", "Reporter mobile number (10 digits)")
	cmd.Flags().Float64Var(&latitude, "lat", 0, "Complaint latitude")
	cmd.Flags().Float64Var(&longitude, "lon", 0, "Complaint longitude")
	cmd.Flags().StringVar(&description, "description", "", "Exact location description")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func locateCmd(newEnv func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <query>",
		Short: "Look up location candidates for a free-text query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			candidates, err := e.client.SearchLocations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				fmt.Println("No matches")
				return nil
			}
			for _, c := range candidates {
				fmt.Printf("%s  (%s, %s)\n", c.DisplayName, c.Lat, c.Lon)
			}
			return nil
		},
	}
}

func printVerdict(path string, isPothole bool, confidence float64) {
	pct := int(confidence * 100)
	if isPothole {
		color.Green("%s: pothole detected (confidence %d%%)", path, pct)
	} else {
		color.Red("%s: no pothole detected (confidence %d%%)", path, pct)
	}
}
