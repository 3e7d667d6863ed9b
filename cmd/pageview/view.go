package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/pageview/cmd/pageview/internal/ui"
)

func newViewCommand(a *app) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "View a text file or a grid page in the terminal",
		Long: `Opens a full screen viewer. Drag with the mouse to pan, use the wheel or
+/- to zoom, z to toggle zoom and 0 or esc to reset.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := loadPage(args, width, height, a)
			if err != nil {
				return err
			}
			vo, err := a.cfg.ViewportOptions()
			if err != nil {
				return err
			}
			gro, err := a.cfg.GestureOptions()
			if err != nil {
				return err
			}
			interval, err := a.cfg.ViewFrameInterval()
			if err != nil {
				return err
			}
			return ui.Run(page, ui.Options{Viewport: vo, Gesture: gro, FrameInterval: interval})
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Grid page width in cells (defaults to config)")
	cmd.Flags().IntVar(&height, "height", 0, "Grid page height in cells (defaults to config)")

	return cmd
}

func loadPage(args []string, width, height int, a *app) (*ui.Page, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return ui.TextPage(string(data)), nil
	}
	if width <= 0 {
		width = a.cfg.View.ContentWidth
	}
	if height <= 0 {
		height = a.cfg.View.ContentHeight
	}
	return ui.GridPage(width, height), nil
}
