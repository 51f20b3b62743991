package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "captool",
		Short:        "Generate timed captions and an After Effects script from spoken media",
		SilenceUsage: true,
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "", "Config file (YAML)")
	root.PersistentFlags().String("out", "", "Output directory")
	root.PersistentFlags().String("style", "", "Style preset: classic, bold, minimal")
	root.PersistentFlags().String("position", "", "Position preset: bottom, center, top")
	root.PersistentFlags().String("tier", "", "Billing tier: free, pro, studio")

	runCmd := &cobra.Command{
		Use:   "run <input>",
		Short: "Caption one media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, args[0])
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and caption new media as it appears",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir)
		},
	}

	root.AddCommand(runCmd, watchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
