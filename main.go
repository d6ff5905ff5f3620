package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/fioncat/gbrowse/cmd"
	"github.com/fioncat/gbrowse/handler"
	"github.com/fioncat/gbrowse/types"
	"github.com/spf13/cobra"
)

var (
	Version     = "N/A"
	BuildType   = "N/A"
	BuildCommit = "N/A"
	BuildTime   = "N/A"
)

var rootCmd = &cobra.Command{
	Use: "gbrowse",

	Short: "Browse and serve local directories over http",

	SilenceErrors: true,
	SilenceUsage:  true,

	Version: Version,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show gbrowse full version info",

	Args: cobra.ExactArgs(0),

	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Printf("gbrowse %s\n", Version)
		fmt.Printf("golang %s\n", strings.TrimPrefix(runtime.Version(), "go"))
		fmt.Println("")
		fmt.Printf("Build type:   %s\n", BuildType)
		fmt.Printf("Build target: %s-%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Printf("Commit SHA:   %s\n", BuildCommit)
		fmt.Printf("Build time:   %s\n", BuildTime)
		fmt.Println("")

		cfg, err := types.LoadConfig()
		if err != nil {
			return err
		}

		configPath := cfg.Path
		if configPath == "" {
			configPath = "(none, using defaults)"
		}
		fmt.Printf("Config path: %s\n", configPath)
		fmt.Printf("Base path:   %s\n", cfg.BaseDir)
		fmt.Printf("Handlers:    %s\n", strings.Join(handler.KindNames(), ", "))

		return nil
	},
}

func main() {
	rootCmd.AddCommand(cmd.Serve())
	rootCmd.AddCommand(cmd.Stop())
	rootCmd.AddCommand(cmd.Ls())
	rootCmd.AddCommand(cmd.Resolve())
	rootCmd.AddCommand(cmd.Stats())
	rootCmd.AddCommand(cmd.Passwd())
	rootCmd.AddCommand(cmd.Logs())

	rootCmd.AddCommand(versionCmd)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Printf("%s: %v\n", color.RedString("Error"), err)
		os.Exit(1)
	}
}
