package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/fioncat/gbrowse/types"
	"github.com/spf13/cobra"
)

func Logs() *cobra.Command {
	var lo logsOptions
	cmd := &cobra.Command{
		Use:   "logs [-f] [-n NUM] [--all]",
		Short: "Show server logs",

		Args: cobra.ExactArgs(0),

		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := types.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return lo.run(cfg.LogFile)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&lo.all, "all", "a", false, "Print all logs")
	flags.BoolVarP(&lo.follow, "follow", "f", false, "Follow expand output")
	flags.IntVarP(&lo.number, "num", "n", 0, "tail number lines")

	return cmd
}

type logsOptions struct {
	all    bool
	follow bool
	number int
}

func (lo *logsOptions) run(logPath string) error {
	_, err := os.Stat(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no log file %q, the server has never been started", logPath)
		}
		return err
	}

	if lo.all {
		var file *os.File
		file, err = os.Open(logPath)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer file.Close()

		_, err = io.Copy(os.Stdout, file)
		if err != nil {
			return fmt.Errorf("read log file: %w", err)
		}

		return nil
	}

	var args []string
	if lo.follow {
		args = append(args, "-f")
	}
	if lo.number > 0 {
		args = append(args, "-n", fmt.Sprint(lo.number))
	}
	args = append(args, logPath)
	cmd := exec.Command("tail", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("tail command exited: %w", err)
	}

	return nil
}
