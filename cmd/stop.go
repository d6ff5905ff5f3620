package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/fioncat/gbrowse/osutils"
	"github.com/fioncat/gbrowse/types"
	"github.com/spf13/cobra"
)

const (
	waitServerStopTimeout  = time.Second * 15
	waitServerStopInterval = time.Millisecond * 100
)

func Stop() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running gbrowse server",

		Args: cobra.ExactArgs(0),

		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := types.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			pid, err := osutils.ReadPidFile(cfg.PidFile)
			if err != nil {
				return err
			}
			if !osutils.ProcessAlive(pid) {
				// Left over by a killed server.
				err = os.Remove(cfg.PidFile)
				if err != nil {
					return fmt.Errorf("remove stale pid file: %w", err)
				}
				return fmt.Errorf("server with pid %d is not running, removed stale pid file", pid)
			}

			err = syscall.Kill(pid, syscall.SIGTERM)
			if err != nil {
				return fmt.Errorf("send stop signal to %d: %w", pid, err)
			}

			waitTicker := time.NewTicker(waitServerStopInterval)
			defer waitTicker.Stop()
			waitTimeoutTimer := time.NewTimer(waitServerStopTimeout)
			defer waitTimeoutTimer.Stop()

			for {
				select {
				case <-waitTicker.C:
					_, err = osutils.ReadPidFile(cfg.PidFile)
					if errors.Is(err, osutils.ErrPidFileNotFound) || !osutils.ProcessAlive(pid) {
						fmt.Printf("Stopped gbrowse server %d\n", pid)
						return nil
					}

				case <-waitTimeoutTimer.C:
					return fmt.Errorf("wait server %d stop timeout after %v, please check log file: %q", pid, waitServerStopTimeout, cfg.LogFile)
				}
			}
		},
	}
}
