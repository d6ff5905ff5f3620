package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fioncat/gbrowse/osutils"
	"github.com/fioncat/gbrowse/storage"
	"github.com/fioncat/gbrowse/types"
	"github.com/spf13/cobra"
)

func Stats() *cobra.Command {
	var so statsOptions
	cmd := &cobra.Command{
		Use:   "stats [PATH] [--remove] [--json]",
		Short: "Show file access statistics",

		Args: cobra.MaximumNArgs(1),

		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := types.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			stats, err := storage.OpenBolt(cfg)
			if err != nil {
				return fmt.Errorf("open stats database, the running server holds it until stopped: %w", err)
			}
			defer stats.Close()
			return so.run(stats, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&so.remove, "remove", "r", false, "Remove the stat of PATH")
	flags.BoolVarP(&so.showJson, "json", "J", false, "Show json output")

	return cmd
}

type statsOptions struct {
	remove   bool
	showJson bool
}

func (so *statsOptions) run(stats types.AccessStats, args []string) error {
	var items []*types.AccessStat
	if len(args) > 0 {
		path := args[0]
		if so.remove {
			return stats.Remove(path)
		}
		stat, err := stats.Get(path)
		if err != nil {
			if errors.Is(err, storage.ErrStatNotFound) {
				return fmt.Errorf("%q was never accessed", path)
			}
			return err
		}
		items = append(items, stat)
	} else {
		if so.remove {
			return errors.New("PATH is required to remove a stat")
		}
		var err error
		items, err = stats.List()
		if err != nil {
			return err
		}
	}

	if so.showJson {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("Marshal json items: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No access yet")
		return nil
	}

	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = item.Row()
	}
	osutils.ShowTable([]string{"Path", "Views", "Downloads", "Last Access"}, rows)
	return nil
}
