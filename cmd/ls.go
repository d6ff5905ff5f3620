package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/fioncat/gbrowse/browse"
	"github.com/fioncat/gbrowse/osutils"
	"github.com/spf13/cobra"
)

func Ls() *cobra.Command {
	var lo lsOptions
	cmd := &cobra.Command{
		Use:   "ls [PATH] [--desc] [--files-first] [--json]",
		Short: "List a directory the way the server shows it",

		Args: cobra.MaximumNArgs(1),
	}
	buildCommand(cmd, lo.run)

	flags := cmd.Flags()
	flags.BoolVarP(&lo.desc, "desc", "d", false, "Sort in descending order")
	flags.BoolVarP(&lo.filesFirst, "files-first", "f", false, "Show files before directories")
	flags.BoolVarP(&lo.showJson, "json", "J", false, "Show json output")

	return cmd
}

type lsOptions struct {
	desc       bool
	filesFirst bool
	showJson   bool
}

func (lo *lsOptions) run(opts *Options, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	dir, err := opts.Resolver.Resolve(path)
	if err != nil {
		return err
	}
	if !dir.Found() {
		return fmt.Errorf("could not find %q", path)
	}

	entries, err := browse.NewLister(opts.Resolver.BrowseRoot()).List(dir)
	if err != nil {
		return err
	}
	entries = browse.Sort(entries, !lo.filesFirst, !lo.desc)
	opts.Registry.Annotate(entries)

	if lo.showJson {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("Marshal json entries: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	rows := make([][]string, len(entries))
	for i, ent := range entries {
		name := ent.Name
		kind := "dir"
		if ent.IsFile {
			kind = opts.Registry.Lookup(ent.Name).String()
		} else {
			name = color.BlueString(name)
		}
		rows[i] = []string{
			name,
			ent.SizeFormatted,
			browse.FormatTime(ent.ModifiedAt),
			kind,
		}
	}

	osutils.ShowTable([]string{"Name", "Size", "Modified", "Handler"}, rows)
	return nil
}
