package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/fioncat/gbrowse/browse"
	"github.com/spf13/cobra"
)

func Resolve() *cobra.Command {
	var showJson bool
	cmd := &cobra.Command{
		Use:   "resolve PATH [--json]",
		Short: "Show which mount serves a request path and how",

		Args: cobra.ExactArgs(1),
	}
	buildCommand(cmd, func(opts *Options, args []string) error {
		return runResolve(opts, args[0], showJson)
	})

	cmd.Flags().BoolVarP(&showJson, "json", "J", false, "Show json output")

	return cmd
}

type resolveResult struct {
	Kind    string `json:"kind"`
	RelPath string `json:"relPath"`
	Root    string `json:"root,omitempty"`
	Path    string `json:"path,omitempty"`
	Size    int64  `json:"size"`
	Handler string `json:"handler,omitempty"`
}

func runResolve(opts *Options, path string, showJson bool) error {
	ent, err := opts.Resolver.Resolve(path)
	if err != nil {
		return err
	}

	result := &resolveResult{
		Kind:    ent.Kind.String(),
		RelPath: ent.RelPath,
		Root:    ent.Root,
		Path:    ent.Path,
		Size:    ent.Size,
	}
	if ent.Kind == browse.KindFile {
		result.Handler = opts.Registry.Lookup(ent.Name()).String()
	}

	if showJson {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("Marshal json result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if !ent.Found() {
		fmt.Printf("%s: %q\n", color.RedString("Not found"), path)
		return nil
	}

	fmt.Printf("Kind:     %s\n", result.Kind)
	fmt.Printf("Root:     %s\n", result.Root)
	fmt.Printf("Path:     %s\n", result.Path)
	fmt.Printf("Relative: /%s\n", result.RelPath)
	if ent.Kind == browse.KindFile {
		fmt.Printf("Size:     %s (%s)\n", browse.FormatSize(ent.Size), humanize.Comma(ent.Size))
		fmt.Printf("Handler:  %s\n", color.GreenString(result.Handler))
	}
	fmt.Printf("Modified: %s (%s)\n", browse.FormatTime(ent.ModTime), browse.RelativeTime(ent.ModTime))
	return nil
}
