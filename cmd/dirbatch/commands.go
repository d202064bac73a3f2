package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch"
)

var shortHelp = map[string]string{
	dirbatch.CommandFetchFiles:   "Describe the entries of a folder as JSON",
	dirbatch.CommandBulkRename:   "Replace the first occurrence of a string in entry names",
	dirbatch.CommandRenameFiles:  "Rename entries by a JSON mapping of old to new names",
	dirbatch.CommandImageConvert: "Resolve the output path of an image conversion",
}

var longHelp = map[string]string{
	dirbatch.CommandFetchFiles: `Print a JSON array describing every direct child of the folder: filename,
size, isDirectory, isFile, birthtime, mtime and atime. The optional extension
filters by a case-sensitive suffix; a leading dot is added when missing.`,
	dirbatch.CommandBulkRename: `Rename every entry whose name contains <search>, replacing its first
occurrence with <replace>. Prints true when every rename succeeded.`,
	dirbatch.CommandRenameFiles: `Rename entries by a mapping such as '[{"old":"a.txt","new":"b.txt"}]'.
Records with an empty "new" leave their entry unchanged. Every target of the
mapping is checked, even for entries that are not in the folder. Prints true
when every rename succeeded.`,
	dirbatch.CommandImageConvert: `Check that <image> can be converted to <format> (jpeg, png or webp; svg
only converts to png) and print the input and output paths as JSON. The
output folder defaults to the image's folder. Nothing is written.`,
}

func newDispatchCmd(a *app, name string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   name + " " + dirbatch.Usage(name),
		Short: shortHelp[name],
		Long:  longHelp[name],
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := dirbatch.ParseCommand(name, args)
			if err != nil {
				return err
			}

			switch c := command.(type) {
			case dirbatch.BulkRename:
				c.DryRun = dryRun
				command = c
			case dirbatch.RenameFiles:
				c.DryRun = dryRun
				command = c
			}

			out, err := a.engine.Dispatch(cmd.Context(), command)
			if err != nil {
				return err
			}
			data, err := json.Marshal(out)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	// Everything after the folder is positional: search and replace
	// strings may start with a dash.
	cmd.Flags().SetInterspersed(false)

	switch name {
	case dirbatch.CommandBulkRename, dirbatch.CommandRenameFiles:
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and print the planned renames without renaming")
	case dirbatch.CommandImageConvert:
		cmd.Aliases = []string{dirbatch.CommandImageConvertAlias}
	}

	return cmd
}
