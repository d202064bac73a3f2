package dirbatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/plan"
)

// Command names accepted by ParseCommand.
const (
	CommandFetchFiles        = "fetch_files"
	CommandBulkRename        = "bulk_rename"
	CommandRenameFiles       = "rename_files"
	CommandImageConvert      = "img_convert"
	CommandImageConvertAlias = "image_convert_resolve"
)

// Command is one of FetchFiles, BulkRename, RenameFiles or ImageConvert.
type Command interface {
	// Name returns the command's registry name
	Name() string
	command()
}

// FetchFiles describes the entries of a folder.
type FetchFiles struct {
	Folder    string
	Extension string
}

// BulkRename renames entries by replacing the first occurrence of Search.
type BulkRename struct {
	Folder    string
	Search    string
	Replace   string
	Extension string
	DryRun    bool
}

// RenameFiles renames entries by an explicit mapping.
type RenameFiles struct {
	Folder    string
	Mapping   []plan.MappingRecord
	Extension string
	DryRun    bool
}

// ImageConvert resolves where a converted image would be written.
type ImageConvert struct {
	ImagePath string
	Format    string
	OutputDir string
}

func (FetchFiles) Name() string { return CommandFetchFiles }
func (BulkRename) Name() string { return CommandBulkRename }
func (RenameFiles) Name() string { return CommandRenameFiles }
func (ImageConvert) Name() string { return CommandImageConvert }

func (FetchFiles) command() {}
func (BulkRename) command() {}
func (RenameFiles) command() {}
func (ImageConvert) command() {}

// UnknownCommandError is returned for names missing from the registry.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q, expected one of: %s", e.Name, strings.Join(CommandNames(), ", "))
}

// ArgumentError reports a malformed argument vector.
type ArgumentError struct {
	Command string
	Reason  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

type parser struct {
	usage   string
	minArgs int
	maxArgs int
	parse   func(args []string) (Command, error)
}

var registry = map[string]parser{
	CommandFetchFiles: {
		usage: "<folder> [ext]", minArgs: 1, maxArgs: 2,
		parse: func(args []string) (Command, error) {
			return FetchFiles{Folder: args[0], Extension: optionalArg(args, 1)}, nil
		},
	},
	CommandBulkRename: {
		usage: "<folder> <search> <replace> [ext]", minArgs: 3, maxArgs: 4,
		parse: func(args []string) (Command, error) {
			return BulkRename{
				Folder:    args[0],
				Search:    args[1],
				Replace:   args[2],
				Extension: optionalArg(args, 3),
			}, nil
		},
	},
	CommandRenameFiles: {
		usage: "<folder> <mapping-json> [ext]", minArgs: 2, maxArgs: 3,
		parse: func(args []string) (Command, error) {
			var mapping []plan.MappingRecord
			if err := json.Unmarshal([]byte(args[1]), &mapping); err != nil {
				return nil, &ArgumentError{
					Command: CommandRenameFiles,
					Reason:  fmt.Sprintf("invalid mapping: %v", err),
				}
			}
			return RenameFiles{Folder: args[0], Mapping: mapping, Extension: optionalArg(args, 2)}, nil
		},
	},
	CommandImageConvert: {
		usage: "<image> <format> [output-folder]", minArgs: 2, maxArgs: 3,
		parse: func(args []string) (Command, error) {
			return ImageConvert{ImagePath: args[0], Format: args[1], OutputDir: optionalArg(args, 2)}, nil
		},
	},
}

var aliases = map[string]string{
	CommandImageConvertAlias: CommandImageConvert,
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// CommandNames lists the registry's command names, aliases excluded.
func CommandNames() []string {
	return []string{CommandFetchFiles, CommandBulkRename, CommandRenameFiles, CommandImageConvert}
}

// Usage returns the argument synopsis of a command.
func Usage(name string) string {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	return registry[name].usage
}

// ParseCommand turns a command name and its arguments into a Command.
func ParseCommand(name string, args []string) (Command, error) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	p, ok := registry[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name}
	}
	if len(args) < p.minArgs || len(args) > p.maxArgs {
		return nil, &ArgumentError{
			Command: name,
			Reason:  fmt.Sprintf("expected %s, got %d arguments", p.usage, len(args)),
		}
	}
	return p.parse(args)
}

// Dispatch runs cmd. The value returned is what the command reports:
// []listing.FileMetadata for FetchFiles, true for an executed rename, the
// validated []plan.RenameOperation for a dry run and a convert.Target for
// ImageConvert.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) (interface{}, error) {
	e.logger.Debug().Str("command", cmd.Name()).Msg("dispatching command")

	switch c := cmd.(type) {
	case FetchFiles:
		return e.FetchFiles(ctx, c.Folder, c.Extension)

	case BulkRename:
		p, err := e.PlanBulkRename(ctx, c.Folder, c.Search, c.Replace, c.Extension)
		if err != nil {
			return nil, err
		}
		return e.runPlan(ctx, c.Name(), p, c.DryRun)

	case RenameFiles:
		p, err := e.PlanRenameFiles(ctx, c.Folder, c.Mapping, c.Extension)
		if err != nil {
			return nil, err
		}
		return e.runPlan(ctx, c.Name(), p, c.DryRun)

	case ImageConvert:
		return e.ResolveImageConversion(ctx, c.ImagePath, c.Format, c.OutputDir)

	default:
		return nil, &UnknownCommandError{Name: cmd.Name()}
	}
}

func (e *Engine) runPlan(ctx context.Context, command string, p *plan.RenamePlan, dryRun bool) (interface{}, error) {
	if dryRun {
		if err := e.RecordDryRun(command, p); err != nil {
			return nil, err
		}
		ops := p.Operations
		if ops == nil {
			ops = []plan.RenameOperation{}
		}
		return ops, nil
	}
	if _, err := e.Execute(ctx, command, p); err != nil {
		return nil, err
	}
	return true, nil
}
