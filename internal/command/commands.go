package command

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/Epistemic-Technology/pdf-organizer/internal/pages"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

const (
	flagOutput = "output"
	flagDir    = "dir"
	flagPages  = "pages"
)

var errOneSource = errors.New("exactly one source document is required")

func sourceArgs(cCtx *cli.Context) []models.SourceInfo {
	infos := make([]models.SourceInfo, 0, cCtx.NArg())
	for _, arg := range cCtx.Args().Slice() {
		infos = append(infos, sources.ParseSource(arg))
	}
	return infos
}

// sizeOf formats the size of path, or "?" if it cannot be read.
func sizeOf(env *Env, path string) string {
	info, err := env.Fs.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}

func MergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "Concatenate documents, in order, into one PDF",
		ArgsUsage: "SOURCE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagOutput,
				Aliases:  []string{"o"},
				Usage:    "Destination PDF (overwritten)",
				Required: true,
			},
		},
		Action: func(cCtx *cli.Context) error {
			env, err := getEnv(cCtx)
			if err != nil {
				return err
			}
			if cCtx.NArg() == 0 {
				return errors.New("at least one source document is required")
			}

			batch, err := env.Resolver.ResolveAll(cCtx.Context, sourceArgs(cCtx))
			if err != nil {
				return err
			}
			defer batch.Cleanup()

			result, err := env.Organizer.Merge(cCtx.Context, batch.Paths(), cCtx.String(flagOutput))
			if err != nil {
				return err
			}

			fmt.Fprintf(env.Out, "%s: %d pages from %d documents (%s)\n",
				result.Destination, result.PageCount, result.SourceCount, sizeOf(env, result.Destination))
			return nil
		},
	}
}

func SplitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Write every page of a document to its own page_<n>.pdf",
		ArgsUsage: "SOURCE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagDir,
				Aliases:  []string{"d"},
				Usage:    "Output folder (created if missing)",
				Required: true,
			},
		},
		Action: func(cCtx *cli.Context) error {
			env, err := getEnv(cCtx)
			if err != nil {
				return err
			}
			if cCtx.NArg() != 1 {
				return errOneSource
			}

			staged, err := env.Resolver.Resolve(cCtx.Context, sources.ParseSource(cCtx.Args().First()))
			if err != nil {
				return err
			}
			defer staged.Cleanup()

			result, err := env.Organizer.Split(cCtx.Context, staged.Path, cCtx.String(flagDir))
			if err != nil {
				return err
			}

			for _, file := range result.Files {
				fmt.Fprintf(env.Out, "%s\t%s\n", file.Path, sizeOf(env, file.Path))
			}
			return nil
		},
	}
}

func SelectCommand() *cli.Command {
	return &cli.Command{
		Name:      "select",
		Usage:     "Write the given 0-indexed pages, in the given order, to a new PDF",
		ArgsUsage: "SOURCE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagOutput,
				Aliases:  []string{"o"},
				Usage:    "Destination PDF (overwritten)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     flagPages,
				Aliases:  []string{"p"},
				Usage:    "Page indices and ranges, e.g. 2,0,4-6",
				Required: true,
			},
		},
		Action: func(cCtx *cli.Context) error {
			env, err := getEnv(cCtx)
			if err != nil {
				return err
			}
			if cCtx.NArg() != 1 {
				return errOneSource
			}

			indices, err := pages.Parse(cCtx.String(flagPages))
			if err != nil {
				return err
			}

			staged, err := env.Resolver.Resolve(cCtx.Context, sources.ParseSource(cCtx.Args().First()))
			if err != nil {
				return err
			}
			defer staged.Cleanup()

			result, err := env.Organizer.SelectPages(cCtx.Context, staged.Path, cCtx.String(flagOutput), indices)
			if err != nil {
				return err
			}

			fmt.Fprintf(env.Out, "%s: %d of %d pages (%s)\n",
				result.Destination, result.PageCount, result.SourcePages, sizeOf(env, result.Destination))
			return nil
		},
	}
}

func ExtractImagesCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract-images",
		Usage:     "Write every embedded image of a document to p<page>_<name>.<ext>",
		ArgsUsage: "SOURCE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagDir,
				Aliases:  []string{"d"},
				Usage:    "Output folder (created if missing)",
				Required: true,
			},
		},
		Action: func(cCtx *cli.Context) error {
			env, err := getEnv(cCtx)
			if err != nil {
				return err
			}
			if cCtx.NArg() != 1 {
				return errOneSource
			}

			staged, err := env.Resolver.Resolve(cCtx.Context, sources.ParseSource(cCtx.Args().First()))
			if err != nil {
				return err
			}
			defer staged.Cleanup()

			result, err := env.Organizer.ExtractImages(cCtx.Context, staged.Path, cCtx.String(flagDir))
			for _, img := range result.Images {
				fmt.Fprintf(env.Out, "%s\t%dx%d\t%s\n", img.Path, img.Width, img.Height, humanize.Bytes(uint64(img.Size)))
			}
			return err
		},
	}
}

func PageCountCommand() *cli.Command {
	return &cli.Command{
		Name:      "page-count",
		Usage:     "Print the number of pages of each document",
		ArgsUsage: "SOURCE...",
		Action: func(cCtx *cli.Context) error {
			env, err := getEnv(cCtx)
			if err != nil {
				return err
			}
			if cCtx.NArg() == 0 {
				return errors.New("at least one source document is required")
			}

			for _, arg := range cCtx.Args().Slice() {
				staged, err := env.Resolver.Resolve(cCtx.Context, sources.ParseSource(arg))
				if err != nil {
					return err
				}
				count, err := env.Organizer.PageCount(cCtx.Context, staged.Path)
				staged.Cleanup()
				if err != nil {
					return err
				}
				fmt.Fprintf(env.Out, "%s\t%d\n", arg, count)
			}
			return nil
		},
	}
}
