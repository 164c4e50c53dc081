package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	"github.com/starford/quill/internal/collection"
)

func build(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := internal.Build(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	printSummary(os.Stdout, snap)

	if cmd.Bool("strict") && len(snap.Failures()) > 0 {
		return fmt.Errorf("%d post(s) failed to build", len(snap.Failures()))
	}
	return nil
}

func printSummary(w io.Writer, snap *collection.Snapshot) {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldRed := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	yes := true
	published := len(snap.Posts(&yes))
	fmt.Fprintf(w, "%s %d posts (%d published, %d drafts) %s\n",
		boldGreen("built"), snap.Len(), published, snap.Len()-published, faint(snap.ID))

	for _, p := range snap.Posts(nil) {
		for _, warn := range p.Warnings {
			fmt.Fprintf(w, "  %s %s: %s\n", yellow("warn"), p.Metadata.Slug, warn.Message)
		}
	}
	for slug, paths := range snap.Duplicates() {
		fmt.Fprintf(w, "  %s duplicate slug %q in %d files\n", yellow("warn"), slug, len(paths))
	}
	for _, f := range snap.Failures() {
		fmt.Fprintf(w, "  %s %s: %v\n", boldRed("fail"), f.Path, f.Err)
	}
}
