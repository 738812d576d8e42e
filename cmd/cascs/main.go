package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"cascs/internal"
	"cascs/internal/config"
	"cascs/internal/pipeline"
	"cascs/internal/source"
	"cascs/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "registry:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "existing registry file to merge with (csv|json)")
		output := fs.String("output", "", "comma-separated destination files (csv|json|xlsx)")
		url := fs.String("url", cfg.SourceURL, "publication page URL")
		prefix := fs.String("prefix", cfg.OrgIDPrefix, "org id prefix")
		aliases := fs.String("aliases", cfg.AliasFile, "id lookup csv (new_id,old_id)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*output) == "" {
			must(fmt.Errorf("--output is required"))
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		svc := pipeline.NewFetchService(cfg, source.NewClient(cfg), db)
		summary, err := svc.Run(context.Background(), pipeline.FetchOptions{
			URL:         *url,
			Prefix:      *prefix,
			AliasFile:   *aliases,
			InputPath:   *input,
			OutputPaths: splitPaths(*output),
		})
		must(err)
		fmt.Printf("fetch complete attachments=%d fetched=%d merged=%d added=%d inactive=%d\n",
			summary.Attachments, summary.Fetched, summary.Merged, summary.Added, summary.Removed)
	case "registry:match":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "registry file to scan (csv|json)")
		out := fs.String("out", "name_match.csv", "match report destination")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		byID, err := pipeline.LoadRegistry(*input)
		must(err)
		list := make([]internal.Record, 0, len(byID))
		for _, rec := range byID {
			list = append(list, rec)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].SortKey() < list[j].SortKey() })
		pairs := pipeline.MatchReport(list)
		must(pipeline.WriteMatchReport(*out, pairs))
		fmt.Printf("match report records=%d pairs=%d out=%s\n", len(list), len(pairs), *out)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to show")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		runs, err := db.ListRuns(*limit)
		must(err)
		for _, run := range runs {
			fmt.Printf("%s trace=%s attachments=%d fetched=%d merged=%d added=%d inactive=%d %dms %s\n",
				run.CreatedAt, run.TraceID, run.Attachments, run.Fetched, run.Merged, run.Added, run.Removed, run.DurationMs, run.URL)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func splitPaths(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func usage() {
	fmt.Println("usage: cascs <command>")
	fmt.Println("commands:")
	fmt.Println("  registry:fetch --input=cascs.csv --output=cascs.csv,cascs.json [--url=...] [--prefix=GB-CASC] [--aliases=cascs_id_lookup.csv]")
	fmt.Println("  registry:match --input=cascs.csv [--out=name_match.csv]")
	fmt.Println("  runs:list [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
