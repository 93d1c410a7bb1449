// Command fieldflow is the CLI entry point: it parses flags (and an
// optional YAML config file), builds a reader/mapper-chain/writer
// pipeline, and drives it over the named sources (or stdin).
//
// CLI shape grounded on sqldef's mysqldef.go: a jessevdk/go-flags struct
// with short/long/description tags, --config for the YAML overlay, and
// --help/--version short-circuiting before any real work happens.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/fieldflow/fieldflow/internal/config"
	"github.com/fieldflow/fieldflow/internal/csvparse"
	"github.com/fieldflow/fieldflow/internal/logging"
	"github.com/fieldflow/fieldflow/internal/mapper"
	"github.com/fieldflow/fieldflow/internal/pipeline"
	"github.com/fieldflow/fieldflow/internal/writer"
)

var version = "dev"

type options struct {
	IFS            string   `long:"ifs" description:"input field separator" default:""`
	IRS            string   `long:"irs" description:"input record separator" default:""`
	Quote          string   `long:"quote" description:"input quote character" default:""`
	ImplicitHeader bool     `long:"implicit-header" description:"treat the first line as data, not a header"`
	OutputFormat   string   `long:"output-format" description:"csv or dkvp" default:""`
	Verb           string   `long:"verb" description:"cat, rename, or fraction" default:"cat"`
	FractionFields []string `short:"f" long:"fraction-field" description:"field name for the fraction verb (repeatable)"`
	GroupByFields  []string `short:"g" long:"group-by-field" description:"group-by field name for the fraction verb (repeatable)"`
	Rename         []string `long:"rename" description:"old=new field rename for the rename verb (repeatable)"`
	Config         string   `long:"config" description:"YAML file overlaying unset flags" value-name:"file"`
	Verbose        bool     `long:"verbose" description:"human-readable development logging"`
	Version        bool     `long:"version" description:"show version and exit"`

	Positional struct {
		Files []string `positional-arg-name:"file" description:"input files (omit, or use -, for stdin)"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin *os.File, stdout *os.File) int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[options] [file...]"
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		return 1
	}

	if opts.Version {
		fmt.Println(version)
		return 0
	}

	fileCfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fieldflow: %v\n", err)
		return 1
	}

	log, err := logging.New(opts.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fieldflow: %v\n", err)
		return 1
	}
	defer log.Sync()

	cfg := csvparse.Config{
		IFS:            toBytes(config.MergeString(opts.IFS, fileCfg.IFS)),
		IRS:            toBytes(config.MergeString(opts.IRS, fileCfg.IRS)),
		Quote:          toBytes(config.MergeString(opts.Quote, fileCfg.Quote)),
		ImplicitHeader: opts.ImplicitHeader || fileCfg.ImplicitHeader,
	}

	mappers, err := buildMappers(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fieldflow: %v\n", err)
		return 1
	}

	out := buildWriter(config.MergeString(opts.OutputFormat, fileCfg.OutputFormat), stdout)

	sources := make([]pipeline.Source, 0, len(opts.Positional.Files))
	for _, f := range opts.Positional.Files {
		if f == "-" {
			f = "" // pipeline.Run reads an empty Filename from stdin
		}
		sources = append(sources, pipeline.Source{Filename: f})
	}

	mmapOpen := func(filename string, fileNum int) (pipeline.FileReader, error) {
		r := csvparse.NewMmapReader(cfg)
		if err := r.Open(filename, fileNum); err != nil {
			logging.SourceOpenFailed(log, filename, err)
			return nil, err
		}
		return r, nil
	}
	streamOpen := func(name string, fileNum int, src io.Reader) (pipeline.FileReader, error) {
		r := csvparse.NewStreamReader(cfg)
		if err := r.Open(name, fileNum, src); err != nil {
			logging.SourceOpenFailed(log, name, err)
			return nil, err
		}
		return r, nil
	}

	ok, runErr := pipeline.Run(sources, mmapOpen, streamOpen, stdin, mappers, out)
	if runErr != nil {
		var synErr *csvparse.SyntaxError
		if errors.As(runErr, &synErr) {
			logging.ParseFailed(log, synErr.File, synErr.Line, synErr)
		} else {
			fmt.Fprintf(os.Stderr, "fieldflow: %v\n", runErr)
		}
	}
	if !ok {
		return 1
	}
	return 0
}

func toBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}

func buildMappers(opts options) ([]pipeline.Mapper, error) {
	switch opts.Verb {
	case "fraction":
		if len(opts.FractionFields) == 0 {
			return nil, fmt.Errorf("the fraction verb requires at least one -f field")
		}
		return []pipeline.Mapper{mapper.NewFraction(opts.FractionFields, opts.GroupByFields)}, nil
	case "rename":
		names := make(map[string]string, len(opts.Rename))
		for _, r := range opts.Rename {
			old, new, ok := strings.Cut(r, "=")
			if !ok {
				return nil, fmt.Errorf("--rename expects old=new, got %q", r)
			}
			names[old] = new
		}
		return []pipeline.Mapper{mapper.NewRename(names)}, nil
	case "cat", "":
		return []pipeline.Mapper{mapper.NewCat("")}, nil
	default:
		return nil, fmt.Errorf("unknown verb %q", opts.Verb)
	}
}

func buildWriter(format string, stdout *os.File) pipeline.Writer {
	if format == "dkvp" {
		return writer.NewDKVP(stdout)
	}
	return writer.NewCSV(stdout)
}
