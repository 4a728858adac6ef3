// lanting compiles comment records and orig listings into an archive index.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/lanting/internal/compile"
	"github.com/phobologic/lanting/internal/config"
	"github.com/phobologic/lanting/internal/discover"
	"github.com/phobologic/lanting/internal/encode"
	"github.com/phobologic/lanting/internal/model"
	"github.com/phobologic/lanting/internal/report"
	"github.com/phobologic/lanting/internal/store"
	"github.com/phobologic/lanting/internal/toon"
)

var version = "dev"

func main() {
	_ = godotenv.Load(".env")
	if err := dispatch(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "init":
			return runInit(args[1:], stdout, stderr)
		case "check":
			return runCheck(args[1:], stdout, stderr)
		}
	}
	return run(args, stdout, stderr)
}

type options struct {
	configPath  string
	output      string
	origsDir    string
	prefix      string
	maxKeys     int
	maxFileSize int64
	format      string
	dbPath      string
	strict      bool
	top         int
	verbose     bool
	showVersion bool
}

func parseFlags(name string, args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "config file (YAML or legacy secrets.json)")
	fs.StringVar(&opts.output, "o", "", "output JSON path, - for stdout (default <archive-dir>/archives.json)")
	fs.StringVar(&opts.origsDir, "origs-dir", "", "list origs from a local directory instead of OSS")
	fs.StringVar(&opts.prefix, "prefix", "", "OSS key prefix for origs")
	fs.IntVar(&opts.maxKeys, "max-keys", 0, "maximum number of origs to list")
	fs.Int64Var(&opts.maxFileSize, "max-file-size", 0, "skip records larger than this many bytes")
	fs.StringVar(&opts.format, "format", "json", "stdout format: json (none) or toon")
	fs.StringVar(&opts.dbPath, "db", "", "also export archives to this SQLite database")
	fs.BoolVar(&opts.strict, "strict", false, "fail on duplicate archive ids")
	fs.IntVar(&opts.top, "top", 0, "facet values shown per field in toon output (0 = all)")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.BoolVar(&opts.showVersion, "V", false, "show version and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return nil, nil, err
	}
	if opts.format != "json" && opts.format != "toon" {
		return nil, nil, fmt.Errorf("unsupported format %q", opts.format)
	}
	return opts, fs, nil
}

// loadConfig merges the config file, environment and flags.
func loadConfig(opts *options, fs *flag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if fs.NArg() > 0 {
		cfg.ArchiveDir = fs.Arg(0)
	}
	if opts.output != "" {
		cfg.Output = opts.output
	}
	if opts.origsDir != "" {
		cfg.OrigsDir = opts.origsDir
	}
	if opts.prefix != "" {
		cfg.OSS.Prefix = opts.prefix
	}
	if opts.maxKeys > 0 {
		cfg.OSS.MaxKeys = opts.maxKeys
	}
	if opts.maxFileSize > 0 {
		cfg.MaxFileSize = opts.maxFileSize
	}
	if opts.dbPath != "" {
		cfg.DB = opts.dbPath
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core)
}

// newLister picks the orig source. The OSS client is built here from the
// config and handed to the lister.
func newLister(cfg config.Config) (store.Lister, string, error) {
	if cfg.OrigsDir != "" {
		return store.DirLister{Dir: cfg.OrigsDir}, "", nil
	}
	bucket, err := store.OpenBucket(cfg.OSS.EndpointURL(), cfg.OSS.AccessKeyID, cfg.OSS.AccessKeySecret, cfg.OSS.Bucket)
	if err != nil {
		return nil, "", err
	}
	return store.NewOSSLister(bucket), cfg.OSS.Prefix, nil
}

// loadSources reads both inputs up front. Either failing aborts the run.
func loadSources(ctx context.Context, cfg config.Config, log *zap.Logger) ([]model.Record, []string, error) {
	records, err := discover.Records(cfg.Comments(), cfg.MaxFileSize, log)
	if err != nil {
		return nil, nil, fmt.Errorf("loading comments: %w", err)
	}
	log.Info("loaded comments", zap.String("dir", cfg.Comments()), zap.Int("count", len(records)))

	lister, prefix, err := newLister(cfg)
	if err != nil {
		return nil, nil, err
	}
	names, err := lister.List(ctx, prefix, cfg.OSS.MaxKeys)
	if err != nil {
		return nil, nil, fmt.Errorf("listing origs: %w", err)
	}
	log.Info("listed origs", zap.Int("count", len(names)))

	return records, names, nil
}

func logReport(log *zap.Logger, r model.Report) {
	log.Info("consistency report",
		zap.Int("noOrig", len(r.NoOrig)),
		zap.Int("noComment", len(r.NoComment)),
		zap.Int("duplicates", len(r.Duplicates)))
	if len(r.NoOrig) > 0 {
		log.Warn("archives without origs", zap.Strings("ids", r.NoOrig))
	}
	if len(r.NoComment) > 0 {
		log.Warn("origs without comments", zap.Strings("names", r.NoComment))
	}
	if len(r.Duplicates) > 0 {
		log.Warn("duplicate archive ids", zap.Strings("ids", r.Duplicates))
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, fs, err := parseFlags("lanting", args, stderr)
	if err != nil {
		return err
	}
	if opts.showVersion {
		_, _ = fmt.Fprintf(stdout, "lanting %s\n", version)
		return nil
	}

	cfg, err := loadConfig(opts, fs)
	if err != nil {
		return err
	}

	log := newLogger(stderr, opts.verbose).With(zap.String("run", uuid.NewString()))
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	records, names, err := loadSources(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Compilation and the consistency check only read the inputs.
	var (
		compiled *model.Archives
		rep      model.Report
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		compiled, err = compile.Compile(records, names, compile.Options{Logger: log, Strict: opts.strict})
		return err
	})
	g.Go(func() error {
		rep = report.Check(records, names)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logReport(log, rep)

	if cfg.OutputPath() == "-" {
		data, err := encode.Marshal(compiled)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		if err := encode.WriteJSON(cfg.OutputPath(), compiled); err != nil {
			return err
		}
		log.Info("wrote archives", zap.String("path", cfg.OutputPath()))
	}

	if cfg.DB != "" {
		if err := store.Export(ctx, cfg.DB, compiled); err != nil {
			return fmt.Errorf("exporting %s: %w", cfg.DB, err)
		}
		log.Info("exported database", zap.String("path", cfg.DB))
	}

	if opts.format == "toon" {
		_, _ = fmt.Fprintln(stdout, toon.Encode(compiled, opts.top))
	}
	return nil
}

// runCheck implements `lanting check`, which prints the consistency report
// without compiling or writing anything.
func runCheck(args []string, stdout, stderr io.Writer) error {
	opts, fs, err := parseFlags("lanting check", args, stderr)
	if err != nil {
		return err
	}
	if opts.showVersion {
		_, _ = fmt.Fprintf(stdout, "lanting %s\n", version)
		return nil
	}

	cfg, err := loadConfig(opts, fs)
	if err != nil {
		return err
	}

	log := newLogger(stderr, opts.verbose).With(zap.String("run", uuid.NewString()))
	defer func() { _ = log.Sync() }()

	records, names, err := loadSources(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	rep := report.Check(records, names)
	logReport(log, rep)
	_, _ = fmt.Fprintln(stdout, toon.EncodeReport(rep))

	if opts.strict && !report.Clean(rep) {
		return fmt.Errorf("archive is inconsistent")
	}
	return nil
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-config": true, "--config": true,
	"-o": true, "--o": true,
	"-origs-dir": true, "--origs-dir": true,
	"-prefix": true, "--prefix": true,
	"-max-keys": true, "--max-keys": true,
	"-max-file-size": true, "--max-file-size": true,
	"-format": true, "--format": true,
	"-db": true, "--db": true,
	"-top": true, "--top": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 1 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
