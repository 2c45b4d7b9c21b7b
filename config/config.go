// Package config parses the command line flags and the optional JSON
// config file of all sub-commands.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type Config struct {
	CacheDir           string  `json:"cachedir"`
	Connection         string  `json:"connection"`
	MappingFile        string  `json:"mapping"`
	HTTPProfile        string  `json:"httpprofile"`
	NormalizeCacheSize int     `json:"normalize_cache_size"`
	Workers            int     `json:"workers"`
	Schemas            Schemas `json:"schemas"`
}

type Schemas struct {
	Import     string `json:"import"`
	Production string `json:"production"`
	Backup     string `json:"backup"`
}

const defaultCacheDir = "/tmp/osmwrangle"
const defaultSchemaImport = "import"
const defaultSchemaProduction = "public"
const defaultSchemaBackup = "backup"
const defaultNormalizeCacheSize = 4096

type Base struct {
	Connection  string
	CacheDir    string
	MappingFile string
	ConfigFile  string
	Httpprofile string
	Quiet       bool
	Schemas     Schemas
}

func (o *Base) updateFromConfig() (*Config, error) {
	conf := &Config{
		CacheDir: defaultCacheDir,
	}

	if o.ConfigFile != "" {
		f, err := os.Open(o.ConfigFile)
		if err != nil {
			return nil, errors.Wrap(err, "opening config")
		}
		defer f.Close()
		decoder := json.NewDecoder(f)
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(conf); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", o.ConfigFile)
		}
	}

	if conf.Schemas.Import != "" && o.Schemas.Import == defaultSchemaImport {
		o.Schemas.Import = conf.Schemas.Import
	}
	if conf.Schemas.Production != "" && o.Schemas.Production == defaultSchemaProduction {
		o.Schemas.Production = conf.Schemas.Production
	}
	if conf.Schemas.Backup != "" && o.Schemas.Backup == defaultSchemaBackup {
		o.Schemas.Backup = conf.Schemas.Backup
	}
	if o.Connection == "" {
		o.Connection = conf.Connection
	}
	if o.MappingFile == "" {
		o.MappingFile = conf.MappingFile
	}
	if o.Httpprofile == "" {
		o.Httpprofile = conf.HTTPProfile
	}
	if o.CacheDir == defaultCacheDir && conf.CacheDir != "" {
		o.CacheDir = conf.CacheDir
	}
	return conf, nil
}

func (o *Base) check() []error {
	errs := []error{}
	if o.CacheDir == "" {
		errs = append(errs, errors.New("missing cachedir"))
	}
	schemas := map[string]string{}
	for name, s := range map[string]string{
		"dbschema-import":     o.Schemas.Import,
		"dbschema-production": o.Schemas.Production,
		"dbschema-backup":     o.Schemas.Backup,
	} {
		if other, ok := schemas[s]; ok {
			errs = append(errs, errors.Errorf("-%s and -%s use the same schema '%s'", name, other, s))
		}
		schemas[s] = name
	}
	return errs
}

type Import struct {
	Base
	Overwritecache     bool
	Read               string
	Write              bool
	Validate           bool
	DeployProduction   bool
	RevertDeploy       bool
	RemoveBackup       bool
	Report             string
	NormalizeCacheSize int
	Workers            int
}

func (o *Import) check() []error {
	errs := o.Base.check()
	if o.Read == "" && !o.Write && !o.DeployProduction && !o.RevertDeploy && !o.RemoveBackup {
		errs = append(errs, errors.New("nothing to do, use -read, -write, -deployproduction, -revertdeploy or -removebackup"))
	}
	if (o.Write || o.DeployProduction || o.RevertDeploy || o.RemoveBackup) && o.Connection == "" {
		errs = append(errs, errors.New("missing connection"))
	}
	if o.NormalizeCacheSize < 0 {
		errs = append(errs, errors.New("-normalize-cache-size must not be negative"))
	}
	return errs
}

type Audit struct {
	Base
	Input   string
	GeoJSON string
	Report  string
}

type Query struct {
	Base
	Reports []string
	Limit   int
	Schema  string
}

func addBaseFlags(opts *Base, flags *flag.FlagSet) {
	flags.StringVar(&opts.Connection, "connection", "", "connection parameters")
	flags.StringVar(&opts.CacheDir, "cachedir", defaultCacheDir, "cache directory")
	flags.StringVar(&opts.MappingFile, "mapping", "", "rules file (yaml)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config (json)")
	flags.StringVar(&opts.Httpprofile, "httpprofile", "", "bind address for profile and metrics server")
	flags.BoolVar(&opts.Quiet, "quiet", false, "quiet log output")
	flags.StringVar(&opts.Schemas.Import, "dbschema-import", defaultSchemaImport, "db schema for imports")
	flags.StringVar(&opts.Schemas.Production, "dbschema-production", defaultSchemaProduction, "db schema for production")
	flags.StringVar(&opts.Schemas.Backup, "dbschema-backup", defaultSchemaBackup, "db schema for backups")
}

func usage(flags *flag.FlagSet, positional string) func() {
	return func() {
		fmt.Fprintf(flags.Output(), "Usage: %s %s [args] %s\n\n", os.Args[0], flags.Name(), positional)
		flags.PrintDefaults()
	}
}

// ParseImport parses the arguments of the import command. It exits on
// invalid arguments.
func ParseImport(args []string) Import {
	opts, flags, errs := parseImport(args)
	exitOnErrors(flags, errs)
	return opts
}

func parseImport(args []string) (Import, *flag.FlagSet, []error) {
	opts := Import{}
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	flags.Usage = usage(flags, "")
	addBaseFlags(&opts.Base, flags)
	flags.BoolVar(&opts.Overwritecache, "overwritecache", false, "overwrite existing cache")
	flags.StringVar(&opts.Read, "read", "", "read OSM file (.osm, .osm.gz, .osm.bz2, .pbf)")
	flags.BoolVar(&opts.Write, "write", false, "write cache to database")
	flags.BoolVar(&opts.Validate, "validate", false, "validate rows before writing them to the cache")
	flags.BoolVar(&opts.DeployProduction, "deployproduction", false, "deploy production")
	flags.BoolVar(&opts.RevertDeploy, "revertdeploy", false, "revert deploy to production")
	flags.BoolVar(&opts.RemoveBackup, "removebackup", false, "remove backups from deploy")
	flags.StringVar(&opts.Report, "report", "", "write audit report (json) of the read phase")
	flags.IntVar(&opts.NormalizeCacheSize, "normalize-cache-size", defaultNormalizeCacheSize, "number of memoized normalizer results, 0 to disable")
	flags.IntVar(&opts.Workers, "workers", 0, "parallel table loads, 0 for database default")

	if len(args) == 0 {
		return opts, flags, []error{errors.New("missing arguments")}
	}
	if err := flags.Parse(args); err != nil {
		return opts, flags, []error{err}
	}
	conf, err := opts.updateFromConfig()
	if err != nil {
		return opts, flags, []error{err}
	}
	if opts.NormalizeCacheSize == defaultNormalizeCacheSize && conf.NormalizeCacheSize != 0 {
		opts.NormalizeCacheSize = conf.NormalizeCacheSize
	}
	if opts.Workers == 0 {
		opts.Workers = conf.Workers
	}
	return opts, flags, opts.check()
}

// ParseAudit parses the arguments of the audit command. The OSM file is
// the only positional argument.
func ParseAudit(args []string) Audit {
	opts, flags, errs := parseAudit(args)
	exitOnErrors(flags, errs)
	return opts
}

func parseAudit(args []string) (Audit, *flag.FlagSet, []error) {
	opts := Audit{}
	flags := flag.NewFlagSet("audit", flag.ContinueOnError)
	flags.Usage = usage(flags, "file.osm")
	addBaseFlags(&opts.Base, flags)
	flags.StringVar(&opts.GeoJSON, "geojson", "", "write unresolved addresses as GeoJSON")
	flags.StringVar(&opts.Report, "report", "", "write audit report (json)")

	if err := flags.Parse(args); err != nil {
		return opts, flags, []error{err}
	}
	if _, err := opts.updateFromConfig(); err != nil {
		return opts, flags, []error{err}
	}
	errs := []error{}
	if flags.NArg() != 1 {
		errs = append(errs, errors.New("expected exactly one OSM file"))
	} else {
		opts.Input = flags.Arg(0)
	}
	return opts, flags, errs
}

// QueryReports are the names accepted by the query command.
var QueryReports = []string{"users", "cafes", "cuisines", "postcodes", "streets"}

func ParseQuery(args []string) Query {
	opts, flags, errs := parseQuery(args)
	exitOnErrors(flags, errs)
	return opts
}

func parseQuery(args []string) (Query, *flag.FlagSet, []error) {
	opts := Query{}
	flags := flag.NewFlagSet("query", flag.ContinueOnError)
	flags.Usage = usage(flags, "["+strings.Join(QueryReports, "|")+"|all ...]")
	addBaseFlags(&opts.Base, flags)
	flags.IntVar(&opts.Limit, "limit", 10, "max rows per report")
	flags.StringVar(&opts.Schema, "schema", "", "db schema to query (default production schema)")

	if err := flags.Parse(args); err != nil {
		return opts, flags, []error{err}
	}
	if _, err := opts.updateFromConfig(); err != nil {
		return opts, flags, []error{err}
	}
	if opts.Schema == "" {
		opts.Schema = opts.Schemas.Production
	}

	errs := []error{}
	if opts.Connection == "" {
		errs = append(errs, errors.New("missing connection"))
	}
	if opts.Limit <= 0 {
		errs = append(errs, errors.New("-limit must be positive"))
	}
	names := flags.Args()
	if len(names) == 0 {
		names = []string{"all"}
	}
	for _, name := range names {
		if name == "all" {
			opts.Reports = append(opts.Reports, QueryReports...)
			continue
		}
		known := false
		for _, r := range QueryReports {
			if r == name {
				known = true
				break
			}
		}
		if !known {
			errs = append(errs, errors.Errorf("unknown report '%s'", name))
			continue
		}
		opts.Reports = append(opts.Reports, name)
	}
	return opts, flags, errs
}

func exitOnErrors(flags *flag.FlagSet, errs []error) {
	if len(errs) == 0 {
		return
	}
	if len(errs) == 1 && errs[0] == flag.ErrHelp {
		os.Exit(2)
	}
	reportErrors(errs)
	flags.Usage()
	os.Exit(1)
}

func reportErrors(errs []error) {
	fmt.Fprintln(os.Stderr, "errors in config/options:")
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "\t%s\n", err)
	}
}
