package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/osmwrangle/osmwrangle"
	"github.com/osmwrangle/osmwrangle/audit"
	"github.com/osmwrangle/osmwrangle/config"
	_ "github.com/osmwrangle/osmwrangle/database/sql/postgres"
	_ "github.com/osmwrangle/osmwrangle/database/sql/sqlite"
	"github.com/osmwrangle/osmwrangle/import_"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/query"
	"github.com/osmwrangle/osmwrangle/stats"
)

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Println("Available commands:")
	fmt.Println("\timport")
	fmt.Println("\taudit")
	fmt.Println("\tquery")
	fmt.Println("\tversion")
}

func Main(usage func()) {
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	if len(os.Args) <= 1 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		opts := config.ParseImport(os.Args[2:])
		if opts.Httpprofile != "" {
			stats.StartHttpPProf(opts.Httpprofile)
		}
		import_.Import(opts)
	case "audit":
		opts := config.ParseAudit(os.Args[2:])
		if opts.Httpprofile != "" {
			stats.StartHttpPProf(opts.Httpprofile)
		}
		audit.Audit(opts)
	case "query":
		opts := config.ParseQuery(os.Args[2:])
		query.Query(opts)
	case "version":
		fmt.Println(osmwrangle.Version)
		os.Exit(0)
	default:
		usage()
		log.Fatalf("[fatal] invalid command: '%s'", os.Args[1])
	}
	os.Exit(0)
}

func main() {
	Main(PrintCmds)
}
