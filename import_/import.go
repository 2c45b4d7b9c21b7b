/*
Package import_ provides the import sub command. An import reads an OSM
file into the CSV row cache (-read), loads the cache into the database
(-write) and rotates the import tables into production.
*/
package import_

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/cache"
	"github.com/osmwrangle/osmwrangle/config"
	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/mapping"
	"github.com/osmwrangle/osmwrangle/normalize"
	"github.com/osmwrangle/osmwrangle/stats"
)

func Import(opts config.Import) {
	if opts.Quiet {
		log.SetQuiet(true)
	}

	if (opts.Write || opts.Read != "") && (opts.RevertDeploy || opts.RemoveBackup) {
		log.Fatal("[fatal] -revertdeploy and -removebackup not compatible with -read/-write")
	}

	if opts.RevertDeploy && (opts.RemoveBackup || opts.DeployProduction) {
		log.Fatal("[fatal] -revertdeploy not compatible with -deployproduction/-removebackup")
	}

	rules, err := LoadMapping(opts.MappingFile)
	if err != nil {
		log.Fatal("[fatal] rules file: ", err)
	}

	var db database.DB
	if opts.Write || opts.DeployProduction || opts.RevertDeploy || opts.RemoveBackup {
		db, err = database.Open(dbConfig(opts))
		if err != nil {
			log.Fatal("[fatal] ", err)
		}
		defer db.Close()
	}

	rowCache := cache.New(opts.CacheDir)

	step := log.Step("osmwrangle")

	if opts.Read != "" {
		if err := prepareCache(rowCache, opts.Overwritecache); err != nil {
			log.Fatal("[fatal] ", err)
		}
		stepRead := log.Step("Reading OSM data")
		result, err := Read(opts.Read, rowCache, rules, ReadOptions{
			Validate:           opts.Validate,
			NormalizeCacheSize: opts.NormalizeCacheSize,
			ProgressInterval:   progressInterval,
		})
		if result != nil {
			result.log()
			if opts.Report != "" {
				if err := writeReport(opts.Report, result); err != nil {
					log.Println("[error] writing report:", err)
				}
			}
		}
		if err != nil {
			log.Fatal("[fatal] ", err)
		}
		stepRead()
	}

	if opts.Write {
		stepWrite := log.Step("Importing OSM data")
		if _, err := Write(db, rowCache, opts.Workers); err != nil {
			log.Fatal("[fatal] ", err)
		}
		stepWrite()
	}

	if opts.DeployProduction {
		if err := deployer(db).Deploy(); err != nil {
			log.Fatal("[fatal] ", err)
		}
	}

	if opts.RevertDeploy {
		if err := deployer(db).RevertDeploy(); err != nil {
			log.Fatal("[fatal] ", err)
		}
	}

	if opts.RemoveBackup {
		if err := deployer(db).RemoveBackup(); err != nil {
			log.Fatal("[fatal] ", err)
		}
	}

	step()
}

// LoadMapping returns the rules of filename or the built-in rules if
// filename is empty.
func LoadMapping(filename string) (*mapping.Mapping, error) {
	if filename == "" {
		return mapping.Default(), nil
	}
	return mapping.FromFile(filename)
}

func dbConfig(opts config.Import) database.Config {
	return database.Config{
		ConnectionParams: opts.Connection,
		ImportSchema:     opts.Schemas.Import,
		ProductionSchema: opts.Schemas.Production,
		BackupSchema:     opts.Schemas.Backup,
		Workers:          opts.Workers,
	}
}

func deployer(db database.DB) database.Deployer {
	d, ok := db.(database.Deployer)
	if !ok || !d.IsDeploymentSupported() {
		log.Fatal("[fatal] database not deployable")
	}
	return d
}

func prepareCache(c *cache.RowCache, overwrite bool) error {
	if !c.Exists() {
		return nil
	}
	if !overwrite {
		return errors.Errorf("cache %s already exists, use -overwritecache", c.Dir())
	}
	log.Printf("[info] removing existing cache %s", c.Dir())
	if err := c.Remove(); err != nil {
		return errors.Wrap(err, "unable to remove cache")
	}
	return nil
}

type report struct {
	Elements     stats.Summary    `json:"elements"`
	Rows         map[string]int64 `json:"rows"`
	RejectedKeys map[string]int   `json:"rejected_keys"`
	Dropped      int              `json:"dropped_tags"`
	Violations   []string         `json:"violations,omitempty"`
	Normalize    normalize.Report `json:"normalize"`
}

func writeReport(filename string, r *ReadResult) error {
	rep := report{
		Elements:     r.Summary,
		Rows:         make(map[string]int64, len(r.Rows)),
		RejectedKeys: r.RejectedKeys,
		Dropped:      r.Dropped,
		Normalize:    r.Audit.Report(),
	}
	for kind, n := range r.Rows {
		rep.Rows[kind.Name()] = n
	}
	for _, v := range r.Violations {
		rep.Violations = append(rep.Violations, v.String())
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
