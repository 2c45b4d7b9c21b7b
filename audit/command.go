package audit

import (
	"encoding/json"
	"io"
	"os"

	"github.com/osmwrangle/osmwrangle/config"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/mapping"
	"github.com/osmwrangle/osmwrangle/normalize"
	"github.com/osmwrangle/osmwrangle/reader"
)

// Audit runs the audit sub command.
func Audit(opts config.Audit) {
	if opts.Quiet {
		log.SetQuiet(true)
	}

	m := mapping.Default()
	if opts.MappingFile != "" {
		var err error
		if m, err = mapping.FromFile(opts.MappingFile); err != nil {
			log.Fatal("[fatal] rules file: ", err)
		}
	}

	step := log.Step("Auditing " + opts.Input)
	report, err := Run(opts.Input, m)
	if err != nil {
		log.Fatal("[fatal] ", err)
	}
	step()

	if err := report.Print(os.Stdout); err != nil {
		log.Fatal("[fatal] ", err)
	}

	if opts.GeoJSON != "" {
		if err := writeFile(opts.GeoJSON, report.WriteGeoJSON); err != nil {
			log.Fatal("[fatal] writing geojson: ", err)
		}
		log.Printf("[info] wrote %d unresolved addresses to %s", len(report.Unresolved), opts.GeoJSON)
	}
	if opts.Report != "" {
		if err := writeFile(opts.Report, report.WriteJSON); err != nil {
			log.Fatal("[fatal] writing report: ", err)
		}
	}
}

type jsonReport struct {
	Source                *reader.SourceInfo `json:"source,omitempty"`
	Elements              map[string]int64   `json:"elements"`
	Users                 []string           `json:"users"`
	KeyClasses            map[KeyClass]int64 `json:"key_classes"`
	Bounds                []float64          `json:"bounds,omitempty"`
	Normalize             normalize.Report   `json:"normalize"`
	NonCanonicalPostcodes []string           `json:"non_canonical_postcodes"`
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	rep := jsonReport{
		Source:                r.Source,
		Elements:              r.Elements,
		Users:                 r.Users,
		KeyClasses:            r.KeyClasses,
		Normalize:             r.Normalize.Report(),
		NonCanonicalPostcodes: r.NonCanonicalPostcodes,
	}
	if r.HasBounds {
		rep.Bounds = []float64{r.Bounds.Min.Lon(), r.Bounds.Min.Lat(), r.Bounds.Max.Lon(), r.Bounds.Max.Lat()}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeFile(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
