package audit

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"
)

// Print writes a human readable summary of the report.
func (r *Report) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if r.Source != nil {
		fmt.Fprintf(tw, "source timestamp:\t%s", r.Source.Timestamp.UTC().Format(time.RFC3339))
		if r.Source.Sequence > 0 {
			fmt.Fprintf(tw, " (sequence %d)", r.Source.Sequence)
		}
		fmt.Fprintln(tw)
	}
	if r.HasBounds {
		fmt.Fprintf(tw, "bounds:\t%f,%f,%f,%f\n", r.Bounds.Min.Lon(), r.Bounds.Min.Lat(), r.Bounds.Max.Lon(), r.Bounds.Max.Lat())
	}

	fmt.Fprintln(tw, "\nelements:")
	for _, name := range sortedNames(r.Elements) {
		fmt.Fprintf(tw, "  %s\t%d\n", name, r.Elements[name])
	}

	fmt.Fprintf(tw, "\nusers:\t%d\n", len(r.Users))

	fmt.Fprintln(tw, "\ntag keys:")
	for _, c := range []KeyClass{Lower, LowerColon, ProblemChars, Other} {
		fmt.Fprintf(tw, "  %s\t%d\n", c, r.KeyClasses[c])
	}

	c := r.Normalize.Counts()
	fmt.Fprintln(tw, "\nstreets:")
	fmt.Fprintf(tw, "  accepted\t%d\n  replaced\t%d\n  unresolved\t%d\n  no suffix\t%d\n",
		c.StreetAccepted, c.StreetReplaced, c.StreetUnresolved, c.StreetNoSuffix)
	for _, s := range r.Normalize.UnresolvedStreets() {
		fmt.Fprintf(tw, "  %s\t%q\n", s.Suffix, s.Names)
	}

	fmt.Fprintln(tw, "\npostcodes:")
	fmt.Fprintf(tw, "  canonical\t%d\n  numeric\t%d\n  unresolved\t%d\n",
		c.PostcodeCanonical, c.PostcodeNumeric, c.PostcodeUnresolved)
	if len(r.NonCanonicalPostcodes) > 0 {
		fmt.Fprintf(tw, "  not canonical\t%q\n", r.NonCanonicalPostcodes)
	}

	return tw.Flush()
}

func sortedNames(m map[string]int64) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
