package normalize

import (
	"regexp"
	"strings"
)

// canadianRe matches Canadian postal codes (A1A 1A1). D, F, I, O, Q and
// U are never used, W and Z not in the first position.
var canadianRe = regexp.MustCompile(`^[ABCEGHJ-NPRSTVXY]\d[ABCEGHJ-NPRSTV-Z]\s?\d[ABCEGHJ-NPRSTV-Z]\d$`)

// numericRe matches US style numeric codes with optional dashes.
var numericRe = regexp.MustCompile(`^\d\d-?\d-?\d\d?\d?\d?$`)

type PostcodeStatus int

const (
	PostcodeCanonical PostcodeStatus = iota
	PostcodeNumeric
	PostcodeUnresolved
)

func (s PostcodeStatus) String() string {
	switch s {
	case PostcodeCanonical:
		return "canonical"
	case PostcodeNumeric:
		return "numeric"
	case PostcodeUnresolved:
		return "unresolved"
	}
	return "unknown"
}

type PostcodeResult struct {
	Value    string
	Original string
	Status   PostcodeStatus
}

type PostcodeNormalizer interface {
	Normalize(code string) PostcodeResult
}

// Postcode brings Canadian postal codes into the canonical "A1A 1A1"
// form.
type Postcode struct{}

func NewPostcode() *Postcode {
	return &Postcode{}
}

// Normalize returns the canonical code. Values that are no Canadian code
// are returned unchanged, either as numeric or as unresolved.
func (Postcode) Normalize(code string) PostcodeResult {
	res := PostcodeResult{Value: code, Original: code}
	cleaned := strings.ToUpper(strings.TrimSpace(code))

	if canadianRe.MatchString(cleaned) {
		compact := strings.Join(strings.Fields(cleaned), "")
		res.Value = compact[:3] + " " + compact[3:]
		res.Status = PostcodeCanonical
		return res
	}
	if numericRe.MatchString(cleaned) {
		res.Status = PostcodeNumeric
		return res
	}
	res.Status = PostcodeUnresolved
	return res
}
