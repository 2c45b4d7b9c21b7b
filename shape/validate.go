package shape

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Violation describes a row field that does not match the Schema.
type Violation struct {
	Kind    RowKind
	ID      string
	Field   string
	Value   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s id=%s: %s '%s' %s", v.Kind.Name(), v.ID, v.Field, v.Value, v.Message)
}

// Validate checks all rows of s.
func Validate(s *Shaped) []Violation {
	var violations []Violation
	for _, row := range s.Rows() {
		violations = append(violations, ValidateRow(row)...)
	}
	return violations
}

func ValidateRow(row Row) []Violation {
	var violations []Violation
	fields := Schema[row.Kind()]
	values := row.Values()
	for i, f := range fields {
		if msg := checkField(f, values[i]); msg != "" {
			violations = append(violations, Violation{
				Kind:    row.Kind(),
				ID:      values[0],
				Field:   f.Name,
				Value:   values[i],
				Message: msg,
			})
		}
	}
	return violations
}

func checkField(f Field, v string) string {
	if v == "" {
		if f.Required {
			return "is required"
		}
		return ""
	}
	switch f.Type {
	case Integer:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return "is not an integer"
		}
	case Float:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "is not a number"
		}
	case Timestamp:
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			return "is not a RFC3339 timestamp"
		}
	}
	return ""
}

// ValidationError is returned when shaped rows violate the Schema.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "%d schema violations", len(e.Violations))
	for i, v := range e.Violations {
		if i == 20 {
			fmt.Fprintf(&b, "\n\t... and %d more", len(e.Violations)-i)
			break
		}
		b.WriteString("\n\t")
		b.WriteString(v.String())
	}
	return b.String()
}
