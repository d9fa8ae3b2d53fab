package wizard

import (
	"math"
	"strconv"
	"strings"

	"github.com/ziadkadry99/green-analyzer/internal/form"
)

// Validation messages.
const (
	MsgRole       = "Please select a role."
	MsgLocation   = "Please enter a location."
	MsgTechnology = "Please select a technology to continue."
	MsgNumber     = "Please enter a valid, positive number."
)

// Validate checks the fields belonging to step. Only the step being left is
// checked; the result replaces any previous errors.
func Validate(step int, f *form.Form) form.Errors {
	errs := form.Errors{}
	switch step {
	case 1:
		if f.Role == "" {
			errs["role"] = MsgRole
		}
		if strings.TrimSpace(f.Location) == "" {
			errs["location"] = MsgLocation
		}
	case 2:
		if f.IsSales() {
			if f.SellingTechnology == "" {
				errs["sellingTechnology"] = MsgTechnology
			}
			break
		}
		for _, name := range form.NumericFields() {
			v := f.Text(name)
			if v != "" && !nonNegative(v) {
				errs[name] = MsgNumber
			}
		}
	}
	return errs
}

// nonNegative reports whether s reads as a number >= 0. Surrounding
// whitespace is ignored and blank input counts as zero.
func nonNegative(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(n) && n >= 0
}
