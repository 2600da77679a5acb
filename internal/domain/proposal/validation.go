package proposal

import (
	"fmt"
	"unicode/utf16"
)

type lengthRule struct {
	field    string
	label    string
	min, max int
}

// Form rules in display order. max == 0 means unbounded.
var formRules = []lengthRule{
	{field: "organizationName", label: "Organization name", min: 1},
	{field: "projectTitle", label: "Project title", min: 1},
	{field: "mission", label: "Mission statement", min: 10, max: 500},
	{field: "description", label: "Project description", min: 10, max: 1000},
	{field: "targetPopulation", label: "Target population", min: 10, max: 400},
	{field: "amount", label: "Amount", min: 1},
	{field: "timeline", label: "Timeline", min: 1},
	{field: "goals", label: "Goals", min: 10, max: 800},
}

func (r lengthRule) check(value string) *FieldError {
	n := textLength(value)
	if n < r.min {
		if r.min == 1 {
			return &FieldError{Field: r.field, Message: r.label + " is required"}
		}
		return &FieldError{Field: r.field, Message: fmt.Sprintf("%s must be at least %d characters", r.label, r.min)}
	}
	if r.max > 0 && n > r.max {
		return &FieldError{Field: r.field, Message: fmt.Sprintf("%s cannot exceed %d characters", r.label, r.max)}
	}
	return nil
}

// textLength counts UTF-16 code units, the unit browsers use for form limits.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

func fieldValues(f Fields) map[string]*string {
	return map[string]*string{
		"organizationName": &f.OrganizationName,
		"projectTitle":     &f.ProjectTitle,
		"mission":          &f.Mission,
		"description":      &f.Description,
		"targetPopulation": &f.TargetPopulation,
		"amount":           &f.Amount,
		"timeline":         &f.Timeline,
		"goals":            &f.Goals,
	}
}

func patchValues(p Patch) map[string]*string {
	return map[string]*string{
		"organizationName": p.OrganizationName,
		"projectTitle":     p.ProjectTitle,
		"mission":          p.Mission,
		"description":      p.Description,
		"targetPopulation": p.TargetPopulation,
		"amount":           p.Amount,
		"timeline":         p.Timeline,
		"goals":            p.Goals,
	}
}

// ValidateFields checks a complete form submission.
func ValidateFields(f Fields) error {
	return validate(fieldValues(f), nil)
}

// ValidatePatch checks only the fields present in a partial update.
func ValidatePatch(p Patch) error {
	var extra []FieldError
	if p.Status != nil && !p.Status.Valid() {
		extra = append(extra, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("Invalid status %q, expected draft, generated or completed", *p.Status),
		})
	}
	return validate(patchValues(p), extra)
}

func validate(values map[string]*string, extra []FieldError) error {
	var errs []FieldError
	for _, rule := range formRules {
		value := values[rule.field]
		if value == nil {
			continue
		}
		if fe := rule.check(*value); fe != nil {
			errs = append(errs, *fe)
		}
	}
	errs = append(errs, extra...)
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}
