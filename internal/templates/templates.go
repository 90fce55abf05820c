// Package templates defines the transactional and marketing email templates
// the service is allowed to send, along with their compliance metadata.
//
// The template bodies live in the provider (SES stored templates, created out
// of band); this registry is the single place that knows which variables a
// template requires and whether sending it needs explicit consent.
package templates

import (
	"errors"
	"fmt"
	"sort"

	"github.com/osteele/liquid"
)

// Category determines a template's compliance treatment.
type Category string

const (
	CategoryTransactional Category = "transactional"
	CategoryMarketing     Category = "marketing"
	CategoryNotification  Category = "notification"
)

// ComplianceLevel is an informational risk rating used in audits.
type ComplianceLevel string

const (
	ComplianceHigh   ComplianceLevel = "high"
	ComplianceMedium ComplianceLevel = "medium"
	ComplianceLow    ComplianceLevel = "low"
)

// Template describes one sendable email template.
type Template struct {
	// Name is the registry key used by callers.
	Name string
	// ProviderName is the template identifier stored at the provider.
	ProviderName string
	Description  string
	// Subject may contain Liquid variables, e.g. "Update: {{projectName}}".
	Subject           string
	RequiredVariables []string
	ComplianceLevel   ComplianceLevel
	Category          Category
}

// Requirements captures what compliance rules apply when sending a template.
type Requirements struct {
	RequiresExplicitConsent bool
	RequiresUnsubscribeLink bool
	RequiresCompanyInfo     bool
	MaxFrequency            string
}

// ErrNotFound is returned when a template name is not in the registry.
var ErrNotFound = errors.New("template not found")

var registry = map[string]Template{
	"welcome": {
		Name:              "welcome",
		ProviderName:      "welcome",
		Description:       "Welcome email for new contacts who opt-in through the website",
		Subject:           "Welcome to Everfaz - Let's Build Something Amazing Together",
		RequiredVariables: []string{"name"},
		ComplianceLevel:   ComplianceHigh,
		Category:          CategoryTransactional,
	},
	"contactConfirmation": {
		Name:              "contactConfirmation",
		ProviderName:      "contact-confirmation",
		Description:       "Confirmation email sent after contact form submission",
		Subject:           "We Received Your Message - Everfaz Team Will Be In Touch",
		RequiredVariables: []string{"name", "email", "subject", "submissionDate"},
		ComplianceLevel:   ComplianceHigh,
		Category:          CategoryTransactional,
	},
	"projectUpdate": {
		Name:              "projectUpdate",
		ProviderName:      "project-update",
		Description:       "Update email for ongoing projects",
		Subject:           "Project Update: {{projectName}}",
		RequiredVariables: []string{"name", "projectName", "updateDetails"},
		ComplianceLevel:   ComplianceMedium,
		Category:          CategoryNotification,
	},
	"newsletter": {
		Name:              "newsletter",
		ProviderName:      "newsletter",
		Description:       "Monthly newsletter with company updates and insights",
		Subject:           "Everfaz Insights - {{month}} {{year}} Edition",
		RequiredVariables: []string{"name", "month", "year", "insights"},
		ComplianceLevel:   ComplianceHigh,
		Category:          CategoryMarketing,
	},
}

var subjectEngine = liquid.NewEngine()

// Get returns a template by registry name.
func Get(name string) (Template, error) {
	t, ok := registry[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}

// Names returns all registered template names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every required variable is present and non-empty.
// Returns the missing variable names; an empty slice means the data is valid.
func Validate(name string, data map[string]string) ([]string, error) {
	t, err := Get(name)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, v := range t.RequiredVariables {
		if data[v] == "" {
			missing = append(missing, v)
		}
	}
	return missing, nil
}

// Compliance returns the rules that apply when sending the named template.
// Transactional templates may be sent on an existing business relationship
// without an explicit opt-in; everything else requires recorded consent.
func Compliance(name string) (Requirements, error) {
	t, err := Get(name)
	if err != nil {
		return Requirements{}, err
	}

	reqs := Requirements{
		RequiresExplicitConsent: true,
		RequiresUnsubscribeLink: true,
		RequiresCompanyInfo:     true,
	}

	switch t.Category {
	case CategoryTransactional:
		reqs.RequiresExplicitConsent = false
	case CategoryMarketing:
		reqs.MaxFrequency = "weekly"
	case CategoryNotification:
		reqs.MaxFrequency = "as-needed"
	}
	return reqs, nil
}

// RenderSubject resolves Liquid variables in the template's subject line.
func RenderSubject(name string, data map[string]string) (string, error) {
	t, err := Get(name)
	if err != nil {
		return "", err
	}

	bindings := make(map[string]interface{}, len(data))
	for k, v := range data {
		bindings[k] = v
	}

	out, err := subjectEngine.ParseAndRenderString(t.Subject, bindings)
	if err != nil {
		return "", fmt.Errorf("rendering subject for %s: %w", name, err)
	}
	return out, nil
}
