// conf/validate.go

package conf

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates struct tags first and then the rules that span
// several fields.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: rule '%s' expected '%s', got '%v'",
					fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			}
		} else {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	ve.Errors = append(ve.Errors, validateTenants(settings.Tenants)...)

	if err := validateMediaCount(settings.MediaCountPerDevice); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
	if err := validateDetectionSettings(&settings.Detection); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
	if err := validateElasticsearchSettings(&settings.Elasticsearch); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
	if settings.Generation.ReferenceTime != "" {
		if _, err := time.Parse(time.RFC3339, settings.Generation.ReferenceTime); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("generation.reference_time must be RFC3339: %v", err))
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateTenants checks id uniqueness of tenants and of properties within a
// tenant. Device entries and timezones are checked per record by the generator.
func validateTenants(tenants []Tenant) []string {
	var problems []string
	tenantIDs := make(map[string]bool, len(tenants))
	for _, t := range tenants {
		if tenantIDs[t.ID] {
			problems = append(problems, fmt.Sprintf("duplicate tenant id %q", t.ID))
		}
		tenantIDs[t.ID] = true

		propertyIDs := make(map[string]bool, len(t.Properties))
		for _, p := range t.Properties {
			if propertyIDs[p.ID] {
				problems = append(problems, fmt.Sprintf("tenant %s: duplicate property id %q", t.ID, p.ID))
			}
			propertyIDs[p.ID] = true
		}
	}
	return problems
}

// CheckDevice reports why records cannot be generated for d, or nil.
func CheckDevice(d *Device) error {
	if d.ID == "" {
		return fmt.Errorf("device id is required")
	}
	if len(d.Location) != 2 {
		return fmt.Errorf("device %s: location must be [lon, lat], got %d values", d.ID, len(d.Location))
	}
	lon, lat := d.Location[0], d.Location[1]
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("device %s: location [%v, %v] out of range", d.ID, lon, lat)
	}
	return nil
}

func validateMediaCount(m MediaCount) error {
	if m.Min < 0 || m.Max < 0 {
		return fmt.Errorf("media_count_per_device must not be negative")
	}
	if m.Min > m.Max {
		return fmt.Errorf("media_count_per_device min (%d) exceeds max (%d)", m.Min, m.Max)
	}
	return nil
}

func validateDetectionSettings(d *DetectionSettings) error {
	sum := d.WildlifeProbability + d.PeopleProbability + d.VehicleProbability + d.EmptyProbability
	if sum <= 0 {
		return fmt.Errorf("detection probabilities must not all be zero")
	}
	return nil
}

// validateElasticsearchSettings requires complete credentials for the
// selected auth mode once an endpoint is configured.
func validateElasticsearchSettings(es *ElasticsearchSettings) error {
	if es.Endpoint == "" {
		return nil
	}
	if es.UseAPIKey && es.APIKey == "" {
		return fmt.Errorf("elasticsearch.api_key is required when use_api_key is enabled")
	}
	if !es.UseAPIKey && (es.Username == "" || es.Password == "") {
		return fmt.Errorf("elasticsearch.username and password are required when use_api_key is disabled")
	}
	if es.Timeout < 0 {
		return fmt.Errorf("elasticsearch.timeout must not be negative")
	}
	return nil
}
