// file: internal/models/validation.go
package models

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// ===============================
// VALIDATION ERRORS
// ===============================

// ValidationError represents a validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("validation failed with %d errors", len(e))
}

// Add adds a validation error
func (e *ValidationErrors) Add(field, message, code string, value interface{}) {
	*e = append(*e, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
		Value:   value,
	})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ===============================
// VALIDATOR INTERFACE
// ===============================

// Validator defines the validation interface
type Validator interface {
	Validate() ValidationErrors
}

// ===============================
// CORE VALIDATORS
// ===============================

// EmailValidator validates email addresses
func EmailValidator(field string, value string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: "email is required",
			Code:    "required",
			Value:   value,
		}
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(value) {
		return &ValidationError{
			Field:   field,
			Message: "invalid email format",
			Code:    "invalid_format",
			Value:   value,
		}
	}

	// RFC 5321 limit
	if len(value) > 320 {
		return &ValidationError{
			Field:   field,
			Message: "email too long (max 320 characters)",
			Code:    "too_long",
			Value:   value,
		}
	}

	return nil
}

// PasswordValidator validates passwords
func PasswordValidator(field string, value string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: "password is required",
			Code:    "required",
		}
	}

	if len(value) < 8 {
		return &ValidationError{
			Field:   field,
			Message: "password must be at least 8 characters",
			Code:    "too_short",
		}
	}

	if len(value) > 128 {
		return &ValidationError{
			Field:   field,
			Message: "password must be 128 characters or less",
			Code:    "too_long",
		}
	}

	var hasLower, hasUpper, hasDigit bool
	for _, char := range value {
		switch {
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	var missing []string
	if !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if !hasDigit {
		missing = append(missing, "number")
	}

	if len(missing) > 0 {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("password must contain at least one: %s", strings.Join(missing, ", ")),
			Code:    "weak_password",
		}
	}

	return nil
}

// URLValidator validates URLs
func URLValidator(field string, value string) *ValidationError {
	if value == "" {
		return nil // Optional field
	}

	parsedURL, err := url.Parse(value)
	if err != nil {
		return &ValidationError{
			Field:   field,
			Message: "invalid URL format",
			Code:    "invalid_format",
			Value:   value,
		}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{
			Field:   field,
			Message: "URL must use http or https scheme",
			Code:    "invalid_scheme",
			Value:   value,
		}
	}

	if parsedURL.Host == "" {
		return &ValidationError{
			Field:   field,
			Message: "URL must have a valid host",
			Code:    "missing_host",
			Value:   value,
		}
	}

	return nil
}

// ContentValidator validates free-text fields
func ContentValidator(field string, value string, minLength, maxLength int) *ValidationError {
	trimmed := strings.TrimSpace(value)
	if minLength > 0 && trimmed == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Code:    "required",
			Value:   value,
		}
	}

	if len(trimmed) < minLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be at least %d characters", field, minLength),
			Code:    "too_short",
			Value:   value,
		}
	}

	if len(value) > maxLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be %d characters or less", field, maxLength),
			Code:    "too_long",
			Value:   value,
		}
	}

	return nil
}

// EnumValidator validates enum values
func EnumValidator(field string, value string, allowedValues []string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Code:    "required",
			Value:   value,
		}
	}

	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}

	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowedValues, ", ")),
		Code:    "invalid_value",
		Value:   value,
	}
}

// ===============================
// MODEL VALIDATORS
// ===============================

// Validate validates a User model
func (u *User) Validate() ValidationErrors {
	var errors ValidationErrors

	if err := ContentValidator("name", u.Name, 2, 50); err != nil {
		errors = append(errors, *err)
	}

	if err := EmailValidator("email", u.Email); err != nil {
		errors = append(errors, *err)
	}

	roles := []string{RoleJobSeeker, RoleRecruiter, RoleAdmin}
	if err := EnumValidator("role", u.Role, roles); err != nil {
		errors = append(errors, *err)
	}

	if len(u.Profile.Bio) > 500 {
		errors.Add("profile.bio", "bio must be 500 characters or less", "too_long", nil)
	}
	if len(u.Profile.Company) > 100 {
		errors.Add("profile.company", "company must be 100 characters or less", "too_long", nil)
	}
	if u.Profile.Website != "" {
		if err := URLValidator("profile.website", u.Profile.Website); err != nil {
			errors = append(errors, *err)
		}
	}

	return errors
}

// Validate validates a Job model
func (j *Job) Validate() ValidationErrors {
	var errors ValidationErrors

	if err := ContentValidator("title", j.Title, 3, 100); err != nil {
		errors = append(errors, *err)
	}
	if err := ContentValidator("company", j.Company, 1, 100); err != nil {
		errors = append(errors, *err)
	}
	if err := ContentValidator("description", j.Description, 10, 2000); err != nil {
		errors = append(errors, *err)
	}
	if err := ContentValidator("requirements", j.Requirements, 1, 1000); err != nil {
		errors = append(errors, *err)
	}
	if err := ContentValidator("location", j.Location, 1, 100); err != nil {
		errors = append(errors, *err)
	}

	jobTypes := []string{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}
	if err := EnumValidator("job_type", j.JobType, jobTypes); err != nil {
		errors = append(errors, *err)
	}

	levels := []string{ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceExecutive}
	if err := EnumValidator("experience_level", j.ExperienceLevel, levels); err != nil {
		errors = append(errors, *err)
	}

	if j.Salary.Min != nil && *j.Salary.Min < 0 {
		errors.Add("salary.min", "salary minimum cannot be negative", "invalid_range", *j.Salary.Min)
	}
	if j.Salary.Max != nil && *j.Salary.Max < 0 {
		errors.Add("salary.max", "salary maximum cannot be negative", "invalid_range", *j.Salary.Max)
	}
	if j.Salary.Min != nil && j.Salary.Max != nil && *j.Salary.Min > *j.Salary.Max {
		errors.Add("salary", "salary minimum cannot exceed maximum", "invalid_range", nil)
	}

	if j.ApplicationDeadline != nil && j.ApplicationDeadline.Before(time.Now()) {
		errors.Add("application_deadline", "application deadline must be in the future", "invalid_time", *j.ApplicationDeadline)
	}

	if j.PostedBy <= 0 {
		errors.Add("posted_by", "valid poster ID is required", "invalid", j.PostedBy)
	}

	return errors
}

// Validate validates an Application model
func (a *Application) Validate() ValidationErrors {
	var errors ValidationErrors

	if a.JobID <= 0 {
		errors.Add("job_id", "valid job ID is required", "invalid", a.JobID)
	}
	if a.ApplicantID <= 0 {
		errors.Add("applicant_id", "valid applicant ID is required", "invalid", a.ApplicantID)
	}

	if !a.Status.IsValid() {
		errors.Add("status", "invalid application status", "invalid_value", string(a.Status))
	}

	if a.ResumeURL == "" {
		errors.Add("resume_url", "a resume is required", "required", nil)
	}

	if len(a.CoverLetter) > 1000 {
		errors.Add("cover_letter", "cover letter must be 1000 characters or less", "too_long", nil)
	}
	if len(a.Notes) > 500 {
		errors.Add("notes", "notes must be 500 characters or less", "too_long", nil)
	}
	if len(a.Feedback) > 1000 {
		errors.Add("feedback", "feedback must be 1000 characters or less", "too_long", nil)
	}

	return errors
}

// ===============================
// VALIDATION UTILITIES
// ===============================

// ValidateModel validates any model that implements the Validator interface
func ValidateModel(model Validator) error {
	if errors := model.Validate(); errors.HasErrors() {
		return errors
	}
	return nil
}

// SanitizeString removes potentially harmful content from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	input = regexp.MustCompile(`\s+`).ReplaceAllString(input, " ")
	return input
}

// NormalizeEmail normalizes email addresses for lookup and storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
