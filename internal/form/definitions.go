package form

import "fmt"

// Type names one of the known form flows.
type Type string

const (
	Contact        Type = "contact"
	JobApplication Type = "job-application"
	JobPosting     Type = "job-posting"
)

// Types lists every known form type.
var Types = []Type{Contact, JobApplication, JobPosting}

// ParseType validates a form type name.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown form type %q", s)
}

// Definition binds a schema to its transport and feedback settings.
type Definition struct {
	Type           Type
	Schema         Schema
	Mode           Mode
	WebhookPath    string
	SuccessMessage string
	// ReturnHome asks the shell to go back to the default view on success.
	ReturnHome bool
}

var (
	Departments = []string{
		"IT / Technical Support",
		"HR",
		"Finance & Accounts",
		"Marketing",
		"Sales",
		"Customer Support",
		"Legal",
		"Admin",
	}
	RequestTypes = []string{
		"New Request / Inquiry",
		"Access Request",
		"Technical Issue / Bug Report",
		"Feedback / Suggestion",
		"Other",
	}
)

const emailMessage = "Please enter a valid email."

// ContactForm is the general contact flow.
func ContactForm() Definition {
	return Definition{
		Type: Contact,
		Schema: Schema{
			{Name: "full_name", Rules: []Rule{MinLength(2, "Name must be at least 2 characters.")}},
			{Name: "email_address", Optional: true, Rules: []Rule{Email(emailMessage)}},
			{Name: "message", Rules: []Rule{MinLength(5, "Message must be at least 5 characters.")}},
			{Name: "phone_number", Optional: true},
			{Name: "department", Optional: true, Rules: []Rule{OneOf("Please select a department.", Departments...)}},
			{Name: "request_type", Optional: true, Rules: []Rule{OneOf("Please select a request type.", RequestTypes...)}},
			{Name: "status", Optional: true},
			{Name: "priority", Optional: true},
			{Name: "summary", Optional: true},
		},
		Mode:           ModeQuery,
		WebhookPath:    "/webhook/React-Contact-Form",
		SuccessMessage: "Data sent successfully to n8n",
	}
}

// JobApplicationForm is the candidate flow. titles is the list fetched from the
// job-title source; job_title must be one of them.
func JobApplicationForm(titles []string) Definition {
	return Definition{
		Type: JobApplication,
		Schema: Schema{
			{Name: "full_name", Rules: []Rule{MinLength(2, "Name must be at least 2 characters.")}},
			{Name: "email_address", Rules: []Rule{StrictEmail(emailMessage)}},
			{Name: "phone_number", Optional: true},
			{Name: "job_title", Rules: []Rule{
				Required("Please select a job title."),
				OneOf("Please select a job title.", titles...),
			}},
			{Name: "cv", Rules: []Rule{FileType("application/pdf", "Please upload a valid PDF file.")}},
			{Name: "motivation", Rules: []Rule{MinLength(10, "Please provide at least 10 characters.")}},
		},
		Mode:           ModeMultipart,
		WebhookPath:    "/webhook/candidate-form",
		SuccessMessage: "Application submitted successfully!",
		ReturnHome:     true,
	}
}

// JobPostingForm is the company flow.
func JobPostingForm() Definition {
	return Definition{
		Type: JobPosting,
		Schema: Schema{
			{Name: "company_name", Rules: []Rule{MinLength(2, "Company name must be at least 2 characters.")}},
			{Name: "company_description", Rules: []Rule{MinLength(10, "Description must be at least 10 characters.")}},
			{Name: "notification_email", Rules: []Rule{StrictEmail(emailMessage)}},
			{Name: "job_title", Rules: []Rule{MinLength(2, "Job title must be at least 2 characters.")}},
			{Name: "job_requirements", Rules: []Rule{MinLength(5, "Requirements must be at least 5 characters.")}},
		},
		Mode:           ModeQuery,
		WebhookPath:    "/webhook/company-form",
		SuccessMessage: "Job Posting Submitted!",
		ReturnHome:     true,
	}
}

// Lookup returns the definition for t. titles only matters for
// JobApplication.
func Lookup(t Type, titles []string) (Definition, error) {
	switch t {
	case Contact:
		return ContactForm(), nil
	case JobApplication:
		return JobApplicationForm(titles), nil
	case JobPosting:
		return JobPostingForm(), nil
	default:
		return Definition{}, fmt.Errorf("unknown form type %q", t)
	}
}
