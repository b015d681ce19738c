package domain

// DefaultTemplate returns the static content of the periodic research report.
func DefaultTemplate() Template {
	return Template{
		Organization: "Syrian Ministry of Health",
		Title:        "Medical Research Report",
		UpdatedLabel: "Last updated",
		Summary:      "Summary of new research:",
		Topics: []Topic{
			{
				Title:   "New study on diabetes treatment",
				Details: "The study revealed the effectiveness of a new treatment based on...",
			},
			{
				Title:   "Advances in the treatment of heart disease",
				Details: "The results showed a marked improvement in...",
			},
			{
				Title:   "Advanced research in psychiatry",
				Details: "A new treatment model has been developed that focuses on...",
			},
			{
				Title:   "Recent studies in pediatrics",
				Details: "Discovery of new methods for preventing...",
			},
		},
		Footer: "© Syrian Ministry of Health - All rights reserved",
	}
}
