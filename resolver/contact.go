package resolver

import (
	"fmt"
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s()-]{8,}\d`)
)

// contactReply handles the two deterministic contact fast paths: the
// user asking how to reach a human, and the user volunteering their own
// contact details. Returns "" when neither applies.
func contactReply(text, contactEmail string) string {
	q := normalize(text)

	if emailPattern.MatchString(text) || phonePattern.MatchString(text) {
		return "Thanks for sharing your details! Our team will get in touch with you soon."
	}

	if containsAny(q,
		"contact you",
		"contact number",
		"contact details",
		"email address",
		"phone number",
		"how can i reach",
		"how do i reach",
		"talk to a human",
		"talk to someone",
		"speak to a person",
		"speak to someone",
		"customer care",
		"customer support") {
		if contactEmail == "" {
			return "You can reach our team through the support desk, and they'll be happy to help."
		}
		return fmt.Sprintf("You can reach our team at %s. We usually reply within a day.", contactEmail)
	}

	return ""
}
