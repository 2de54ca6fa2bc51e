package classify

import "strings"

// Categories is the closed category vocabulary.
var Categories = []string{"Technical", "Business", "Legal", "Marketing", "HR", "Finance", "Operations", "Research"}

// Departments is the closed department vocabulary.
var Departments = []string{"Engineering", "Sales", "Legal", "Marketing", "HR", "Finance", "Operations", "Research"}

// IsCategory reports whether v is a canonical category label.
func IsCategory(v string) bool { return contains(Categories, v) }

// IsDepartment reports whether v is a canonical department label.
func IsDepartment(v string) bool { return contains(Departments, v) }

// clamp maps v onto vocab case-insensitively, returning fallback when v is
// not a member.
func clamp(vocab []string, v, fallback string) string {
	v = strings.TrimSpace(v)
	for _, label := range vocab {
		if strings.EqualFold(label, v) {
			return label
		}
	}
	return fallback
}

func contains(vocab []string, v string) bool {
	for _, label := range vocab {
		if label == v {
			return true
		}
	}
	return false
}
