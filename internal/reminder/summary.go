package reminder

import (
	"strings"

	"pet-medication-reminder/internal/models"
)

// Summary renders the next due date of every configured medication in
// registry order, followed by a prompt for each one that is not configured.
// With nothing configured it asks the user to set a date.
func Summary(registry models.Registry, schedules []models.Schedule) string {
	byKey := make(map[string]models.Schedule, len(schedules))
	for _, sc := range schedules {
		byKey[sc.Key] = sc
	}

	var set, unset []string
	for _, med := range registry {
		sc, ok := byKey[med.Key]
		if ok && sc.NextDueDate != nil {
			set = append(set, textNextDue(med.Name, *sc.NextDueDate))
			continue
		}
		unset = append(unset, textNotConfigured(med.Name))
	}

	if len(set) == 0 {
		return textNoReminders
	}
	if len(unset) == 0 {
		// everything configured: the compact form
		lines := make([]string, 0, len(registry))
		for _, med := range registry {
			lines = append(lines, textNextDueCompact(med.Name, *byKey[med.Key].NextDueDate))
		}
		return strings.Join(lines, "\n")
	}
	return strings.Join(append(set, unset...), "\n")
}
