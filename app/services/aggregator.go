package services

import (
	"math"

	"github.com/TeachingLabHQ/tl-form-hub/app/models"
)

// UnassignedProject is the bucket for entries submitted without a project name.
const UnassignedProject = "Unassigned"

// sanitizePay is the fallback policy for entry pay amounts: anything that
// is not a finite number counts as 0. The aggregation never fails or skips
// an entry because of a bad pay value.
func sanitizePay(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// GroupSubmissionsByProject walks a month's submissions and groups their
// entries by project, then by person within each project. Projects and
// people keep the order in which they were first seen. Within a person's
// summary, entries sharing both task name and submission date are merged
// (hours and pay summed); entries differing in either stay separate, so the
// same task worked on different dates produces separate rows.
func GroupSubmissionsByProject(submissions []*models.VendorPaymentSubmission) []*models.ProjectGroup {
	var groups []*models.ProjectGroup
	byName := make(map[string]*models.ProjectGroup)

	for _, submission := range submissions {
		for _, entry := range submission.Entries {
			projectName := entry.ProjectName
			if projectName == "" {
				projectName = UnassignedProject
			}
			entryPay := sanitizePay(entry.EntryPay)

			group := byName[projectName]
			if group == nil {
				group = &models.ProjectGroup{ProjectName: projectName}
				byName[projectName] = group
				groups = append(groups, group)
			}

			var person *models.PersonProjectSummary
			for _, p := range group.PeopleSummaries {
				if p.CFEmail == submission.CFEmail {
					person = p
					break
				}
			}
			if person == nil {
				person = &models.PersonProjectSummary{
					CFName:         submission.CFName,
					CFEmail:        submission.CFEmail,
					CFTier:         submission.CFTier,
					SubmissionDate: submission.SubmissionDate,
				}
				group.PeopleSummaries = append(group.PeopleSummaries, person)
			}

			var detailed *models.DetailedEntry
			for _, d := range person.DetailedEntries {
				if d.TaskName == entry.TaskName && d.SubmissionDate.Equal(submission.SubmissionDate) {
					detailed = d
					break
				}
			}
			if detailed != nil {
				// Same task on the same day: aggregate hours and pay.
				// Rate is assumed consistent for the same task by the same person.
				detailed.WorkHours += entry.WorkHours
				detailed.EntryPay += entryPay
			} else {
				person.DetailedEntries = append(person.DetailedEntries, &models.DetailedEntry{
					TaskName:       entry.TaskName,
					WorkHours:      entry.WorkHours,
					Rate:           entry.Rate,
					EntryPay:       entryPay,
					SubmissionDate: submission.SubmissionDate,
				})
			}

			person.TotalPayForProject += entryPay
		}
	}

	return groups
}
