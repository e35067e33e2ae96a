package form

import "context"

// JobTitleSource supplies the selectable job titles for applications.
type JobTitleSource interface {
	JobTitles(ctx context.Context) ([]string, error)
}

// JobTitlesErrorMessage is the notification sent when titles cannot be loaded.
const JobTitlesErrorMessage = "Error fetching job titles"

// FetchJobTitles loads titles once. Failure is not fatal: it notifies events
// and returns an empty list, leaving job_title with no valid option.
func FetchJobTitles(ctx context.Context, src JobTitleSource, events Events) []string {
	if src == nil {
		return []string{}
	}
	titles, err := src.JobTitles(ctx)
	if err != nil {
		if events != nil {
			events.Notify(Notification{Level: LevelError, Message: JobTitlesErrorMessage})
		}
		return []string{}
	}
	if titles == nil {
		return []string{}
	}
	return titles
}
