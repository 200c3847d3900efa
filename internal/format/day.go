package format

import (
	"fmt"
	"time"

	"politrades/internal/models"
)

var (
	frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frenchMonths   = [...]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}
)

// Today is the label of the bucket for the calling day.
func Today(lang models.Language) string {
	if lang == models.LanguageFrench {
		return "Aujourd'hui"
	}
	return "Today"
}

// Yesterday is the label of the bucket for the day before the calling day.
func Yesterday(lang models.Language) string {
	if lang == models.LanguageFrench {
		return "Hier"
	}
	return "Yesterday"
}

// DayTitle renders a weekday/month/day heading, "Monday, March 9" or "lundi 9 mars".
func DayTitle(day time.Time, lang models.Language) string {
	if lang == models.LanguageFrench {
		return fmt.Sprintf("%s %d %s", frenchWeekdays[day.Weekday()], day.Day(), frenchMonths[day.Month()-1])
	}
	return day.Format("Monday, January 2")
}
