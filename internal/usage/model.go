package usage

// DefaultMaxRequests is the number of ingestions a user may run per day.
const DefaultMaxRequests = 5

// DateLayout is the calendar-day key for a usage row.
const DateLayout = "2006-01-02"

// DailyUsage is one user's counter for one calendar day.
type DailyUsage struct {
	UserID      string `json:"userId"`
	Date        string `json:"date"`
	Requests    int    `json:"requests"`
	MaxRequests int    `json:"maxRequests"`
}

// CanMakeRequest reports whether another chargeable request fits today.
func (u DailyUsage) CanMakeRequest() bool {
	return u.Requests < u.MaxRequests
}

// Remaining is the number of requests left today, never negative.
func (u DailyUsage) Remaining() int {
	if r := u.MaxRequests - u.Requests; r > 0 {
		return r
	}
	return 0
}
