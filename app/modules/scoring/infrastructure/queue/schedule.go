package scoringqueue

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ParseScheduleTime reads a rescore time such as "in 10 minutes",
// "tomorrow at 9am" or an RFC 3339 timestamp. Empty input and "now" mean now.
func ParseScheduleTime(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" || input == "now" {
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, strings.ToUpper(input)); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(input, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse schedule %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize schedule %q", input)
	}
	if r.Time.Before(now) {
		return time.Time{}, fmt.Errorf("schedule %q is in the past", input)
	}
	return r.Time, nil
}
