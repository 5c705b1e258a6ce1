// Package dates turns free-text and structured date input from Slack
// into normalized day ranges in the calendar's fixed timezone.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Kolkata is the timezone all OOO events are anchored to (UTC+5:30).
var Kolkata = time.FixedZone("Asia/Kolkata", 330*60)

// ISODate is the wire format of Slack datepicker values and
// Google Calendar all-day event boundaries.
const ISODate = "2006-01-02"

// ErrNoDate is reported when no date can be extracted from free text.
var ErrNoDate = errors.New("no date found")

// FieldError is a validation failure tied to a single input field,
// so that modal submissions can surface it next to the offending input.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Range is a half-open day range: Start is the first OOO day and End is
// the day after the last one. A single-day absence has End = Start + 1.
type Range struct {
	Start time.Time
	End   time.Time
}

// Single normalizes one day into a one-day range.
func Single(day time.Time) Range {
	return Range{Start: day, End: day.AddDate(0, 0, 1)}
}

// Days reports how many calendar days the range spans.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Numeric inputs are day-first ("13-04-2026", never "04-13-2026").
// ISO dates are accepted as-is.
var numericLayouts = []string{
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
}

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ResolveText extracts a single OOO day from the free text of a slash
// command, relative to now. Numeric dates are parsed day-first, and
// relative phrases ("tomorrow", "next friday", "10 march") resolve to
// their next occurrence, never to a day already behind now. It returns
// ErrNoDate when the text contains nothing date-like.
func ResolveText(text string, now time.Time) (Range, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Range{}, ErrNoDate
	}

	now = now.In(Kolkata)
	for _, layout := range numericLayouts {
		if t, err := time.ParseInLocation(layout, text, Kolkata); err == nil {
			return Single(t), nil
		}
	}

	res, err := parser.Parse(text, now)
	if err != nil || res == nil {
		return Range{}, ErrNoDate
	}

	day := midnight(res.Time.In(Kolkata))
	today := midnight(now)
	if day.Before(today) {
		// Phrases without an explicit year ("friday", "10 march")
		// parse into the current week or year; prefer the next
		// occurrence instead.
		next := day.AddDate(0, 0, 7)
		if next.Before(today) {
			next = day.AddDate(1, 0, 0)
		}
		day = next
	}
	return Single(day), nil
}

// ResolveRange validates the from/to dates picked in a modal. An empty
// "to" means a single day. The last day is inclusive in the input and
// exclusive in the returned range.
func ResolveRange(from, to string) (Range, error) {
	start, err := time.ParseInLocation(ISODate, from, Kolkata)
	if err != nil {
		return Range{}, &FieldError{Field: "from", Message: "Pick a valid first day"}
	}

	if to == "" || to == from {
		return Single(start), nil
	}

	end, err := time.ParseInLocation(ISODate, to, Kolkata)
	if err != nil {
		return Range{}, &FieldError{Field: "to", Message: "Pick a valid last day"}
	}
	if end.Before(start) {
		return Range{}, &FieldError{Field: "to", Message: "The last day can't be before the first day"}
	}

	return Range{Start: start, End: end.AddDate(0, 0, 1)}, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Kolkata)
}
