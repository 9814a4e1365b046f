package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// entryPattern accepts "First Last, DD-MM" with an optional ", @handle"
var entryPattern = regexp.MustCompile(`^(?P<name>[\p{L}\w]+\s[\p{L}\w]+), (?P<date>\d{2}-\d{2})(, @?(?P<handle>\w+))?$`)

// ParseEntry parses one entry typed by a user
func ParseEntry(input string) (Entry, error) {
	m := entryPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return Entry{}, fmt.Errorf("%w: entry %q does not match \"Name Surname, DD-MM[, @handle]\"", ErrParse, input)
	}
	e := Entry{
		Name:   m[entryPattern.SubexpIndex("name")],
		Date:   m[entryPattern.SubexpIndex("date")],
		Handle: m[entryPattern.SubexpIndex("handle")],
	}
	if err := ValidateDate(e.Date); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// ValidateDate checks that date is a real "DD-MM" day of some year (29-02 included)
func ValidateDate(date string) error {
	// 2000 is a leap year, so 29-02 parses
	if _, err := time.Parse("02-01-2006", date+"-2000"); err != nil {
		return fmt.Errorf("%w: invalid date %q", ErrParse, date)
	}
	return nil
}

// ParseEntryList decodes an uploaded JSON document of the form {"entries": [...]}
func ParseEntryList(data []byte) (EntryList, error) {
	var list EntryList
	if err := json.Unmarshal(data, &list); err != nil {
		return EntryList{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	for i, e := range list.All() {
		if strings.TrimSpace(e.Name) == "" {
			return EntryList{}, fmt.Errorf("%w: entry %d has no name", ErrParse, i)
		}
		if err := ValidateDate(e.Date); err != nil {
			return EntryList{}, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return list, nil
}

// ParseIndex parses a removal index as shown in entry listings
func ParseIndex(input string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("%w: invalid index %q", ErrParse, input)
	}
	return idx, nil
}
