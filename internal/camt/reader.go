package camt

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

const isoDateFormat = "2006-01-02"

// ReadReport decodes a BankToCustomerAccountReportV02 document and returns
// its first account report.
func ReadReport(r io.Reader) (Report, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Report{}, fmt.Errorf("decoding account report: %w", err)
	}

	if len(doc.Report.Reports) == 0 {
		return Report{}, fmt.Errorf("message %s contains no reports", doc.Report.GroupHeader.MessageID)
	}
	return doc.Report.Reports[0], nil
}

// ResolveDate converts a date-or-datetime choice into an instant. Date-only
// values are taken at start of day in the given location.
func ResolveDate(choice *DateChoice, loc *time.Location) (time.Time, error) {
	if choice == nil {
		return time.Time{}, fmt.Errorf("missing date")
	}

	if choice.DateTime != "" {
		t, err := time.ParseInLocation(time.RFC3339, choice.DateTime, loc)
		if err != nil {
			// Some banks omit the offset from DtTm values.
			t, err = time.ParseInLocation("2006-01-02T15:04:05", choice.DateTime, loc)
			if err != nil {
				return time.Time{}, fmt.Errorf("parsing datetime %q: %w", choice.DateTime, err)
			}
		}
		return t, nil
	}

	if choice.Date != "" {
		t, err := time.ParseInLocation(isoDateFormat, choice.Date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing date %q: %w", choice.Date, err)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("date choice contains no values")
}
