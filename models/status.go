// ABOUTME: Outreach pipeline status for prospects
// ABOUTME: Thirteen ordered stages ending in a terminal Cancelled value
package models

import (
	"regexp"
	"strconv"
)

// ContactStatus is a stage of the outreach pipeline.
type ContactStatus string

const (
	StatusNotStarted          ContactStatus = "Not Started (1/12)"
	StatusSentConnection      ContactStatus = "Sent Connection (2/12)"
	StatusAcceptedConnection  ContactStatus = "Accepted Connection (3/12)"
	StatusSentInitialMessage  ContactStatus = "Sent Initial Message (4/12)"
	StatusConversationStarted ContactStatus = "Conversation Started (5/12)"
	StatusAskedReport         ContactStatus = "Asked Report (6/12)"
	StatusSentReport          ContactStatus = "Sent Report (7/12)"
	StatusAskedMockup         ContactStatus = "Asked Mockup (8/12)"
	StatusSentMockup          ContactStatus = "Sent Mockup (9/12)"
	StatusSentQuotation       ContactStatus = "Sent Quotation (10/12)"
	StatusPaymentDone         ContactStatus = "Payment Done (11/12)"
	StatusDeliveryDone        ContactStatus = "Delivery Done (12/12)"
	StatusCancelled           ContactStatus = "Cancelled"
)

var statuses = []ContactStatus{
	StatusNotStarted,
	StatusSentConnection,
	StatusAcceptedConnection,
	StatusSentInitialMessage,
	StatusConversationStarted,
	StatusAskedReport,
	StatusSentReport,
	StatusAskedMockup,
	StatusSentMockup,
	StatusSentQuotation,
	StatusPaymentDone,
	StatusDeliveryDone,
	StatusCancelled,
}

var stepPattern = regexp.MustCompile(`\((\d+)/(\d+)\)`)

// AllStatuses returns the pipeline in order.
func AllStatuses() []ContactStatus {
	out := make([]ContactStatus, len(statuses))
	copy(out, statuses)
	return out
}

// Valid reports whether s is one of the known stages.
func (s ContactStatus) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Step parses the "(n/m)" progress suffix. Cancelled has none.
func (s ContactStatus) Step() (step, total int, ok bool) {
	m := stepPattern.FindStringSubmatch(string(s))
	if m == nil {
		return 0, 0, false
	}
	step, _ = strconv.Atoi(m[1])
	total, _ = strconv.Atoi(m[2])
	return step, total, true
}

// IsTerminal reports whether no further stage follows.
func (s ContactStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusDeliveryDone
}

// Next returns the following stage. Terminal and unknown stages stay put.
func (s ContactStatus) Next() ContactStatus {
	if s.IsTerminal() {
		return s
	}
	for i, known := range statuses {
		if s == known && i+1 < len(statuses) {
			return statuses[i+1]
		}
	}
	return s
}

// ParseStatus matches a stage by exact value or by step number ("3").
func ParseStatus(raw string) (ContactStatus, bool) {
	s := ContactStatus(raw)
	if s.Valid() {
		return s, true
	}
	if raw == "cancelled" {
		return StatusCancelled, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", false
	}
	for _, known := range statuses {
		if step, _, ok := known.Step(); ok && step == n {
			return known, true
		}
	}
	return "", false
}
