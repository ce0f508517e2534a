package enums

import "fmt"

// LineItemStatus tracks per-line fulfillment independently of the order
// header. The supplier owning the line's product drives these transitions.
type LineItemStatus string

const (
	LineItemStatusPending    LineItemStatus = "pending"
	LineItemStatusProcessing LineItemStatus = "processing"
	LineItemStatusShipped    LineItemStatus = "shipped"
	LineItemStatusDelivered  LineItemStatus = "delivered"
	LineItemStatusCancelled  LineItemStatus = "cancelled"
)

var validLineItemStatuses = []LineItemStatus{
	LineItemStatusPending,
	LineItemStatusProcessing,
	LineItemStatusShipped,
	LineItemStatusDelivered,
	LineItemStatusCancelled,
}

// String implements fmt.Stringer.
func (l LineItemStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineItemStatus.
func (l LineItemStatus) IsValid() bool {
	for _, candidate := range validLineItemStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLineItemStatus converts raw input into a LineItemStatus.
func ParseLineItemStatus(value string) (LineItemStatus, error) {
	for _, candidate := range validLineItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item status %q", value)
}
