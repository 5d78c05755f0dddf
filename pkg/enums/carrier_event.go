package enums

// CarrierEvent is the closed set of webhook event tags the delivery
// carrier pushes. Unrecognized tags map to CarrierEventUnknown and are
// acknowledged without mutation so the carrier stops retrying.
type CarrierEvent string

const (
	CarrierEventHandshake          CarrierEvent = "webhook_handshake"
	CarrierEventConsignmentCreated CarrierEvent = "consignment_created"
	CarrierEventConsignmentUpdated CarrierEvent = "consignment_updated"
	CarrierEventDelivered          CarrierEvent = "delivered"
	CarrierEventReturned           CarrierEvent = "returned"
	CarrierEventDeliveryFailed     CarrierEvent = "delivery_failed"
	CarrierEventUnknown            CarrierEvent = "unknown"
)

var validCarrierEvents = []CarrierEvent{
	CarrierEventHandshake,
	CarrierEventConsignmentCreated,
	CarrierEventConsignmentUpdated,
	CarrierEventDelivered,
	CarrierEventReturned,
	CarrierEventDeliveryFailed,
}

// String implements fmt.Stringer.
func (c CarrierEvent) String() string {
	return string(c)
}

// RequiresSignature reports whether the event must carry the shared-secret
// signature header. Only the setup handshake is exempt.
func (c CarrierEvent) RequiresSignature() bool {
	return c != CarrierEventHandshake
}

// ParseCarrierEvent maps a raw event tag onto the closed set, falling back
// to CarrierEventUnknown instead of failing.
func ParseCarrierEvent(value string) CarrierEvent {
	for _, candidate := range validCarrierEvents {
		if string(candidate) == value {
			return candidate
		}
	}
	return CarrierEventUnknown
}
