package reply

import "github.com/valpere/sentinel/internal"

const (
	PositiveReply = "Thank you so much! We are thrilled you enjoyed our service."
	NegativeReply = "We are truly sorry. Please DM us so we can fix this immediately."
	NeutralReply  = "Thank you for your feedback."
)

// Compose returns the canned English reply for label. Unknown labels get the
// neutral reply.
func Compose(label internal.Label) string {
	switch label {
	case internal.Positive:
		return PositiveReply
	case internal.Negative:
		return NegativeReply
	default:
		return NeutralReply
	}
}
