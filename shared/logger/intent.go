package logger

// Intent tags a message with the kind of event it reports.
type Intent int

const (
	IntentVerbose Intent = iota
	IntentInfo
	IntentWarning
	IntentUser
	IntentAppleError
	IntentPurchase
	IntentRCError
	IntentRCSuccess
)

// Prefix is prepended to messages logged with the intent.
func (i Intent) Prefix() string {
	switch i {
	case IntentInfo:
		return "ℹ️"
	case IntentWarning:
		return "⚠️"
	case IntentUser:
		return "👤"
	case IntentAppleError:
		return "🍎‼️"
	case IntentPurchase:
		return "💰"
	case IntentRCError:
		return "😿‼️"
	case IntentRCSuccess:
		return "😻"
	default:
		return ""
	}
}

func (i Intent) decorate(msg string) string {
	if p := i.Prefix(); p != "" {
		return p + " " + msg
	}
	return msg
}
