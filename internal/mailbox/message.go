package mailbox

// Header is one name/value pair of a message header block.
type Header struct {
	Name  string
	Value string
}

// Part is a node of the message payload tree. Data is the provider's raw
// web-safe base64 body and is left undecoded.
type Part struct {
	MimeType string
	Data     string
	Parts    []Part
}

// Message is the detail view of a single mailbox message.
type Message struct {
	ID      string
	Headers []Header
	Payload Part
}
