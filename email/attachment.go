package email

import "io"

// Attachment is a named binary part of a message. The client reads Content
// from its start when the message is serialized and consumes it fully; it
// does not close the stream, and doesn't own it beyond the send.
type Attachment struct {
	Name    string
	Content io.ReadSeeker
}
