// Package mail defines the message model shared by every sending provider:
// validated messages with attachments, inline resources, CC/BCC handling,
// the Sender interface and its Result reporting contract.
//
// A Message is a plain value object. Construction validates recipient
// syntax and attachment shape but performs no I/O; attachment bytes are
// read from disk only when a provider assembles the wire message.
//
//	msg, err := mail.NewMessage(
//		[]string{"user@example.com"},
//		"Welcome",
//		"<h1>Hello!</h1>",
//		mail.WithHTML(),
//		mail.WithBcc("audit@example.com"),
//	)
//	if err != nil {
//		// malformed address or attachment
//	}
//
//	res, err := sender.Send(ctx, msg)
//	if err != nil {
//		// pre-flight failure: validation or misuse, nothing was sent
//	}
//	if !res.Success {
//		log.Warn("delivery failed", "reason", res.ErrorMessage)
//	}
//
// The error split is deliberate: errors that occur before any network I/O
// propagate to the caller, while transport failures are captured inside the
// Result so bulk and async callers can inspect partial success.
//
// DevSender implements Sender for local development by writing messages to
// a directory as body + JSON metadata files.
package mail
