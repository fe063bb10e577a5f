// Package postmark provides a Postmark-backed implementation of the
// mail.Sender interface, for deployments that deliver through Postmark's
// transactional API instead of raw SMTP.
package postmark
