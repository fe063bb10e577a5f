package mail

import "errors"

// Error variables define mail operation failures that can be wrapped with
// detailed context using errors.Join() or fmt.Errorf("%w") for reporting.
var (
	ErrInvalidConfig     = errors.New("invalid mailer configuration")
	ErrInvalidMessage    = errors.New("invalid email message")
	ErrInvalidAttachment = errors.New("invalid email attachment")
	ErrConnectionFailed  = errors.New("failed to connect to mail server")
	ErrDeliveryFailed    = errors.New("failed to deliver email")
	ErrMailerClosed      = errors.New("mailer is closed")
	ErrTemplateNotFound  = errors.New("email template not found")
	ErrTemplateRender    = errors.New("failed to render email template")
)
