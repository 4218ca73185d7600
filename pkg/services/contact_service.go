package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"dpformance-site/pkg/models"
)

// Contact errors. Handlers map them to status codes with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrMissingFields = fmt.Errorf("%w: missing required fields", ErrValidation)
	ErrThrottled     = errors.New("too many submissions, try again later")
	ErrDelivery      = errors.New("failed to send email")
)

const (
	contactSubject  = "New Contact Form Submission"
	maxNameLength   = 200
	maxPhoneLength  = 40
	maxMessageBytes = 10000
)

// ContactService validates contact form submissions and relays them to a
// fixed recipient.
type ContactService struct {
	mailer    Mailer
	recipient string
	limit     int
	window    time.Duration
	throttle  *cache.Cache
	logger    zerolog.Logger
}

// NewContactService creates a contact relay. A limit of zero disables the
// per-client throttle.
func NewContactService(mailer Mailer, recipient string, limit int, window time.Duration, logger zerolog.Logger) *ContactService {
	return &ContactService{
		mailer:    mailer,
		recipient: recipient,
		limit:     limit,
		window:    window,
		throttle:  cache.New(window, 2*window),
		logger:    logger.With().Str("component", "contact").Logger(),
	}
}

// Window is the throttle window; clients over the limit may retry after it
func (s *ContactService) Window() time.Duration {
	return s.window
}

// Normalize trims surrounding whitespace from every field
func Normalize(sub models.ContactSubmission) models.ContactSubmission {
	return models.ContactSubmission{
		Name:    strings.TrimSpace(sub.Name),
		Email:   strings.TrimSpace(sub.Email),
		Phone:   strings.TrimSpace(sub.Phone),
		Message: strings.TrimSpace(sub.Message),
	}
}

// Validate checks a normalized submission. Missing name, email or message
// yields ErrMissingFields; malformed values yield ErrValidation.
func Validate(sub models.ContactSubmission) error {
	err := validation.ValidateStruct(&sub,
		validation.Field(&sub.Name, validation.Required),
		validation.Field(&sub.Email, validation.Required),
		validation.Field(&sub.Message, validation.Required),
	)
	if err != nil {
		return ErrMissingFields
	}

	err = validation.ValidateStruct(&sub,
		validation.Field(&sub.Name, validation.RuneLength(1, maxNameLength)),
		validation.Field(&sub.Email, is.EmailFormat),
		validation.Field(&sub.Phone, validation.RuneLength(0, maxPhoneLength)),
		validation.Field(&sub.Message, validation.Length(1, maxMessageBytes)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Submit validates sub, applies the per-client throttle and sends the
// message. clientKey identifies the sender (usually the remote IP). The
// returned ID is attached to the outgoing mail and logged.
func (s *ContactService) Submit(ctx context.Context, clientKey string, sub models.ContactSubmission) (string, error) {
	sub = Normalize(sub)
	if err := Validate(sub); err != nil {
		return "", err
	}

	if !s.allow(clientKey) {
		s.logger.Warn().Str("client", clientKey).Msg("contact submission throttled")
		return "", ErrThrottled
	}

	id := uuid.NewString()
	msg := Message{
		ID:      id,
		To:      s.recipient,
		ReplyTo: sub.Email,
		Subject: contactSubject,
		Body:    FormatContactBody(sub),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("submission_id", id).Msg("email send error")
		return id, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	s.logger.Info().Str("submission_id", id).Str("client", clientKey).Msg("contact submission relayed")
	return id, nil
}

// FormatContactBody renders the plain-text body of a relayed submission
func FormatContactBody(sub models.ContactSubmission) string {
	phone := sub.Phone
	if phone == "" {
		phone = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", sub.Name)
	fmt.Fprintf(&b, "Email: %s\n", sub.Email)
	fmt.Fprintf(&b, "Phone: %s\n", phone)
	b.WriteString("Message:\n")
	b.WriteString(sub.Message)
	b.WriteString("\n")
	return b.String()
}

// allow counts a submission for key and reports whether it is within the limit
func (s *ContactService) allow(key string) bool {
	if s.limit <= 0 {
		return true
	}

	if err := s.throttle.Add(key, 1, cache.DefaultExpiration); err == nil {
		return true
	}

	n, err := s.throttle.IncrementInt(key, 1)
	if err != nil {
		// expired between Add and Increment
		s.throttle.Set(key, 1, cache.DefaultExpiration)
		return true
	}
	return n <= s.limit
}
