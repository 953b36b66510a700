package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

// CreateParams is a booking request. Date is either a calendar date
// (YYYY-MM-DD) combined with Time (HH:MM), or a full RFC 3339 timestamp with
// Time left empty.
type CreateParams struct {
	Activity string `json:"activity" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Time     string `json:"time"`
}

type Service struct {
	repo     Repo
	validate *validator.Validate
	location *time.Location
}

type ServiceOption func(*Service)

// WithLocation sets the time zone used for date/time pairs without an offset.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		s.location = loc
	}
}

func NewService(repo Repo, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] bookings repo is required")
	}
	s := &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		location: time.UTC,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Create books an activity for userID. The owner always comes from the
// authenticated session, never from the request body.
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Booking, error) {
	if userID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[Create] missing user")
	}
	params.Activity = strings.TrimSpace(params.Activity)
	if err := s.validate.Struct(params); err != nil {
		return nil, apperrors.Wrapf(apperrors.Public(apperrors.ErrInvalidRequest, "all fields are required"), "[Create]")
	}
	if !IsActivity(params.Activity) {
		return nil, apperrors.Wrapf(apperrors.Public(apperrors.ErrInvalidRequest, "unknown activity %q", params.Activity), "[Create]")
	}

	when, err := s.parseWhen(params.Date, params.Time)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.Public(apperrors.ErrInvalidRequest, "%s", err.Error()), "[Create]")
	}

	booking := &Booking{
		UserID:   userID,
		Activity: params.Activity,
		Date:     when,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, apperrors.Wrapf(err, "[Create] failed to store booking")
	}
	return booking, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Booking, error) {
	if userID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[ListForUser] missing user")
	}
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[ListForUser] failed to list bookings for %s", userID)
	}
	return list, nil
}

func (s *Service) parseWhen(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date or time format")
		}
		return t.UTC(), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return time.Time{}, fmt.Errorf("invalid date format")
	}
	t, err := time.ParseInLocation(dateTimeLayout, date+"T"+clock, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format")
	}
	return t.UTC(), nil
}
