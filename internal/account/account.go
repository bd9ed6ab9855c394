// Package account runs the login, signup and address flows: validate the
// input, call the backend, then mirror the result into the session.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/session"
)

// States accepted for addresses.
var States = []string{"Assam", "Manipur", "Mizoram", "Meghalaya", "Nagaland", "Tripura"}

// AddressTypes accepted for addresses.
var AddressTypes = []string{"Home", "Work"}

// Genders accepted at signup.
var Genders = []string{"male", "female"}

var (
	ErrNoUser       = errors.New("please create a user first")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Backend is the part of the REST API the flows need.
type Backend interface {
	Login(ctx context.Context, email string) (api.User, error)
	CreateUser(ctx context.Context, profile api.Profile) (api.User, error)
	CreateAddress(ctx context.Context, userID string, addr api.Address) (api.Address, error)
	UpdateAddress(ctx context.Context, userID string, addr api.Address) (api.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

// Service wires the backend to the session.
type Service struct {
	backend Backend
	session *session.Session
	logger  *zap.Logger
}

// New returns a Service.
func New(backend Backend, sess *session.Session, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, session: sess, logger: logger}
}

// Login looks the user up by email and makes them the active session.
func (s *Service) Login(ctx context.Context, email string) (api.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return api.User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	u, err := s.backend.Login(ctx, email)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Message != "" {
			return api.User{}, errors.New(se.Message)
		}
		return api.User{}, err
	}
	if err := s.adopt(ctx, u); err != nil {
		return u, err
	}
	s.logger.Info("logged in", zap.String("user_id", u.ID))
	return u, nil
}

// Signup registers a profile and makes it the active session.
func (s *Service) Signup(ctx context.Context, p api.Profile) (api.User, error) {
	p = normalizeProfile(p)
	if err := ValidateProfile(p); err != nil {
		return api.User{}, err
	}
	u, err := s.backend.CreateUser(ctx, p)
	if err != nil {
		return api.User{}, fmt.Errorf("create user: %w", err)
	}
	if err := s.adopt(ctx, u); err != nil {
		return u, err
	}
	s.logger.Info("signed up", zap.String("user_id", u.ID))
	return u, nil
}

func (s *Service) adopt(ctx context.Context, u api.User) error {
	if err := s.session.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if err := s.session.SetActiveUserID(ctx, u.ID); err != nil {
		return fmt.Errorf("save user id: %w", err)
	}
	return nil
}

// AddAddress creates an address for the active user, appends it to the
// session and selects it for orders.
func (s *Service) AddAddress(ctx context.Context, addr api.Address) (api.Address, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return api.Address{}, err
	}
	addr = normalizeAddress(addr)
	if err := ValidateAddress(addr); err != nil {
		return api.Address{}, err
	}
	created, err := s.backend.CreateAddress(ctx, userID, addr)
	if err != nil {
		return api.Address{}, fmt.Errorf("create address: %w", err)
	}
	if err := s.session.UpdateAddress(ctx, created); err != nil {
		return created, err
	}
	if err := s.session.SelectAddress(ctx, created.ID); err != nil {
		return created, fmt.Errorf("select address: %w", err)
	}
	return created, nil
}

// EditAddress updates an existing address of the active user.
func (s *Service) EditAddress(ctx context.Context, addr api.Address) (api.Address, error) {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return api.Address{}, err
	}
	addr = normalizeAddress(addr)
	if addr.ID == "" {
		return api.Address{}, fmt.Errorf("%w: address id is required", ErrInvalidInput)
	}
	if err := ValidateAddress(addr); err != nil {
		return api.Address{}, err
	}
	updated, err := s.backend.UpdateAddress(ctx, userID, addr)
	if err != nil {
		return api.Address{}, fmt.Errorf("update address: %w", err)
	}
	if updated.ID == "" {
		updated.ID = addr.ID
	}
	if err := s.session.UpdateAddress(ctx, updated); err != nil {
		return updated, err
	}
	return updated, nil
}

// DeleteAddress removes an address. The selection is cleared when it
// pointed at the deleted address.
func (s *Service) DeleteAddress(ctx context.Context, addressID string) error {
	userID, err := s.requireUser(ctx)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteAddress(ctx, userID, addressID); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if err := s.session.RemoveAddress(ctx, addressID); err != nil {
		return err
	}
	selected, err := s.session.SelectedAddressID(ctx)
	if err == nil && selected == addressID {
		return s.session.SelectAddress(ctx, "")
	}
	return nil
}

// SelectAddress marks an address of the active user for orders.
func (s *Service) SelectAddress(ctx context.Context, addressID string) error {
	u, ok := s.session.User()
	if !ok {
		return ErrNoUser
	}
	if !slices.ContainsFunc(u.Addresses, func(a api.Address) bool { return a.ID == addressID }) {
		return fmt.Errorf("%w: unknown address %q", ErrInvalidInput, addressID)
	}
	return s.session.SelectAddress(ctx, addressID)
}

// Logout ends the session.
func (s *Service) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

func (s *Service) requireUser(ctx context.Context) (string, error) {
	if u, ok := s.session.User(); ok && u.ID != "" {
		return u.ID, nil
	}
	id, err := s.session.ActiveUserID(ctx)
	if err != nil {
		return "", fmt.Errorf("read user id: %w", err)
	}
	if id == "" {
		return "", ErrNoUser
	}
	return id, nil
}

// ValidateProfile checks the signup fields.
func ValidateProfile(p api.Profile) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", p.Name}, {"surname", p.Surname}, {"gender", p.Gender}, {"email", p.Email}, {"phone", p.Phone},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !slices.Contains(Genders, p.Gender) {
		return fmt.Errorf("%w: gender must be one of %s", ErrInvalidInput, strings.Join(Genders, ", "))
	}
	if !emailPattern.MatchString(p.Email) {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidInput, p.Email)
	}
	return nil
}

// ValidateAddress checks the address fields.
func ValidateAddress(a api.Address) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"area", a.Area}, {"city", a.City}, {"state", a.State}, {"pincode", string(a.Pincode)}, {"address type", a.AddressType},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !slices.Contains(States, a.State) {
		return fmt.Errorf("%w: state must be one of %s", ErrInvalidInput, strings.Join(States, ", "))
	}
	if !slices.Contains(AddressTypes, a.AddressType) {
		return fmt.Errorf("%w: address type must be Home or Work", ErrInvalidInput)
	}
	if !pincodePattern.MatchString(string(a.Pincode)) {
		return fmt.Errorf("%w: pincode must be 6 digits", ErrInvalidInput)
	}
	return nil
}

func normalizeProfile(p api.Profile) api.Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	return p
}

func normalizeAddress(a api.Address) api.Address {
	a.ID = strings.TrimSpace(a.ID)
	a.Area = strings.TrimSpace(a.Area)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = api.FlexString(strings.TrimSpace(string(a.Pincode)))
	a.Landmark = strings.TrimSpace(a.Landmark)
	a.AlternatePhone = strings.TrimSpace(a.AlternatePhone)
	if t := strings.TrimSpace(a.AddressType); t != "" {
		a.AddressType = strings.ToUpper(t[:1]) + strings.ToLower(t[1:])
	}
	return a
}
