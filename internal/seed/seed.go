// Package seed fills a fresh database with permission groups, accounts and
// sample medications.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/auth"
	"github.com/elskow/medtrack/internal/config"
	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/medication"
	"github.com/elskow/medtrack/internal/permission"
)

const (
	CommandGroups      = "groups"
	CommandAdmin       = "admin"
	CommandUsers       = "users"
	CommandMedications = "medications"
	CommandAll         = "all"
)

const DefaultPassword = "password123"

var ErrNoAdminPassword = errors.New("bootstrap.admin_password is not set")

func strPtr(s string) *string { return &s }

var sampleMedications = []medication.Medication{
	{Name: "Paracetamol", Dosage: "500mg", Quantity: 20, Instructions: strPtr("Take one tablet every 6 hours as needed for pain.")},
	{Name: "Ibuprofen", Dosage: "200mg", Quantity: 15, Instructions: strPtr("Take one tablet every 4-6 hours with food to reduce inflammation.")},
	{Name: "Amoxicillin", Dosage: "250mg", Quantity: 30, Instructions: strPtr("Take one capsule every 8 hours for 10 days.")},
	{Name: "Aspirin", Dosage: "81mg", Quantity: 25, Instructions: strPtr("Take one tablet daily for heart health, or as directed by a doctor.")},
	{Name: "Metformin", Dosage: "500mg", Quantity: 60, Instructions: strPtr("Take one tablet twice daily with meals to manage blood sugar levels.")},
}

type Seeder struct {
	groups      *permission.Seeder
	users       *auth.Service
	medications medication.Repository
	bootstrap   *config.BootstrapConfig
	log         *zap.Logger
	rand        *rand.Rand
}

func New(
	groups *permission.Seeder,
	users *auth.Service,
	medications medication.Repository,
	bootstrap *config.BootstrapConfig,
	log *zap.Logger,
) *Seeder {
	return &Seeder{
		groups:      groups,
		users:       users,
		medications: medications,
		bootstrap:   bootstrap,
		log:         log,
		rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Run executes one seeding command. "all" runs groups, admin and
// medications in that order, then users when count is positive.
func (s *Seeder) Run(ctx context.Context, command string, count int, password string) error {
	switch command {
	case CommandGroups:
		return s.Groups(ctx)
	case CommandAdmin:
		_, err := s.Admin(ctx)
		return err
	case CommandUsers:
		_, err := s.Users(ctx, count, password)
		return err
	case CommandMedications:
		_, err := s.Medications(ctx)
		return err
	case CommandAll:
		if err := s.Groups(ctx); err != nil {
			return err
		}
		if _, err := s.Admin(ctx); err != nil && !errors.Is(err, ErrNoAdminPassword) {
			return err
		}
		if _, err := s.Medications(ctx); err != nil {
			return err
		}
		if count > 0 {
			if _, err := s.Users(ctx, count, password); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown seed command %q", command)
	}
}

func (s *Seeder) Groups(ctx context.Context) error {
	if err := s.groups.Seed(ctx); err != nil {
		return err
	}
	s.log.Info("All groups and permissions have been seeded")
	return nil
}

// Admin creates the bootstrap administrator. An existing account with the
// same username is left untouched.
func (s *Seeder) Admin(ctx context.Context) (*auth.User, error) {
	if s.bootstrap.AdminPassword == "" {
		s.log.Warn("Skipping admin account", zap.Error(ErrNoAdminPassword))
		return nil, ErrNoAdminPassword
	}

	user, err := s.users.Provision(ctx,
		s.bootstrap.AdminUsername, s.bootstrap.AdminEmail, s.bootstrap.AdminPassword, identity.RoleAdmin)
	if errors.Is(err, auth.ErrUserExists) {
		s.log.Warn("Admin account already exists", zap.String("username", s.bootstrap.AdminUsername))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, nil
}

// Users creates count accounts with random usernames and roles. The
// password bypasses the password policy.
func (s *Seeder) Users(ctx context.Context, count int, password string) ([]string, error) {
	if password == "" {
		password = DefaultPassword
	}

	names := make([]string, 0, count)
	for len(names) < count {
		username := s.randomUsername()
		role := identity.RoleUser
		if s.rand.IntN(2) == 1 {
			role = identity.RoleAdmin
		}

		_, err := s.users.Provision(ctx, username, strings.ToLower(username)+"@example.com", password, role)
		if errors.Is(err, auth.ErrUserExists) {
			continue
		}
		if err != nil {
			return names, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		names = append(names, username)
	}

	s.log.Info("Created users", zap.Int("count", len(names)), zap.Strings("usernames", names))
	return names, nil
}

// Medications adds the sample catalog, credited to the first admin. Without
// an admin nothing is added.
func (s *Seeder) Medications(ctx context.Context) (int, error) {
	admin, err := s.users.FirstAdmin(ctx)
	if errors.Is(err, auth.ErrUserNotFound) {
		s.log.Warn("No admins found in the database. Please create at least one admin first.")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	added := 0
	for _, sample := range sampleMedications {
		m := medication.Medication{
			Name:         sample.Name,
			Dosage:       sample.Dosage,
			Quantity:     sample.Quantity,
			Instructions: strPtr(*sample.Instructions),
			AddedByID:    &admin.ID,
		}

		created, err := s.medications.CreateIfAbsent(ctx, &m)
		if err != nil {
			return added, fmt.Errorf("failed to add medication %s: %w", m.Name, err)
		}
		if created {
			added++
			s.log.Info("Added medication", zap.String("name", m.Name))
		} else {
			s.log.Warn("Medication already exists", zap.String("name", m.Name))
		}
	}
	return added, nil
}

const usernameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (s *Seeder) randomUsername() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = usernameAlphabet[s.rand.IntN(len(usernameAlphabet))]
	}
	return string(b)
}
