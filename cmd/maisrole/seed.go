package main

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/maisrole-api/internal/application"
	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/router"
)

type seedOptions struct {
	adminUsername string
	adminEmail    string
	adminPassword string
	hostEmail     string
	hostPassword  string
}

// NewSeedCmd creates the seed command: one admin user and one demo host.
// Accounts that already exist are left untouched.
func NewSeedCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user and a demo host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, logger := loadBase()
			pool, err := connectPostgres(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()
			setupSecurity(cfg, logger)
			return seed(ctx, router.BuildAccountDeps(), opts, logger)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.adminUsername, "admin-username", "admin", "admin username")
	f.StringVar(&opts.adminEmail, "admin-email", "admin@maisrole.local", "admin email")
	f.StringVar(&opts.adminPassword, "admin-password", "change-me-now", "admin password")
	f.StringVar(&opts.hostEmail, "host-email", "host@maisrole.local", "demo host email")
	f.StringVar(&opts.hostPassword, "host-password", "change-me-now", "demo host password")
	return cmd
}

func seed(ctx context.Context, deps router.AccountDeps, opts seedOptions, logger *logrus.Logger) error {
	admin, err := deps.Users.Register(ctx, application.RegisterUserInput{
		Username: opts.adminUsername,
		Password: opts.adminPassword,
		PersonalData: entity.UserPersonalData{
			FirstName: "Site",
			LastName:  "Admin",
			Email:     opts.adminEmail,
		},
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		logger.WithField("username", opts.adminUsername).Info("admin already seeded")
	case err != nil:
		return oops.Code("SEED_ADMIN_FAILED").Wrap(err)
	default:
		if _, err := deps.Users.Update(ctx, admin.ID, application.UpdateUserInput{
			Roles: []entity.Role{entity.RoleUser, entity.RoleAdmin},
		}); err != nil {
			return oops.Code("SEED_ADMIN_ROLES_FAILED").With("id", admin.ID).Wrap(err)
		}
		logger.WithFields(logrus.Fields{"id": admin.ID, "username": admin.Username}).Info("seeded admin user")
	}

	host, err := deps.Hosts.Register(ctx, application.RegisterHostInput{
		Name:     "Demo Host",
		Password: opts.hostPassword,
		Contact:  entity.Contact{Email: opts.hostEmail, Phone: "+15550100"},
		Agenda:   []entity.Weekday{entity.Friday, entity.Saturday, entity.Sunday},
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		logger.WithField("email", opts.hostEmail).Info("demo host already seeded")
	case err != nil:
		return oops.Code("SEED_HOST_FAILED").Wrap(err)
	default:
		logger.WithFields(logrus.Fields{"id": host.ID, "email": host.Contact.Email}).Info("seeded demo host")
	}
	return nil
}
