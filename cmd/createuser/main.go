package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/gorm"

	"qcs/internal/config"
	"qcs/internal/db"
	applog "qcs/internal/log"
	"qcs/models"
)

var openDatabase = func() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return db.Configure(cfg.Database)
}

var errUserExists = errors.New("user already exists")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "createuser: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("createuser", flag.ContinueOnError)
	email := flags.String("email", "", "login email address")
	name := flags.String("name", "", "display name")
	password := flags.String("password", "", "password (defaults to $QCS_PASSWORD)")
	update := flags.Bool("update", false, "reset the password and name of an existing user")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		*password = os.Getenv("QCS_PASSWORD")
	}
	if strings.TrimSpace(*email) == "" || !strings.Contains(*email, "@") {
		return fmt.Errorf("a valid -email is required")
	}
	if len(*password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	database, err := openDatabase()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	user, created, err := saveUser(ctx, database, *email, *name, *password, *update)
	if err != nil {
		return err
	}

	action := "Updated"
	if created {
		action = "Created"
	}
	applog.Info(ctx, "user saved", "user_id", user.ID, "created", created)
	fmt.Fprintf(stdout, "%s user %s (id %d)\n", action, user.Email, user.ID)
	return nil
}

func saveUser(ctx context.Context, database *gorm.DB, email, name, password string, update bool) (*models.User, bool, error) {
	candidate, err := models.NewUser(email, name, password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	var existing models.User
	err = database.WithContext(ctx).Where("email = ?", candidate.Email).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := database.WithContext(ctx).Create(candidate).Error; err != nil {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		return candidate, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	if !update {
		return nil, false, fmt.Errorf("%w: %s", errUserExists, candidate.Email)
	}

	existing.PasswordHash = candidate.PasswordHash
	if candidate.Name != "" {
		existing.Name = candidate.Name
	}
	if err := database.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("update user: %w", err)
	}
	return &existing, false, nil
}
