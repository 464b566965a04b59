package business

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hookpost/console-agent/internal/apiclient"
	"github.com/hookpost/console-agent/internal/config"
)

// LoginMain logs in with credentials taken from CONSOLE_AGENT_EMAIL /
// CONSOLE_AGENT_PASSWORD, prompting on stdin for whatever is missing, and
// persists the resulting session.
func LoginMain(ctx context.Context, cfg *config.Config) error {
	manager, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}

	defer closeFn()

	email, err := promptedValue("Email", os.Getenv("CONSOLE_AGENT_EMAIL"))
	if err != nil {
		return err
	}
	password, err := promptedValue("Password", os.Getenv("CONSOLE_AGENT_PASSWORD"))
	if err != nil {
		return err
	}

	if err := manager.Login(ctx, email, password); err != nil {
		return err
	}

	info := manager.UserInfo()
	slogctx.Info(ctx, "Logged in", "email", info.Email, "name", info.Name)

	return nil
}

// LogoutMain clears the stored session, best-effort invalidating it
// server-side first.
func LogoutMain(ctx context.Context, cfg *config.Config) error {
	manager, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}

	defer closeFn()

	if err := manager.Rehydrate(ctx); err != nil {
		return fmt.Errorf("rehydrating the session: %w", err)
	}

	if !manager.LoggedIn() {
		slogctx.Info(ctx, "No session stored, nothing to log out")
		return nil
	}

	manager.Logout(ctx)
	slogctx.Info(ctx, "Logged out")

	return nil
}

// RegisterMain creates a new user account and its personal organization.
func RegisterMain(ctx context.Context, cfg *config.Config) error {
	manager, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}

	defer closeFn()

	req := apiclient.RegistrationRequest{}
	if req.Email, err = promptedValue("Email", os.Getenv("CONSOLE_AGENT_EMAIL")); err != nil {
		return err
	}
	if req.FirstName, err = promptedValue("First name", ""); err != nil {
		return err
	}
	if req.LastName, err = promptedValue("Last name", ""); err != nil {
		return err
	}
	if req.Password, err = promptedValue("Password", os.Getenv("CONSOLE_AGENT_PASSWORD")); err != nil {
		return err
	}

	created, err := manager.Register(ctx, req)
	if err != nil {
		return err
	}

	slogctx.Info(ctx, "Account created",
		"user_id", created.UserID,
		"organization_id", created.OrganizationID,
	)

	return nil
}

// WhoamiMain prints the identity of the stored session.
func WhoamiMain(ctx context.Context, cfg *config.Config) error {
	manager, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}

	defer closeFn()

	if err := manager.Rehydrate(ctx); err != nil {
		return fmt.Errorf("rehydrating the session: %w", err)
	}

	s := manager.Session()
	if s == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	info := manager.UserInfo()
	fmt.Printf("Logged in as %s <%s>\n", info.Name, info.Email)
	fmt.Printf("Access token expires at %s\n", s.AccessTokenExpiration.Local())
	fmt.Printf("Refresh token expires at %s\n", s.RefreshTokenExpiration.Local())

	if claims, err := manager.Claims(); err == nil {
		fmt.Println("Access token claims:")
		for key, value := range claims {
			fmt.Printf("  %s: %v\n", key, value)
		}
	}

	return nil
}

func promptedValue(label, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}

	fmt.Printf("%s: ", label)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading %s from stdin: %w", strings.ToLower(label), err)
	}

	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("%s must not be empty", strings.ToLower(label))
	}

	return value, nil
}
