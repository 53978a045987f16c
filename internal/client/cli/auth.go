package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ridegate/internal/client/claims"
	"github.com/dmitrijs2005/ridegate/internal/client/client"
	"github.com/dmitrijs2005/ridegate/internal/client/models"
	"github.com/dmitrijs2005/ridegate/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. On success the client lands
// on the dashboard of the user's role; on failure the server's message (or
// a generic one) is printed and the error returned.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.session.Login(ctx, username, string(password))
	if err != nil {
		fmt.Fprintln(a.out, client.UserMessage(err, client.MsgLoginFailed))
		return err
	}

	fmt.Fprintln(a.out, "Welcome back!")
	a.guard.Visit(a.guard.Home())
	a.log.Debug(ctx, "landed on home page", "username", id.Username, "path", a.nav.Current())
	return nil
}

// field is one line of a registration form.
type field struct {
	prompt string
	dst    *string
}

// Register prompts for a new account. Drivers additionally provide their
// national ID and license number. Registration does not sign in; the client
// is sent to the login page instead.
func (a *App) Register(ctx context.Context) error {
	roleText, err := getSimpleText(a.reader, "Register as passenger or driver? [passenger]", a.out)
	if err != nil {
		return err
	}
	role := claims.RolePassenger
	if roleText != "" {
		r, ok := claims.ParseRole(roleText)
		if !ok || r == claims.RoleAdmin {
			fmt.Fprintln(a.out, "Unknown role:", roleText)
			return fmt.Errorf("unsupported role %q", roleText)
		}
		role = r
	}

	var data models.DriverRegistration
	fields := []field{
		{"Enter username", &data.Username},
		{"Enter email", &data.Email},
		{"Enter phone", &data.Phone},
		{"Enter full name", &data.FullName},
	}
	if role == claims.RoleDriver {
		fields = append(fields,
			field{"Enter national ID", &data.NationalID},
			field{"Enter license number", &data.LicenseNumber},
		)
	}
	for _, f := range fields {
		if *f.dst, err = getSimpleText(a.reader, f.prompt, a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	data.Password = string(password)

	if err := a.session.Register(ctx, role, data); err != nil {
		fmt.Fprintln(a.out, client.UserMessage(err, client.MsgRegistrationFailed))
		return err
	}

	fmt.Fprintln(a.out, "Registration successful! Please login.")
	a.guard.Visit(common.LoginPath)
	return nil
}

// Logout ends the session and returns to the login page.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	if err != nil {
		a.log.Error(ctx, "logout did not clear stored credentials", "error", err)
	}
	a.guard.Visit(common.LoginPath)
	fmt.Fprintln(a.out, "Logged out successfully")
	return err
}

// WhoAmI prints the signed-in identity.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.session.Snapshot()
	if !s.Authenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	id := s.Identity
	fmt.Fprintf(a.out, "%s (id %s, %s), session valid until %s\n",
		id.Username, id.UserID, id.Role, id.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
