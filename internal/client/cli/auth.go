package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"secureshare/internal/client/session"
	"secureshare/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a name, email and password and creates a new account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := session.ValidatePasswordStrength(string(password)); err != nil {
		fmt.Println("Password must be at least 8 characters with upper and lower case letters, a digit and a special character.")
		return err
	}

	if err := a.client.Register(ctx, name, email, password); err != nil {
		fmt.Println("Registration failed:", err.Error())
		return err
	}

	fmt.Println("Success! You can now log in.")
	return nil
}

// Login prompts for credentials and starts the two-step sign-in. On success
// the session is pending verification and the user is asked for the emailed
// code right away; the code prompt can be retried with the verify command
// while the verification window is open.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.SubmitCredentials(ctx, email, string(password)); err != nil {
		fmt.Println("Login failed:", err.Error())
		return err
	}

	fmt.Printf("A verification code has been sent to %s. It is valid for %d minutes.\n",
		email, common.VerificationTTLSeconds/60)
	return a.Verify(ctx)
}

// Verify prompts for the second-factor code and completes the sign-in.
func (a *App) Verify(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Enter verification code", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.SubmitVerificationCode(ctx, code); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCode):
			fmt.Println("Wrong code. Run verify to try again.")
		case errors.Is(err, common.ErrVerificationExpired):
			fmt.Println("The verification window has closed. Please log in again.")
		case errors.Is(err, common.ErrNotPendingVerify):
			fmt.Println("Nothing to verify. Log in first.")
		default:
			fmt.Println("Verification failed:", err.Error())
		}
		return err
	}

	identity := a.session.Identity()
	fmt.Printf("Welcome, %s (%s)!\n", identity.Name, identity.Role)

	if err := a.vault.Refresh(ctx); err != nil && !errors.Is(err, common.ErrForbidden) {
		a.log.Warn(ctx, "refreshing file listing", "error", err)
	}
	return nil
}

// Logout invalidates the server-side session (best effort) and always clears
// local state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
