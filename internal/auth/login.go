// Package auth provides Matrix authentication for the evastatus bot account.
package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

// DeviceID is the Matrix device evastatus logs in as
const DeviceID = "EVASTATUS"

// LoginCredentials holds the result of a successful login
type LoginCredentials struct {
	Homeserver  string
	UserID      string
	DeviceID    string
	AccessToken string
}

// InteractiveLogin prompts on the terminal for credentials and performs Matrix login.
// The password is read without echo.
func InteractiveLogin(ctx context.Context, out io.Writer) (*LoginCredentials, error) {
	reader := bufio.NewReader(os.Stdin)

	homeserver, err := prompt(reader, out, "Homeserver URL (e.g., https://matrix.org): ")
	if err != nil {
		return nil, fmt.Errorf("failed to read homeserver: %w", err)
	}

	userID, err := prompt(reader, out, "User ID (e.g., @eva-bot:matrix.org): ")
	if err != nil {
		return nil, fmt.Errorf("failed to read user ID: %w", err)
	}

	fmt.Fprint(out, "Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return Login(ctx, homeserver, userID, string(passwordBytes))
}

// Login performs a password login and returns the new access token
func Login(ctx context.Context, homeserver, userID, password string) (*LoginCredentials, error) {
	if homeserver == "" || userID == "" {
		return nil, fmt.Errorf("homeserver and user ID are required")
	}

	client, err := mautrix.NewClient(homeserver, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to create Matrix client: %w", err)
	}

	resp, err := client.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: userID,
		},
		Password:                 password,
		DeviceID:                 id.DeviceID(DeviceID),
		InitialDeviceDisplayName: "Eva status",
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return &LoginCredentials{
		Homeserver:  homeserver,
		UserID:      resp.UserID.String(),
		DeviceID:    resp.DeviceID.String(),
		AccessToken: resp.AccessToken,
	}, nil
}

// prompt prints label and reads one trimmed line
func prompt(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
