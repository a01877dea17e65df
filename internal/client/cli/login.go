package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rgoncalves/fieldsync/internal/client/backend"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates against the backend.
// A failed login leaves the previous session (if any) untouched; offline
// browsing of cached data works without logging in at all.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.backend.Login(ctx, userName, string(password)); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	a.userName = userName
	a.monitor.SetOnline(true)
	printlnFn("Logged in as", userName)

	a.actionLog.Record(ctx, backend.ActionLogEntry{ActionType: "login"})
	return nil
}
