package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rgoncalves/fieldsync/internal/buildinfo"
)

// Pending lists what is still waiting in the outbox.
func (a *App) Pending(ctx context.Context) error {
	pending, err := a.repos.Outbox.List(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		printlnFn("Nothing pending.")
		return nil
	}
	for _, s := range pending {
		printlnFn(fmt.Sprintf("  %s  point=%s items=%d photos=%d",
			s.ID, s.CollectionPointID, len(s.Items), len(s.Photos)))
	}
	if lastErr := a.engine.LastSyncError(); lastErr != "" {
		printlnFn("Last sync error:", lastErr)
	}
	return nil
}

// Sync triggers a flush cycle immediately instead of waiting for the
// connectivity watcher.
func (a *App) Sync(ctx context.Context) error {
	if err := a.engine.Flush(ctx); err != nil {
		return err
	}
	printlnFn("Sync cycle finished.")
	return nil
}

// Dismiss clears the retained sync error from the status line.
func (a *App) Dismiss(ctx context.Context) error {
	a.engine.DismissSyncError()
	return nil
}

// Version prints the running build and any available update.
func (a *App) Version(ctx context.Context) error {
	buildinfo.PrintBuildData(os.Stdout)
	if u := a.version.Available(); u != nil {
		if u.ForceUpdate {
			printlnFn("Update required:", u.Version, "-", u.Description)
		} else {
			printlnFn("Update available:", u.Version, "-", u.Description)
		}
	}
	return nil
}

// Reset wipes the local cache and the outbox after confirmation. Pending
// submissions are lost, so the prompt spells that out.
func (a *App) Reset(ctx context.Context) error {
	ok, err := GetConfirmation(a.reader, "This deletes cached data AND unsynced submissions. Continue?", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.repos.Outbox.Clear(ctx); err != nil {
		return err
	}
	if err := a.selection.Reset(ctx); err != nil {
		return err
	}

	a.clientID = 0
	a.areaID = ""
	a.point = nil
	a.catalog = nil
	printlnFn("Local data cleared.")
	return nil
}
