package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rgoncalves/fieldsync/internal/client/backend"
	"github.com/rgoncalves/fieldsync/internal/common"
)

// Clients lists the customer companies, cache-first.
func (a *App) Clients(ctx context.Context) error {
	clients, err := a.selection.Clients(ctx)
	if err != nil {
		if errors.Is(err, common.ErrOfflineNoData) {
			printlnFn("Offline and nothing cached yet. Connect once to download the client list.")
			return nil
		}
		return err
	}
	for _, c := range clients {
		printlnFn(fmt.Sprintf("  [%d] %s (%s/%s)", c.ID, c.DisplayName(), c.City, c.State))
	}
	return nil
}

// Areas lists the work areas of the selected client.
func (a *App) Areas(ctx context.Context) error {
	if a.clientID == 0 {
		printlnFn("Select a client first: select client <id>")
		return nil
	}
	areas, err := a.selection.Areas(ctx, a.clientID)
	if err != nil {
		if errors.Is(err, common.ErrOfflineNoData) {
			printlnFn("Offline and nothing cached for this client yet.")
			return nil
		}
		return err
	}
	for _, area := range areas {
		printlnFn(fmt.Sprintf("  [%s] %s", area.ID, area.Name))
	}
	return nil
}

// Points lists the collection points of the selected area.
func (a *App) Points(ctx context.Context) error {
	if a.areaID == "" {
		printlnFn("Select an area first: select area <id>")
		return nil
	}
	points, err := a.selection.Points(ctx, a.areaID)
	if err != nil {
		if errors.Is(err, common.ErrOfflineNoData) {
			printlnFn("Offline and nothing cached for this area yet.")
			return nil
		}
		return err
	}
	for _, p := range points {
		printlnFn(fmt.Sprintf("  [%s] %s (%d measurement types)", p.ID, p.Name, len(p.MeasurementTypeIDs)))
	}
	return nil
}

// Types lists the measurement-type catalog.
func (a *App) Types(ctx context.Context) error {
	types, err := a.selection.MeasurementTypes(ctx)
	if err != nil {
		if errors.Is(err, common.ErrOfflineNoData) {
			printlnFn("Offline and the catalog is not cached yet.")
			return nil
		}
		return err
	}
	a.catalog = types
	for _, mt := range types {
		printlnFn(fmt.Sprintf("  [%s] %s (%s)", mt.ID, mt.Name, mt.Kind))
	}
	return nil
}

// Select narrows the working context: select client <id>, select area <id>
// or select point <id>. Choosing a client or area clears the levels below.
func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("Usage: select client|area|point <id>")
		return nil
	}

	switch args[0] {
	case "client":
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid client id %q", args[1])
		}
		a.clientID = id
		a.areaID = ""
		a.point = nil

	case "area":
		if a.clientID == 0 {
			printlnFn("Select a client first.")
			return nil
		}
		a.areaID = args[1]
		a.point = nil

	case "point":
		if a.areaID == "" {
			printlnFn("Select an area first.")
			return nil
		}
		points, err := a.selection.Points(ctx, a.areaID)
		if err != nil {
			return err
		}
		for i := range points {
			if points[i].ID == args[1] {
				a.point = &points[i]
				break
			}
		}
		if a.point == nil {
			printlnFn("No such point in the selected area:", args[1])
			return nil
		}

	default:
		printlnFn("Usage: select client|area|point <id>")
		return nil
	}

	if err := a.selection.SaveSelection(ctx, a.clientID, a.areaID); err != nil {
		a.log.Warn(ctx, "error persisting selection", "error", err)
	}

	a.actionLog.Record(ctx, backend.ActionLogEntry{
		ActionType:        "select_" + args[0],
		ClientID:          a.clientID,
		WorkAreaID:        a.areaID,
		CollectionPointID: pointID(a),
	})
	return nil
}

func pointID(a *App) string {
	if a.point == nil {
		return ""
	}
	return a.point.ID
}
