package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"

	"github.com/rgoncalves/fieldsync/internal/client/backend"
	"github.com/rgoncalves/fieldsync/internal/client/models"
	"github.com/rgoncalves/fieldsync/internal/client/services"
)

// readFile is a test seam for loading photo files from disk.
var readFile = os.ReadFile

// Submit walks the measurement types allowed at the selected point,
// prompting for a value (or a photo file path) for each, then saves the
// submission locally. The save always succeeds offline; sync happens in
// the background.
func (a *App) Submit(ctx context.Context) error {
	if a.point == nil {
		printlnFn("Select a collection point first: select point <id>")
		return nil
	}

	types, err := a.selection.MeasurementTypes(ctx)
	if err != nil {
		return err
	}

	var input services.SubmissionInput
	input.Point = *a.point

	for _, mt := range types {
		if len(a.point.MeasurementTypeIDs) > 0 && !slices.Contains(a.point.MeasurementTypeIDs, mt.ID) {
			continue
		}

		if mt.Kind == models.KindPhoto {
			ph, err := a.promptPhoto(mt)
			if err != nil {
				return err
			}
			if ph != nil {
				input.Photos = append(input.Photos, *ph)
			}
			continue
		}

		raw, err := getSimpleText(a.reader, promptFor(mt), os.Stdout)
		if err != nil {
			return err
		}
		input.Readings = append(input.Readings, services.Reading{Type: mt, Raw: raw})
	}

	id, err := a.submission.Submit(ctx, input)
	if err != nil {
		a.actionLog.Record(ctx, backend.ActionLogEntry{
			ActionType:        "submit_rejected",
			ClientID:          a.clientID,
			CollectionPointID: a.point.ID,
			ErrorData:         err.Error(),
		})
		return err
	}

	printlnFn("Saved. Submission", id, "will sync automatically.")
	a.actionLog.Record(ctx, backend.ActionLogEntry{
		ActionType:        "submit",
		ClientID:          a.clientID,
		WorkAreaID:        a.areaID,
		CollectionPointID: a.point.ID,
	})
	return nil
}

// promptPhoto asks for a file path and folds the file into a base64 photo
// input. An empty path skips the photo.
func (a *App) promptPhoto(mt models.MeasurementType) (*services.PhotoInput, error) {
	path, err := getSimpleText(a.reader, fmt.Sprintf("%s: photo file path (empty to skip)", mt.Name), os.Stdout)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading photo file: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return &services.PhotoInput{
		MeasurementTypeID: mt.ID,
		Data:              base64.StdEncoding.EncodeToString(data),
		FileName:          filepath.Base(path),
		MimeType:          mimeType,
	}, nil
}

func promptFor(mt models.MeasurementType) string {
	switch mt.Kind {
	case models.KindBoolean:
		return fmt.Sprintf("%s (yes/no)", mt.Name)
	case models.KindSelect:
		if mt.Select != nil {
			return fmt.Sprintf("%s %v", mt.Name, mt.Select.Options)
		}
	case models.KindNumber:
		if mt.Numeric != nil && mt.Numeric.Min != nil && mt.Numeric.Max != nil {
			return fmt.Sprintf("%s (%v..%v)", mt.Name, *mt.Numeric.Min, *mt.Numeric.Max)
		}
	}
	return mt.Name
}
