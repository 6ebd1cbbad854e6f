package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/rackaudit/internal/client/models"
	"github.com/dmitrijs2005/rackaudit/internal/client/photo"
	"github.com/dmitrijs2005/rackaudit/internal/common"
)

// CapturePhoto stores the image at path as a pending photo; the next added
// record picks it up.
func (a *App) CapturePhoto(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > photo.MaxSize {
		return common.ErrFileTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	key, err := a.queue.CapturePhoto(ctx, data, photo.MimeTypeFor(name), name)
	if err != nil {
		return err
	}

	a.lastPhoto = key
	fmt.Fprintf(a.out, "Photo %s stored as %s; it will be attached to the next record\n", name, key)
	return nil
}

// AddRecord prompts for a finding, queues it and triggers a background sync.
func (a *App) AddRecord(ctx context.Context) error {
	in := models.DamageInput{PhotoRef: a.lastPhoto}
	var err error

	if in.AuditID, err = GetSimpleText(a.reader, "Audit ID", a.out); err != nil {
		return err
	}
	if in.DamageType, err = GetChoice(a.reader, "Damage type (number or name)", models.DamageTypes(), a.out); err != nil {
		return err
	}
	if in.DamageType == models.DamageTypeOther {
		if in.CustomType, err = GetSimpleText(a.reader, "Custom damage type", a.out); err != nil {
			return err
		}
		if in.CustomRecommendation, err = GetSimpleText(a.reader, "Recommendation", a.out); err != nil {
			return err
		}
	}
	if in.RiskLevel, err = GetSimpleText(a.reader, "Risk level (RED/AMBER/GREEN)", a.out); err != nil {
		return err
	}
	if in.LocationDetails, err = GetSimpleText(a.reader, "Location details", a.out); err != nil {
		return err
	}
	if in.Notes, err = GetSimpleText(a.reader, "Notes", a.out); err != nil {
		return err
	}

	rec, err := models.NewDamageRecord(in)
	if err != nil {
		return err
	}

	key, err := a.queue.Enqueue(ctx, rec)
	if err != nil {
		return err
	}
	a.lastPhoto = ""

	fmt.Fprintf(a.out, "Queued %s (%s, %s): %s\n", key, rec.DamageType, rec.RiskLevel, rec.Recommendation)
	a.syncer.TriggerSync(ctx)
	return nil
}

func (a *App) Pending(ctx context.Context) error {
	pending, err := a.queue.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "Queue is empty")
		return nil
	}

	for _, p := range pending {
		photoRef := "-"
		if p.Record.PhotoRef != nil {
			photoRef = *p.Record.PhotoRef
		}
		fmt.Fprintf(a.out, "%s  %-6s %-10s %s | %s | photo: %s\n",
			p.Key, p.Record.RiskLevel, p.Record.AuditID, p.Record.DamageType, p.Record.LocationDetails, photoRef)
	}
	return nil
}

// Sync drains the queue in the foreground.
func (a *App) Sync(ctx context.Context) error {
	report, err := a.syncer.Drain(ctx)
	if errors.Is(err, common.ErrSyncInProgress) {
		fmt.Fprintln(a.out, "Sync already in progress")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Synced %d of %d (failed %d, photos uploaded %d)\n",
		report.Synced, report.Attempted, report.Failed, report.PhotosUploaded)
	return nil
}

func (a *App) Auditors(ctx context.Context) error {
	auditors, err := a.records.ListAuditors(ctx)
	if err != nil {
		return err
	}
	for _, au := range auditors {
		fmt.Fprintf(a.out, "%s  %s\n", au.ID, au.Name)
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	n, err := a.queue.PendingCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "connectivity: %s, pending: %d, syncing: %t\n", a.source.Mode(), n, a.syncer.Syncing())
	return nil
}

func (a *App) Migrate(ctx context.Context) error {
	if a.migrate == nil {
		return errors.New("remote store is not configured")
	}
	if err := a.migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Remote schema is up to date")
	return nil
}
