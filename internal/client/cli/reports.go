package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/client/services"
)

// OpenReports mounts the report screen. "pending" opens the admin moderation
// queue, "lost"/"found"/"adopt" narrows to one report type; no argument opens
// the visible feed.
func (a *App) OpenReports(ctx context.Context, args []string) {
	filter := models.ModerationStatus("")
	petStatus := models.PetStatus("")
	for _, arg := range args {
		switch arg {
		case "pending":
			filter = models.StatusPending
		case "lost", "found", "adopt":
			petStatus = models.PetStatus(arg)
		}
	}

	if a.reports != nil {
		a.reports.Unmount()
	}
	a.reports = services.NewReportService(a.client, a.hub, a.log, filter, petStatus)

	if err := a.reports.Load(ctx); err != nil {
		a.fail(ctx, err)
		return
	}
	a.printReports()
}

func (a *App) printReports() {
	items := a.reports.Reports()
	if len(items) == 0 {
		printlnFn("No reports")
		return
	}
	for _, r := range items {
		line := fmt.Sprintf("#%d  %s (%s) %s @ %s [%s]", r.ID, r.PetName, r.Species, r.PetStatus, r.Location, r.Status)
		if r.IsResolved {
			line += " resolved"
		}
		printlnFn(line)
	}
}

// FileReport collects a new lost/found/adoption report interactively. An
// image path may be given as an argument.
func (a *App) FileReport(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		printlnFn("Please log in first")
		return
	}

	var r services.NewReport
	var err error
	if r.PetName, err = GetSimpleText(a.reader, "Pet name"); err != nil {
		return
	}
	if r.Species, err = GetSimpleText(a.reader, "Species"); err != nil {
		return
	}
	if r.Breed, err = GetSimpleText(a.reader, "Breed"); err != nil {
		return
	}
	if r.Location, err = GetSimpleText(a.reader, "Location"); err != nil {
		return
	}
	petStatus, err := GetSimpleText(a.reader, "Type (lost/found/adopt)")
	if err != nil {
		return
	}
	r.PetStatus = models.PetStatus(petStatus)
	if r.Description, err = GetMultiline(a.reader, "Description"); err != nil {
		return
	}

	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			printlnFn("Cannot read image: " + err.Error())
			return
		}
		r.ImageName = filepath.Base(args[0])
		r.Image = data
	}

	svc := a.reports
	if svc == nil {
		svc = services.NewReportService(a.client, a.hub, a.log, "", "")
		a.reports = svc
	}
	report, err := svc.File(ctx, r)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Report #%d filed, pending review", report.ID))
}

func (a *App) ApproveReport(ctx context.Context, args []string) {
	a.moderateReport(ctx, args, true)
}

func (a *App) RejectReport(ctx context.Context, args []string) {
	a.moderateReport(ctx, args, false)
}

func (a *App) moderateReport(ctx context.Context, args []string, approve bool) {
	verb := "approvereport"
	if !approve {
		verb = "rejectreport"
	}
	if !a.isStaff() {
		printlnFn("Staff only")
		return
	}
	if len(args) == 0 {
		printlnFn("Usage: " + verb + " <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: " + verb + " <id>")
		return
	}

	if a.reports == nil {
		a.OpenReports(ctx, []string{"pending"})
		if a.reports == nil {
			return
		}
	}

	if approve {
		err = a.reports.Approve(ctx, id)
	} else {
		err = a.reports.Reject(ctx, id)
	}
	if err != nil {
		a.fail(ctx, err)
		return
	}
	if approve {
		printlnFn(fmt.Sprintf("Report #%d approved", id))
	} else {
		printlnFn(fmt.Sprintf("Report #%d rejected", id))
	}
	a.printReports()
}

// ResolveReport marks the real-world outcome; it does not touch moderation.
func (a *App) ResolveReport(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: resolve <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: resolve <id>")
		return
	}
	if a.reports == nil {
		a.OpenReports(ctx, nil)
		if a.reports == nil {
			return
		}
	}
	if err := a.reports.Resolve(ctx, id); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Report #%d resolved", id))
}

func (a *App) DeleteReport(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: delreport <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: delreport <id>")
		return
	}
	if a.reports == nil {
		a.OpenReports(ctx, nil)
		if a.reports == nil {
			return
		}
	}
	if err := a.reports.Delete(ctx, id); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Report #%d deleted", id))
}
