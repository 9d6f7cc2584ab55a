package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/client/services"
)

// OpenRequests mounts the adoption-request screen. "pending" opens the
// admin moderation queue (a status-filtered view); no argument opens the
// unfiltered list.
func (a *App) OpenRequests(ctx context.Context, args []string) {
	filter := models.ModerationStatus("")
	if len(args) > 0 && args[0] == "pending" {
		filter = models.StatusPending
	}

	if a.requests != nil {
		a.requests.Unmount()
	}
	a.requests = services.NewAdoptionService(a.client, a.hub, a.log, filter)

	if err := a.requests.Load(ctx); err != nil {
		a.fail(ctx, err)
		return
	}
	a.printRequests()
}

func (a *App) printRequests() {
	items := a.requests.Requests()
	if len(items) == 0 {
		printlnFn("No adoption requests")
		return
	}
	for _, r := range items {
		line := fmt.Sprintf("#%d  %s → %s  [%s]", r.ID, r.RequesterName, r.PetName, r.Status)
		if r.OwnerDecision != models.DecisionNone {
			line += fmt.Sprintf(" owner:%s", r.OwnerDecision)
		}
		if r.Message != "" {
			line += "  " + r.Message
		}
		printlnFn(line)
	}
}

// Request creates an adoption request for a pet.
func (a *App) Request(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: request <pet-id> [message]")
		return
	}
	petID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: request <pet-id> [message]")
		return
	}
	message := strings.Join(args[1:], " ")

	svc := a.requests
	if svc == nil {
		svc = services.NewAdoptionService(a.client, a.hub, a.log, "")
		a.requests = svc
	}
	req, err := svc.Request(ctx, petID, message)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Request #%d sent for %s", req.ID, req.PetName))
}

// Approve runs the admin transition pending → approved with an optional
// message for the requester. If no request screen is open, the pending
// queue is mounted first.
func (a *App) Approve(ctx context.Context, args []string) {
	a.decideRequest(ctx, args, true)
}

func (a *App) RejectRequest(ctx context.Context, args []string) {
	a.decideRequest(ctx, args, false)
}

func (a *App) decideRequest(ctx context.Context, args []string, approve bool) {
	verb := "approve"
	if !approve {
		verb = "reject"
	}
	if !a.isStaff() {
		printlnFn("Staff only")
		return
	}
	if len(args) == 0 {
		printlnFn("Usage: " + verb + " <id> [message]")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: " + verb + " <id> [message]")
		return
	}
	message := strings.Join(args[1:], " ")

	if a.requests == nil {
		a.OpenRequests(ctx, []string{"pending"})
		if a.requests == nil {
			return
		}
	}

	if approve {
		err = a.requests.Approve(ctx, id, message)
	} else {
		err = a.requests.Reject(ctx, id, message)
	}
	if err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Request #%d %sd", id, verb))
	a.printRequests()
}

// Accept and Decline record the pet owner's decision, independent of
// moderation.
func (a *App) Accept(ctx context.Context, args []string) {
	a.ownerDecision(ctx, args, true)
}

func (a *App) Decline(ctx context.Context, args []string) {
	a.ownerDecision(ctx, args, false)
}

func (a *App) ownerDecision(ctx context.Context, args []string, accept bool) {
	verb := "accept"
	if !accept {
		verb = "decline"
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

	if a.requests == nil {
		a.OpenRequests(ctx, nil)
		if a.requests == nil {
			return
		}
	}

	if accept {
		err = a.requests.Accept(ctx, id)
	} else {
		err = a.requests.Decline(ctx, id)
	}
	if err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Request #%d %sed by owner", id, verb))
}

func (a *App) DeleteRequest(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: delrequest <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: delrequest <id>")
		return
	}
	if a.requests == nil {
		a.OpenRequests(ctx, nil)
		if a.requests == nil {
			return
		}
	}
	if err := a.requests.Delete(ctx, id); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Request #%d deleted", id))
}
