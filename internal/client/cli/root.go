package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovolkov/pawhub/internal/client/session"
)

const helpText = `Commands:
  register                  create an account
  login                     log in
  logout                    log out
  refresh                   refresh the access token
  whoami                    show the current session

  pets [lost|found|adopt]   list pets
  addpet [image-path]       list a pet for adoption
  delpet <id>               remove your pet listing
  match [query]             get an adoption suggestion

  requests [pending]        list adoption requests
  request <pet-id> [msg]    request to adopt a pet
  approve <id> [msg]        approve a request (staff)
  reject <id> [msg]         reject a request (staff)
  accept <id>               accept a request (pet owner)
  decline <id>              decline a request (pet owner)
  delrequest <id>           withdraw your request

  reports [pending] [lost|found|adopt]
                            list reports
  report [image-path]       file a lost/found report
  resolve <id>              mark your report resolved
  approvereport <id>        approve a report (staff)
  rejectreport <id>         reject a report (staff)
  delreport <id>            delete your report

  notifications             show your inbox
  read <id>                 mark a notification read
  dismiss <id>              dismiss a notification

  help                      this text
  exit                      quit`

// prompt reflects the session state so the user always knows who the next
// command runs as.
func (a *App) prompt() string {
	switch a.session.Status() {
	case session.StatusAuthenticated:
		if u := a.session.CurrentUser(); u != nil {
			return u.Username + "> "
		}
		return "> "
	case session.StatusVerifying:
		return "...> "
	case session.StatusExpired:
		return "expired> "
	default:
		return "guest> "
	}
}

// Root runs the command loop until exit or EOF.
func (a *App) Root(ctx context.Context) {
	printlnFn("PawHub client. Type 'help' for commands.")

	for {
		fmt.Print(a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)
		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "refresh":
			a.RefreshSession(ctx)
		case "whoami":
			a.Whoami(ctx)

		case "pets":
			a.OpenPets(ctx, args)
		case "addpet":
			a.AddPet(ctx, args)
		case "delpet":
			a.DeletePet(ctx, args)
		case "match":
			a.Match(ctx, args)

		case "requests":
			a.OpenRequests(ctx, args)
		case "request":
			a.Request(ctx, args)
		case "approve":
			a.Approve(ctx, args)
		case "reject":
			a.RejectRequest(ctx, args)
		case "accept":
			a.Accept(ctx, args)
		case "decline":
			a.Decline(ctx, args)
		case "delrequest":
			a.DeleteRequest(ctx, args)

		case "reports":
			a.OpenReports(ctx, args)
		case "report":
			a.FileReport(ctx, args)
		case "resolve":
			a.ResolveReport(ctx, args)
		case "approvereport":
			a.ApproveReport(ctx, args)
		case "rejectreport":
			a.RejectReport(ctx, args)
		case "delreport":
			a.DeleteReport(ctx, args)

		case "notifications":
			a.OpenNotifications(ctx)
		case "read":
			a.MarkNotificationRead(ctx, args)
		case "dismiss":
			a.DismissNotification(ctx, args)

		case "exit", "quit":
			return
		default:
			printlnFn("Unknown command: " + cmd + " (try 'help')")
		}
	}
}
