package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/ovolkov/pawhub/internal/client/session"
)

func (a *App) Register(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Choose a username")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	email, err := GetSimpleText(a.reader, "Your email")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	password, err := GetPassword()
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.session.Register(ctx, username, email, password); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn("Account created, you can log in now")
}

func (a *App) Login(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	password, err := GetPassword()
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		printlnFn("Login unsuccessful: " + err.Error())
		return
	}
	if u := a.session.CurrentUser(); u != nil {
		printlnFn("Welcome, " + u.Username)
	}
}

func (a *App) Logout(ctx context.Context) {
	a.closeScreens()
	if err := a.session.Logout(ctx); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn("Logged out")
}

func (a *App) RefreshSession(ctx context.Context) {
	if err := a.session.Refresh(ctx); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn("Session refreshed")
}

func (a *App) Whoami(ctx context.Context) {
	u := a.session.CurrentUser()
	if u == nil {
		printlnFn(fmt.Sprintf("Not logged in (status: %s)", a.session.Status()))
		return
	}
	role := "user"
	if u.IsStaff {
		role = "staff"
	}
	line := fmt.Sprintf("%s <%s> (%s)", u.Username, u.Email, role)
	if a.session.Status() == session.StatusAuthenticated {
		if exp := a.session.ExpiresAt(); !exp.IsZero() {
			line += ", session expires " + exp.Format("15:04:05")
		}
	}
	printlnFn(line)
}
