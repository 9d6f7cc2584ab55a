package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/client/services"
)

// OpenPets mounts the pet-listing screen. An optional status argument
// (lost, found, adopt) narrows the list.
func (a *App) OpenPets(ctx context.Context, args []string) {
	status := models.PetStatus("")
	if len(args) > 0 {
		status = models.PetStatus(args[0])
	}

	if a.pets != nil {
		a.pets.Unmount()
	}
	a.pets = services.NewPetService(a.client, a.hub, a.log, status)

	if err := a.pets.Load(ctx); err != nil {
		a.fail(ctx, err)
		return
	}
	a.printPets()
}

func (a *App) printPets() {
	items := a.pets.Pets()
	if len(items) == 0 {
		printlnFn("No pets listed")
		return
	}
	for _, p := range items {
		line := fmt.Sprintf("#%d  %s (%s, %s, %d) [%s]", p.ID, p.Name, p.Species, p.Breed, p.Age, p.Status)
		if p.Description != "" {
			line += "  " + p.Description
		}
		printlnFn(line)
	}
}

// AddPet collects a new listing interactively and creates it. An image path
// may be given as an argument; the file is attached to the multipart form.
func (a *App) AddPet(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		printlnFn("Please log in first")
		return
	}

	var p services.NewPet
	var err error
	if p.Name, err = GetSimpleText(a.reader, "Pet name"); err != nil {
		return
	}
	if p.Species, err = GetSimpleText(a.reader, "Species"); err != nil {
		return
	}
	if p.Breed, err = GetSimpleText(a.reader, "Breed"); err != nil {
		return
	}
	ageText, err := GetSimpleText(a.reader, "Age")
	if err != nil {
		return
	}
	p.Age, _ = strconv.Atoi(ageText)
	if p.Gender, err = GetSimpleText(a.reader, "Gender"); err != nil {
		return
	}
	status, err := GetSimpleText(a.reader, "Status (lost/found/adopt)")
	if err != nil {
		return
	}
	p.Status = models.PetStatus(status)
	if p.Description, err = GetMultiline(a.reader, "Description"); err != nil {
		return
	}

	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			printlnFn("Cannot read image: " + err.Error())
			return
		}
		p.ImageName = filepath.Base(args[0])
		p.Image = data
	}

	svc := a.pets
	if svc == nil {
		svc = services.NewPetService(a.client, a.hub, a.log, "")
		a.pets = svc
	}
	pet, err := svc.Add(ctx, p)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Pet #%d listed", pet.ID))
}

func (a *App) DeletePet(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: delpet <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: delpet <id>")
		return
	}
	if a.pets == nil {
		a.OpenPets(ctx, nil)
		if a.pets == nil {
			return
		}
	}
	if err := a.pets.Delete(ctx, id); err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(fmt.Sprintf("Pet #%d removed", id))
}

// Match asks the server for an adoption suggestion from a free-form query.
func (a *App) Match(ctx context.Context, args []string) {
	query := strings.Join(args, " ")
	if query == "" {
		var err error
		if query, err = GetSimpleText(a.reader, "What are you looking for?"); err != nil {
			return
		}
	}

	svc := a.pets
	if svc == nil {
		svc = services.NewPetService(a.client, a.hub, a.log, "")
		a.pets = svc
	}
	suggestion, err := svc.Match(ctx, query)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	printlnFn(suggestion)
}
