// ABOUTME: Person CLI commands
// ABOUTME: Human-friendly commands for adding, listing, editing and advancing prospects
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/tablestate"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// personFlags registers the editable person fields on fs.
type personFlags struct {
	fs *flag.FlagSet

	name, url, image, headline, about *string
	position, company, location       *string
	email, phone, status              *string
	degree, engagement                *int
	connected                         *bool
	websites                          stringList
}

func newPersonFlags(fs *flag.FlagSet) *personFlags {
	f := &personFlags{fs: fs}
	f.name = fs.String("name", "", "Full name")
	f.url = fs.String("url", "", "Profile URL")
	f.image = fs.String("image", "", "Profile image URL (copied into local storage)")
	f.headline = fs.String("headline", "", "Profile headline")
	f.about = fs.String("about", "", "About text")
	f.position = fs.String("position", "", "Current position")
	f.company = fs.String("company", "", "Current company")
	f.location = fs.String("location", "", "Location")
	f.email = fs.String("email", "", "Email address")
	f.phone = fs.String("phone", "", "Phone number")
	f.status = fs.String("status", "", "Pipeline status, e.g. \"Sent Connection (2/12)\"")
	f.degree = fs.Int("degree", 0, "Connection degree (1-3, 0 = out of network)")
	f.engagement = fs.Int("engagement", 0, "Engagement score")
	f.connected = fs.Bool("connected", false, "Direct connection")
	fs.Var(&f.websites, "website", "Website URL (repeatable)")
	return f
}

// patch includes only the flags given on the command line, so an explicit
// empty value clears a field.
func (f *personFlags) patch() models.PersonPatch {
	var p models.PersonPatch
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			p.Name = f.name
		case "url":
			p.URL = f.url
		case "image":
			p.ProfileImage = f.image
		case "headline":
			p.Headline = f.headline
		case "about":
			p.About = f.about
		case "position":
			p.CurrentPosition = f.position
		case "company":
			p.CurrentCompany = f.company
		case "location":
			p.Location = f.location
		case "email":
			p.Email = f.email
		case "phone":
			p.Phone = f.phone
		case "status":
			s := models.ContactStatus(*f.status)
			p.Status = &s
		case "degree":
			p.ConnectionDegree = models.DegreeOf(*f.degree)
		case "engagement":
			p.Engagement = f.engagement
		case "connected":
			p.Connected = f.connected
		case "website":
			w := []string(f.websites)
			p.Websites = &w
		}
	})
	return p
}

// AddPersonCommand adds a new prospect.
func AddPersonCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("people add", flag.ContinueOnError)
	fields := newPersonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	patch := fields.patch()
	if patch.IsEmpty() {
		return fmt.Errorf("at least one field flag is required (e.g. --name)")
	}

	person, err := store.Create(ctx, patch)
	if err != nil {
		return fmt.Errorf("failed to add person: %w", err)
	}

	_, _ = fmt.Fprintf(w, "✓ Person added: %s (ID: %s)\n", person.DisplayName(), person.ID)
	printSummary(w, person)
	return nil
}

// ListPeopleCommand lists prospects, optionally filtered.
func ListPeopleCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("people list", flag.ContinueOnError)
	query := fs.String("query", "", "Search name, company, position, location, email...")
	status := fs.String("status", "", "Only show this pipeline status")
	limit := fs.Int("limit", 50, "Maximum results (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *status != "" && !models.ContactStatus(*status).Valid() {
		return fmt.Errorf("unknown status %q", *status)
	}

	all, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list people: %w", err)
	}

	var shown []models.Person
	for _, p := range tablestate.Filter(all, *query) {
		if *status != "" && string(p.Status) != *status {
			continue
		}
		shown = append(shown, p)
		if *limit > 0 && len(shown) == *limit {
			break
		}
	}

	if len(shown) == 0 {
		_, _ = fmt.Fprintln(w, "No people found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tCOMPANY\tSTATUS\tENG\tEMAIL\tID")
	_, _ = fmt.Fprintln(tw, "----\t-------\t------\t---\t-----\t--")
	for _, p := range shown {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			p.DisplayName(), orDash(models.Deref(p.CurrentCompany)), p.Status, p.Engagement,
			orDash(models.Deref(p.Email)), p.ID)
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintf(w, "\nShowing %d of %d people\n", len(shown), len(all))
	return nil
}

// UpdatePersonCommand changes only the fields given as flags.
// Flags must come before the ID.
func UpdatePersonCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("people update", flag.ContinueOnError)
	fields := newPersonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("person ID is required")
	}

	patch := fields.patch()
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}

	person, err := store.Update(ctx, fs.Arg(0), patch)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}

	_, _ = fmt.Fprintf(w, "✓ Person updated: %s\n", person.DisplayName())
	printSummary(w, person)
	return nil
}

// DeletePersonCommand deletes a prospect and its stored image.
func DeletePersonCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("people delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("person ID is required")
	}

	if err := store.Delete(ctx, fs.Arg(0)); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}

	_, _ = fmt.Fprintf(w, "✓ Person deleted: %s\n", fs.Arg(0))
	return nil
}

// AdvancePersonCommand moves a prospect to the next stage, or cancels it.
func AdvancePersonCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("people advance", flag.ContinueOnError)
	cancel := fs.Bool("cancel", false, "Move to Cancelled instead of the next stage")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("person ID is required")
	}

	var (
		person *models.Person
		err    error
	)
	if *cancel {
		person, err = people.Cancel(ctx, store, fs.Arg(0))
	} else {
		person, err = people.Advance(ctx, store, fs.Arg(0))
	}
	if err != nil {
		return fmt.Errorf("failed to change status: %w", err)
	}

	_, _ = fmt.Fprintf(w, "✓ %s → %s\n", person.DisplayName(), person.Status)
	return nil
}

// EngageCommand bumps (or lowers) a prospect's engagement score.
func EngageCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("people engage", flag.ContinueOnError)
	delta := fs.Int("by", 1, "Amount to add (negative to subtract)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("person ID is required")
	}

	person, err := people.AdjustEngagement(ctx, store, fs.Arg(0), *delta)
	if err != nil {
		return fmt.Errorf("failed to adjust engagement: %w", err)
	}

	_, _ = fmt.Fprintf(w, "✓ %s engagement: %d\n", person.DisplayName(), person.Engagement)
	return nil
}

func printSummary(w io.Writer, p *models.Person) {
	line := func(label, value string) {
		if value != "" {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", label, value)
		}
	}
	line("Company", models.Deref(p.CurrentCompany))
	line("Position", models.Deref(p.CurrentPosition))
	line("Email", models.Deref(p.Email))
	line("Image", models.Deref(p.ProfileImage))
	line("Status", string(p.Status))
	if p.ConnectionDegree > 0 {
		line("Connection", models.ConnectionLabel(p.ConnectionDegree))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
