package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"eventboard/config"
	"eventboard/internal/app/backend"
	"eventboard/internal/app/entity"
	"eventboard/internal/app/navigation"
	"eventboard/internal/app/roles"
	"eventboard/internal/app/screens"
	"eventboard/internal/app/session"
)

const resolveTimeout = 15 * time.Second

func main() {
	apiURL := flag.String("api", "", "eventboard API base URL (overrides EVENTBOARD_API_URL)")
	flag.Parse()

	logger := config.NewClientLogger()
	cfg, err := config.LoadClient()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.APIURL, nil, cfg.RequestTimeout)
	provider := session.New(client, session.NewFileTokenStore(cfg.SessionFile), cfg.RefreshMargin, logger)
	go provider.Run(ctx)

	events := entity.NewEvents(client.Table(entity.EventsTable, provider))
	profiles := entity.NewProfiles(client.Table(entity.ProfilesTable, provider))
	resolver := roles.NewResolver(profiles, logger)

	gate := navigation.NewGate(provider, resolver, logger)
	gate.Start(ctx)
	defer gate.Stop()

	app := &terminal{
		ctx:  ctx,
		gate: gate,
		out:  os.Stdout,
		env: screens.Env{
			Session:  provider,
			Events:   events,
			Profiles: profiles,
			Roles:    resolver,
			Logger:   logger,
		},
	}
	if err := app.loop(os.Stdin); err != nil {
		logger.Error("terminal stopped", "err", err)
		os.Exit(1)
	}
}

// terminal renders screens as text and reads one command per line.
type terminal struct {
	ctx  context.Context
	gate *navigation.Gate
	env  screens.Env
	out  io.Writer
}

func (t *terminal) loop(in io.Reader) error {
	t.awaitGate()
	t.printf("eventboard: type 'help' for commands\n")
	scanner := bufio.NewScanner(in)
	for {
		t.printf("[%s] > ", t.gate.State())
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		t.dispatch(fields[0], fields[1:])
		if t.ctx.Err() != nil {
			return nil
		}
	}
}

func (t *terminal) awaitGate() navigation.State {
	ctx, cancel := context.WithTimeout(t.ctx, resolveTimeout)
	defer cancel()
	state, err := t.gate.Await(ctx)
	if err != nil {
		t.env.Logger.Warn("navigation still resolving", "err", err)
	}
	return state
}

func (t *terminal) dispatch(cmd string, args []string) {
	switch cmd {
	case "help":
		t.help()
	case "tabs":
		for _, tab := range t.gate.Tabs() {
			t.printf("  %s\n", tab)
		}
	case "open":
		if len(args) != 1 {
			t.printf("usage: open <route>\n")
			return
		}
		t.open(args[0])
	case "explore":
		category := ""
		if len(args) > 0 {
			category = args[0]
		}
		t.explore(category)
	case "login":
		if len(args) != 2 {
			t.printf("usage: login <email> <password>\n")
			return
		}
		t.login(args[0], args[1])
	case "register":
		form, ok := parseRegisterArgs(args)
		if !ok {
			t.printf("usage: register <email> <password> <confirm> <username> <full name> [standard|organizer]\n")
			return
		}
		t.register(form)
	case "resend":
		t.resend()
	case "logout":
		t.logout()
	case "create":
		t.create(strings.Join(args, " "))
	case "edit":
		if len(args) < 2 {
			t.printf("usage: edit <id> title|date|location|price|capacity|category\n")
			return
		}
		t.edit(args[0], strings.Join(args[1:], " "))
	case "delete":
		if len(args) != 1 {
			t.printf("usage: delete <id>\n")
			return
		}
		t.delete(args[0])
	default:
		t.printf("unknown command %q\n", cmd)
	}
}

func (t *terminal) help() {
	t.printf(`commands:
  tabs                                  list the mounted tabs
  open <route>                          open home, explore, event/<id>, profile, organizer, organizer/events, ...
  explore [category]                    browse events by category
  login <email> <password>
  register <email> <password> <confirm> <username> <full name> [standard|organizer]
  resend                                resend the verification email
  logout
  create title|date|location|price|capacity|category
  edit <id> title|date|location|price|capacity|category
  delete <id>
  quit
`)
}

// open mounts the screen behind route if the gate allows it.
func (t *terminal) open(route string) {
	if !t.gate.Allows(route) {
		t.printf("%s is not available while %s\n", route, t.gate.State())
		return
	}
	switch {
	case route == navigation.RouteHome:
		h := screens.NewHome(t.env)
		defer h.Unmount()
		_ = h.Mount(t.ctx)
		v := h.View()
		t.renderEvents(v.Status, v.Data, v.Notice)
	case route == navigation.RouteExplore:
		t.explore("")
	case strings.HasPrefix(route, "event/"):
		d := screens.NewEventDetail(t.env, strings.TrimPrefix(route, "event/"))
		defer d.Unmount()
		_ = d.Mount(t.ctx)
		v := d.View()
		if t.renderNotice(v.Status, v.Notice) {
			return
		}
		t.renderEvent(v.Data)
	case route == navigation.RouteProfile:
		p := screens.NewProfile(t.env)
		defer p.Unmount()
		_ = p.Mount(t.ctx)
		v := p.View()
		if t.renderNotice(v.Status, v.Notice) {
			return
		}
		t.printf("%s (%s) <%s> role=%s\n", v.Data.Username, v.Data.FullName, v.Data.Email, v.Data.Role)
	case route == navigation.RouteOrganizer:
		for _, l := range screens.NewOrganizerHome().Links() {
			t.printf("  %-14s open %s\n", l.Label, l.Route)
		}
	case route == navigation.RouteOrganizerEvents:
		o := screens.NewOrganizerEvents(t.env)
		defer o.Unmount()
		_ = o.Mount(t.ctx)
		v := o.View()
		t.renderEvents(v.Status, v.Data, v.Notice)
	case route == navigation.RouteCreateEvent:
		t.printf("usage: create title|date|location|price|capacity|category\n")
	case route == navigation.RouteLogin, route == navigation.RouteRegister:
		t.printf("use the %s command\n", route)
	case route == navigation.RouteVerifyEmail:
		v := screens.NewVerifyEmail(t.env)
		defer v.Unmount()
		if next := v.Mount(t.ctx); next != "" {
			t.printf("no account to verify, open %s\n", next)
			return
		}
		t.printf("check %s for the verification link, or type 'resend'\n", v.View().Data)
	default:
		t.printf("edit events with the edit command\n")
	}
}

func (t *terminal) explore(category string) {
	if !t.gate.Allows(navigation.RouteExplore) {
		return
	}
	e := screens.NewExplore(t.env)
	defer e.Unmount()
	if err := e.Mount(t.ctx); err == nil && category != "" {
		_ = e.Select(category)
	}
	v := e.View()
	t.printf("categories: %s\n", strings.Join(v.Data.Categories, ", "))
	t.renderEvents(v.Status, v.Data.Events, v.Notice)
}

func (t *terminal) login(email, password string) {
	if !t.gate.Allows(navigation.RouteLogin) {
		t.printf("already signed in\n")
		return
	}
	l := screens.NewLogin(t.env)
	defer l.Unmount()
	l.Mount(t.ctx)
	next, _ := l.Submit(email, password)
	t.renderNotice(l.View().Status, l.View().Notice)
	t.follow(next)
}

func (t *terminal) register(form screens.RegisterForm) {
	if !t.gate.Allows(navigation.RouteRegister) {
		t.printf("already signed in\n")
		return
	}
	r := screens.NewRegister(t.env)
	defer r.Unmount()
	r.Mount(t.ctx)
	next, _ := r.Submit(form)
	t.renderNotice(r.View().Status, r.View().Notice)
	t.follow(next)
}

func (t *terminal) resend() {
	v := screens.NewVerifyEmail(t.env)
	defer v.Unmount()
	v.Mount(t.ctx)
	next, _ := v.Resend()
	t.renderNotice(v.View().Status, v.View().Notice)
	t.follow(next)
}

func (t *terminal) logout() {
	if !t.gate.Allows(navigation.RouteProfile) {
		t.printf("not signed in\n")
		return
	}
	p := screens.NewProfile(t.env)
	defer p.Unmount()
	_ = p.Mount(t.ctx)
	next, _ := p.SignOut()
	t.renderNotice(p.View().Status, p.View().Notice)
	t.follow(next)
}

func (t *terminal) create(raw string) {
	if !t.gate.Allows(navigation.RouteCreateEvent) {
		t.printf("only organizers can create events\n")
		return
	}
	c := screens.NewCreateEvent(t.env)
	defer c.Unmount()
	c.Mount(t.ctx)
	next, err := c.Submit(parseEventForm(raw))
	if t.renderNotice(c.View().Status, c.View().Notice) || err != nil {
		return
	}
	t.renderEvent(c.View().Data)
	t.follow(next)
}

func (t *terminal) edit(id, raw string) {
	if !t.gate.Allows(navigation.EditEventRoute(id)) {
		t.printf("only organizers can edit events\n")
		return
	}
	e := screens.NewEditEvent(t.env, id)
	defer e.Unmount()
	if err := e.Mount(t.ctx); err != nil {
		t.renderNotice(e.View().Status, e.View().Notice)
		return
	}
	form := e.Form()
	changes := parseEventForm(raw)
	mergeForm(&form, changes)
	next, _ := e.Submit(form)
	if t.renderNotice(e.View().Status, e.View().Notice) {
		return
	}
	t.follow(next)
}

func (t *terminal) delete(id string) {
	if !t.gate.Allows(navigation.RouteOrganizerEvents) {
		t.printf("only organizers can delete events\n")
		return
	}
	o := screens.NewOrganizerEvents(t.env)
	defer o.Unmount()
	if err := o.Mount(t.ctx); err != nil {
		t.renderNotice(o.View().Status, o.View().Notice)
		return
	}
	_ = o.Delete(id)
	v := o.View()
	t.renderEvents(v.Status, v.Data, v.Notice)
}

// follow waits for the gate to settle after a session change and opens next.
func (t *terminal) follow(next string) {
	if next == "" {
		return
	}
	t.awaitGate()
	t.open(next)
}

// parseRegisterArgs reads "email password confirm username full name [role]".
// The full name may span several words; a trailing standard or organizer is the role.
func parseRegisterArgs(args []string) (screens.RegisterForm, bool) {
	if len(args) < 5 {
		return screens.RegisterForm{}, false
	}
	form := screens.RegisterForm{Email: args[0], Password: args[1], ConfirmPassword: args[2], Username: args[3]}
	name := args[4:]
	if last := entity.Role(name[len(name)-1]); len(name) > 1 && (last == entity.RoleStandard || last == entity.RoleOrganizer) {
		form.Role = last
		name = name[:len(name)-1]
	}
	form.FullName = strings.Join(name, " ")
	return form, true
}

// parseEventForm reads "title|date|location|price|capacity|category".
func parseEventForm(raw string) screens.EventForm {
	parts := strings.Split(raw, "|")
	for len(parts) < 6 {
		parts = append(parts, "")
	}
	return screens.EventForm{
		Title:    parts[0],
		Date:     parts[1],
		Location: parts[2],
		Price:    parts[3],
		Capacity: parts[4],
		Category: parts[5],
	}
}

// mergeForm overwrites the fields of dst that are set in src.
func mergeForm(dst *screens.EventForm, src screens.EventForm) {
	for _, f := range []struct{ dst, src *string }{
		{&dst.Title, &src.Title},
		{&dst.Date, &src.Date},
		{&dst.Location, &src.Location},
		{&dst.Price, &src.Price},
		{&dst.Capacity, &src.Capacity},
		{&dst.Category, &src.Category},
	} {
		if strings.TrimSpace(*f.src) != "" {
			*f.dst = *f.src
		}
	}
}

// renderNotice prints the notice, if any, and reports whether the view failed.
func (t *terminal) renderNotice(status screens.Status, notice *screens.Notice) bool {
	if notice != nil {
		t.printf("%s: %s\n", notice.Severity, notice.Message)
	}
	switch status {
	case screens.StatusError:
		return true
	case screens.StatusEmpty:
		t.printf("nothing here yet\n")
		return true
	}
	return false
}

func (t *terminal) renderEvents(status screens.Status, events []entity.Event, notice *screens.Notice) {
	if t.renderNotice(status, notice) {
		return
	}
	for i := range events {
		t.renderEvent(&events[i])
	}
}

func (t *terminal) renderEvent(e *entity.Event) {
	if e == nil {
		return
	}
	price := "free"
	if !e.IsFree() {
		price = fmt.Sprintf("%.2f", *e.Price)
	}
	t.printf("%s  %s  %s @ %s  [%s]", e.ID, e.Date.Format("2006-01-02 15:04"), e.Title, e.Location, price)
	if e.Capacity != nil {
		t.printf("  cap %d", *e.Capacity)
	}
	if e.Category != "" {
		t.printf("  #%s", e.Category)
	}
	t.printf("\n")
}

func (t *terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}
