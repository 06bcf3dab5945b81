package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dalemusser/chinavoyage/internal/client"
	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/dalemusser/chinavoyage/internal/state"
	"go.uber.org/zap"
)

// EnvToken holds the admin token printed by "voyagectl login".
const EnvToken = "CHINAVOYAGE_TOKEN"

// EnvPassword is read by login when -password is omitted.
const EnvPassword = "CHINAVOYAGE_PASSWORD"

var errUsage = errors.New("usage: voyagectl [-api URL] [-v] <command> [args]")

type env struct {
	ctx    context.Context
	api    *client.Client
	getenv func(string) string
	out    io.Writer
}

type command struct {
	usage string
	run   func(e *env, args []string) error
}

var commands = map[string]command{
	"login":           {"login -email E [-password P]", cmdLogin},
	"posts":           {"posts [-drafts] [-limit N]", cmdPosts},
	"publish":         {"publish <id>", setPublished(true)},
	"unpublish":       {"unpublish <id>", setPublished(false)},
	"contacts":        {"contacts [-status new|processed]", cmdContacts},
	"process-contact": {"process-contact <id>", cmdProcessContact},
	"requests":        {"requests [-status new|processed]", cmdRequests},
	"process-request": {"process-request <id>", cmdProcessRequest},
	"subscribers":     {"subscribers [-active]", cmdSubscribers},
	"delete":          {"delete <post|testimonial|contact|subscriber|request> <id>", cmdDelete},
}

func run(ctx context.Context, args []string, getenv func(string) string, out io.Writer) error {
	fs := flag.NewFlagSet("voyagectl", flag.ContinueOnError)
	fs.SetOutput(out)
	apiURL := fs.String("api", "", "API base URL")
	verbose := fs.Bool("v", false, "log every API request")
	fs.Usage = func() { printUsage(out) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		printUsage(out)
		return errUsage
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		printUsage(out)
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()
		logger = l
	}

	base := *apiURL
	if base == "" {
		base = client.ResolveBaseURL(getenv, "")
	}
	opts := []client.Option{client.WithLogger(logger)}
	if tok := strings.TrimSpace(getenv(EnvToken)); tok != "" {
		opts = append(opts, client.WithTokenSource(client.StaticToken(tok)))
	}

	e := &env{ctx: ctx, api: client.New(base, opts...), getenv: getenv, out: out}
	return cmd.run(e, fs.Args()[1:])
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, errUsage.Error())
	fmt.Fprintln(w, "\ncommands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

// oneID returns the single positional id of args.
func oneID(args []string, usage string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("usage: voyagectl %s", usage)
	}
	return strings.TrimSpace(args[0]), nil
}

func cmdLogin(e *env, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(e.out)
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "admin password (default $"+EnvPassword+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = e.getenv(EnvPassword)
	}
	if *email == "" || *password == "" {
		return errors.New("login needs -email and a password")
	}

	sess, err := e.api.Login(e.ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "# %s (%s), valid until %s\n", sess.Admin.Name, sess.Admin.Email, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(e.out, "export %s=%s\n", EnvToken, sess.Token)
	return nil
}

func cmdPosts(e *env, args []string) error {
	fs := flag.NewFlagSet("posts", flag.ContinueOnError)
	fs.SetOutput(e.out)
	drafts := fs.Bool("drafts", false, "only unpublished posts")
	limit := fs.Int64("limit", 50, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	posts := state.New[models.BlogPost](e.api.Posts)
	q := client.ListParams(*limit, 0)
	q.Set("includeUnpublished", "true")
	if err := posts.FetchList(e.ctx, q); err != nil {
		return err
	}

	snap := posts.Snapshot()
	items := state.PublishedPosts(snap.Items)
	if *drafts {
		items = state.DraftPosts(snap.Items)
	}
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPUBLISHED\tCATEGORY\tVIEWS\tTITLE")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%t\t%s\t%d\t%s\n", p.Key(), p.IsPublished, p.Category, p.Views, p.Title)
	}
	return tw.Flush()
}

func setPublished(published bool) func(e *env, args []string) error {
	usage := "unpublish <id>"
	if published {
		usage = "publish <id>"
	}
	return func(e *env, args []string) error {
		id, err := oneID(args, usage)
		if err != nil {
			return err
		}
		posts := state.New[models.BlogPost](e.api.Posts)
		post, err := posts.Update(e.ctx, id, map[string]bool{"isPublished": published})
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s\tpublished=%t\n", post.Title, post.IsPublished)
		return nil
	}
}

func statusQuery(status string) (url.Values, error) {
	q := client.ListParams(100, 0)
	if status == "" {
		return q, nil
	}
	if !models.IsValidRequestStatus(status) {
		return nil, fmt.Errorf("unknown status %q (want new or processed)", status)
	}
	q.Set("status", status)
	return q, nil
}

func cmdContacts(e *env, args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ContinueOnError)
	fs.SetOutput(e.out)
	status := fs.String("status", "", "new or processed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q, err := statusQuery(*status)
	if err != nil {
		return err
	}

	contacts := state.New[models.Contact](e.api.Contacts)
	if err := contacts.FetchList(e.ctx, q); err != nil {
		return err
	}
	snap := contacts.Snapshot()
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tRECEIVED\tNAME\tEMAIL\tSUBJECT")
	for _, c := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%s\n", c.Key(), c.Status, c.CreatedAt.Format("2006-01-02"), c.FirstName, c.LastName, c.Email, c.Subject)
	}
	fmt.Fprintf(tw, "\n%d of %d\n", len(snap.Items), snap.Total)
	return tw.Flush()
}

func cmdRequests(e *env, args []string) error {
	fs := flag.NewFlagSet("requests", flag.ContinueOnError)
	fs.SetOutput(e.out)
	status := fs.String("status", "", "new or processed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q, err := statusQuery(*status)
	if err != nil {
		return err
	}

	requests := state.New[models.TravelRequest](e.api.TravelRequests)
	if err := requests.FetchList(e.ctx, q); err != nil {
		return err
	}
	snap := requests.Snapshot()
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tRECEIVED\tNAME\tTRAVELERS\tDESTINATIONS")
	for _, tr := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", tr.Key(), tr.Status, tr.CreatedAt.Format("2006-01-02"), tr.Name, tr.Travelers, tr.Destination)
	}
	fmt.Fprintf(tw, "\n%d of %d\n", len(snap.Items), snap.Total)
	return tw.Flush()
}

func cmdProcessContact(e *env, args []string) error {
	id, err := oneID(args, "process-contact <id>")
	if err != nil {
		return err
	}
	contacts := state.New[models.Contact](e.api.Contacts)
	c, err := contacts.Process(e.ctx, e.api.Contacts, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s\t%s\n", c.Key(), c.Status)
	return nil
}

func cmdProcessRequest(e *env, args []string) error {
	id, err := oneID(args, "process-request <id>")
	if err != nil {
		return err
	}
	requests := state.New[models.TravelRequest](e.api.TravelRequests)
	tr, err := requests.Process(e.ctx, e.api.TravelRequests, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s\t%s\n", tr.Key(), tr.Status)
	return nil
}

func cmdSubscribers(e *env, args []string) error {
	fs := flag.NewFlagSet("subscribers", flag.ContinueOnError)
	fs.SetOutput(e.out)
	active := fs.Bool("active", false, "only active subscribers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	subs := state.New[models.NewsletterSubscriber](e.api.Subscribers)
	if err := subs.FetchList(e.ctx, client.ListParams(100, 0)); err != nil {
		return err
	}
	items := subs.Snapshot().Items
	if *active {
		items = state.ActiveSubscribers(items)
	}
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACTIVE\tSOURCE\tEMAIL")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", s.Key(), s.IsActive, s.Source, s.Email)
	}
	return tw.Flush()
}

func cmdDelete(e *env, args []string) error {
	const usage = "delete <post|testimonial|contact|subscriber|request> <id>"
	if len(args) != 2 {
		return fmt.Errorf("usage: voyagectl %s", usage)
	}
	kind, id := args[0], strings.TrimSpace(args[1])

	var err error
	switch kind {
	case "post":
		err = state.New[models.BlogPost](e.api.Posts).Delete(e.ctx, id)
	case "testimonial":
		err = state.New[models.Testimonial](e.api.Testimonials).Delete(e.ctx, id)
	case "contact":
		err = state.New[models.Contact](e.api.Contacts).Delete(e.ctx, id)
	case "subscriber":
		err = state.New[models.NewsletterSubscriber](e.api.Subscribers).Delete(e.ctx, id)
	case "request":
		err = state.New[models.TravelRequest](e.api.TravelRequests).Delete(e.ctx, id)
	default:
		return fmt.Errorf("usage: voyagectl %s", usage)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "deleted %s %s\n", kind, id)
	return nil
}
