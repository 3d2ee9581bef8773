package main

import (
	"acumenus/startpage-api/internal/model"
	"acumenus/startpage-api/pkg/client"
	"acumenus/startpage-api/pkg/view"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
)

var errNotLoggedIn = errors.New("not logged in, run: startpagectl login")

// session returns a client carrying the saved token
func (c *cli) session() (*client.Client, error) {
	token, err := loadToken(c.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file, %w", err)
	}

	if token == "" {
		return nil, errNotLoggedIn
	}

	return client.New(c.server, client.WithToken(token))
}

// authErr turns an expired or missing session into a hint to log in again
func authErr(err error) error {
	switch client.StatusOf(err) {
	case http.StatusUnauthorized:
		return errNotLoggedIn
	case http.StatusForbidden:
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message == "Invalid or expired token" {
			return errNotLoggedIn
		}
	}

	return err
}

func (c *cli) login(ctx context.Context, args []string) error {
	username := ""
	if len(args) > 0 {
		username = args[0]
	}

	if username == "" {
		fmt.Fprint(c.out, "Username: ")
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read username, %w", err)
		}
		username = strings.TrimSpace(line)
	}

	fmt.Fprint(c.out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(c.out)
	if err != nil {
		return fmt.Errorf("failed to read password, %w", err)
	}

	api, err := client.New(c.server)
	if err != nil {
		return err
	}

	res, err := api.Login(ctx, username, string(pw))
	if err != nil {
		return err
	}

	if err := saveToken(c.tokenFile, res.Token); err != nil {
		return fmt.Errorf("failed to save token, %w", err)
	}

	role := "user"
	if res.User.IsAdmin {
		role = "admin"
	}

	fmt.Fprintf(c.out, "Logged in as %s (%s)\n", res.User.Username, role)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	token, err := loadToken(c.tokenFile)
	if err != nil {
		return err
	}

	if token != "" {
		api, err := client.New(c.server, client.WithToken(token))
		if err != nil {
			return err
		}

		// The token stays valid until it expires, dropping it locally is
		// what actually ends the session
		_ = api.Logout(ctx)
	}

	if err := clearToken(c.tokenFile); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *cli) me(ctx context.Context) error {
	api, err := c.session()
	if err != nil {
		return err
	}

	u, err := api.Me(ctx)
	if err != nil {
		return authErr(err)
	}

	printUsers(c.out, []model.PublicUser{u})
	return nil
}

func (c *cli) links(ctx context.Context) error {
	api, err := c.session()
	if err != nil {
		return err
	}

	links, err := api.Links(ctx)
	if err != nil {
		return authErr(err)
	}

	dir := view.NewDirectory(links)
	dir.SetSearch(c.search)

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tURL\tDESCRIPTION")
	for _, l := range dir.Visible() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.Name, l.URL, l.Description)
	}

	return w.Flush()
}

func (c *cli) link(ctx context.Context, id string) error {
	api, err := c.session()
	if err != nil {
		return err
	}

	links, err := api.Links(ctx)
	if err != nil {
		return authErr(err)
	}

	dir := view.NewDirectory(links)
	if !dir.Select(id) {
		return fmt.Errorf("application link %s not found", id)
	}

	l, _ := dir.Selected()

	fmt.Fprintf(c.out, "%s (%s)\n", l.Name, l.URL)
	if l.Description != "" {
		fmt.Fprintln(c.out, l.Description)
	}
	if l.DetailedDescription != nil {
		fmt.Fprintf(c.out, "\n%s\n", *l.DetailedDescription)
	}

	fmt.Fprintln(c.out)
	printOpt(c.out, "Version", l.Version)
	printOpt(c.out, "Updated", l.LastUpdated)
	printOpt(c.out, "Source", l.GithubURL)
	printOpt(c.out, "Homepage", l.ProductHomepage)
	printOpt(c.out, "Docs", l.Documentation)

	m := l.UsageMetrics
	if m.Users != nil || m.Deployments != nil || m.Stars != nil {
		fmt.Fprintf(c.out, "Metrics: users=%s deployments=%s stars=%s\n", num(m.Users), num(m.Deployments), num(m.Stars))
	}

	if len(l.Features) > 0 {
		fmt.Fprintln(c.out, "Features:")
		for _, f := range l.Features {
			fmt.Fprintf(c.out, "  - %s\n", f)
		}
	}

	if len(l.Screenshots) > 0 {
		fmt.Fprintln(c.out, "Screenshots:")
		for _, s := range l.Screenshots {
			fmt.Fprintf(c.out, "  - %s\n", s)
		}
	}

	if related := dir.Related(); len(related) > 0 {
		fmt.Fprintln(c.out, "Related:")
		for _, r := range related {
			fmt.Fprintf(c.out, "  - %s (id %s)\n", r.Name, r.ID)
		}
	}

	return nil
}

func (c *cli) users(ctx context.Context) error {
	api, err := c.session()
	if err != nil {
		return err
	}

	users, err := api.Users(ctx)
	if err != nil {
		return authErr(err)
	}

	table := view.NewUserTable(users)
	table.SetFilter(c.filter)

	printUsers(c.out, table.Rows())
	return nil
}

func printUsers(out io.Writer, users []model.PublicUser) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tADMIN\tLAST LOGIN")
	for _, u := range users {
		last := "never"
		if u.LastLogin != nil {
			last = u.LastLogin.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", u.ID, u.Username, u.Email, u.IsAdmin, last)
	}
	w.Flush()
}

func printOpt(out io.Writer, label string, v *string) {
	if v != nil && *v != "" {
		fmt.Fprintf(out, "%s: %s\n", label, *v)
	}
}

func num(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
