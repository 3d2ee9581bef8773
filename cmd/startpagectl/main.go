// startpagectl is a terminal client for the startpage API.
//
//	startpagectl [flags] <command> [args]
//
// Commands: login, logout, me, links, link <id>, users
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// readPassword is swapped in tests so they don't need a terminal
var readPassword = term.ReadPassword

type cli struct {
	server    string
	tokenFile string
	search    string
	filter    string

	in  *bufio.Reader
	out io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := pflag.NewFlagSet("startpagectl", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.String("server", "http://localhost:3009/api", "API base url")
	fs.String("token-file", defaultTokenFile(), "Where the session token is kept")
	search := fs.StringP("search", "s", "", "Only list links whose name or description contains this")
	filter := fs.StringP("filter", "f", "", "Only list users whose username or email contains this")
	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: startpagectl [flags] <login|logout|me|links|link <id>|users>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix("startpage")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.BindPFlag("server", fs.Lookup("server"))
	v.BindPFlag("token-file", fs.Lookup("token-file"))

	c := &cli{
		server:    v.GetString("server"),
		tokenFile: v.GetString("token-file"),
		search:    *search,
		filter:    *filter,
		in:        bufio.NewReader(in),
		out:       out,
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("no command given")
	}

	switch rest[0] {
	case "login":
		return c.login(ctx, rest[1:])
	case "logout":
		return c.logout(ctx)
	case "me":
		return c.me(ctx)
	case "links":
		return c.links(ctx)
	case "link":
		if len(rest) != 2 {
			return errors.New("usage: startpagectl link <id>")
		}
		return c.link(ctx, rest[1])
	case "users":
		return c.users(ctx)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".startpage-token"
	}

	return filepath.Join(dir, "startpage", "token")
}
