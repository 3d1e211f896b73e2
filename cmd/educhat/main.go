/*
Package main is a small terminal client for the education platform chat.

It logs in (or registers) with the given credentials, optionally posts one
message, and with --follow prints the room as it happens. The session token
and everything seen so far are kept in a state file between runs.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"eduplatform/internal/app/chat"
	"eduplatform/internal/client"
	"eduplatform/internal/pkg/logx"
)

type options struct {
	server    string
	username  string
	password  string
	email     string
	register  bool
	post      string
	follow    bool
	statePath string
	verbose   bool
}

func parseFlags() options {
	var o options
	pflag.StringVarP(&o.server, "server", "s", envOr("EDUCHAT_SERVER", "http://localhost:5000"), "API server base URL")
	pflag.StringVarP(&o.username, "username", "u", os.Getenv("EDUCHAT_USERNAME"), "account username")
	pflag.StringVarP(&o.password, "password", "p", os.Getenv("EDUCHAT_PASSWORD"), "account password")
	pflag.StringVar(&o.email, "email", "", "email, used with --register")
	pflag.BoolVar(&o.register, "register", false, "create the account before logging in")
	pflag.StringVarP(&o.post, "message", "m", "", "post this message and exit unless --follow is set")
	pflag.BoolVarP(&o.follow, "follow", "f", false, "print history and new messages until interrupted")
	pflag.StringVar(&o.statePath, "state", envOr("EDUCHAT_STATE", ".educhat.json"), "state file path")
	pflag.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	pflag.Parse()
	return o
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	o := parseFlags()

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logx.InitGlobalLogger(logx.Options{Development: true, Level: level, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil && !errors.Is(err, context.Canceled) {
		logx.Error(err, "educhat failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	state, err := client.LoadState(o.statePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := state.Save(o.statePath); err != nil {
			logx.Error(err, "Failed to save state", "path", o.statePath)
		}
	}()

	c, err := client.New(o.server, client.WithToken(state.Token()))
	if err != nil {
		return err
	}

	if err := authenticate(ctx, c, state, o); err != nil {
		return err
	}

	if o.post != "" {
		msg, err := c.PostMessage(ctx, o.post)
		if err != nil {
			return err
		}
		state.MergeMessages(msg)
		logx.Logger().Debug().Int64("message_id", msg.ID).Msg("Message posted")
	}

	if !o.follow {
		return nil
	}

	for _, m := range state.Messages() {
		printMessage(m)
	}
	err = client.Follow(ctx, c, state, printMessage)
	if t := c.Token(); t != "" {
		state.SetSession(t, state.Me())
	}
	return err
}

// authenticate leaves c logged in when credentials were given, and as a
// guest otherwise.
func authenticate(ctx context.Context, c *client.Client, state *client.State, o options) error {
	if o.username == "" {
		return nil
	}
	if o.password == "" {
		return errors.New("--password is required with --username")
	}

	var (
		s   *client.Session
		err error
	)
	if o.register {
		s, err = c.Register(ctx, o.username, o.email, o.password)
	} else {
		s, err = c.Login(ctx, o.username, o.password)
	}
	if err != nil {
		return err
	}

	state.SetSession(s.Token, s.User)
	logx.Logger().Debug().Int64("user_id", s.ID).Time("expires_at", s.ExpiresAt).Msg("Logged in")
	return nil
}

func printMessage(m chat.Message) {
	author := "guest"
	if m.Username != nil {
		author = *m.Username
	}
	fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), author, m.Message)
}
