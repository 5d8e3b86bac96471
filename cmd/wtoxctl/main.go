package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matheus3301/wtox/internal/api"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/control"
	"github.com/matheus3301/wtox/internal/logging"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/matheus3301/wtox/internal/session"
	"github.com/matheus3301/wtox/internal/store"
	"go.uber.org/zap"
)

const binaryName = "wtoxctl"

type env struct {
	session string
	cfg     *config.Session
	client  *api.Client
	store   *store.Store
	ctl     *control.Controller
	logger  *zap.Logger
	json    bool
	qr      bool
}

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	qrFlag := flag.Bool("qr", false, "profile: print the Tox ID as a QR code")
	debugFlag := flag.Bool("debug", false, "log to stderr at debug level")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fail(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "init" {
		cmdInit(sessionName, args[1:])
		return
	}

	cfg, err := session.LoadConfig(sessionName)
	if err != nil {
		fail(fmt.Errorf("load config for session %q: %w", sessionName, err))
	}
	if err := session.ValidateConfig(cfg); err != nil {
		fail(err)
	}
	if err := session.EnsureDir(sessionName); err != nil {
		fail(err)
	}
	logger, err := logging.New(session.LogPath(sessionName, binaryName), sessionName, logging.Options{Stderr: *debugFlag, Debug: *debugFlag})
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := api.New(cfg, logger)
	if err != nil {
		fail(err)
	}
	st := store.New(nil)
	e := &env{
		session: sessionName,
		cfg:     cfg,
		client:  client,
		store:   st,
		ctl:     control.New(client, st, notify.New(nil, logger), logger),
		logger:  logger,
		json:    *jsonFlag,
		qr:      *qrFlag,
	}

	if args[0] == "watch" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := cmdWatch(ctx, e); err != nil {
			fail(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout.Duration+5*time.Second)
	defer cancel()

	var cmdErr error
	switch args[0] {
	case "profile":
		cmdErr = cmdProfile(ctx, e)
	case "contacts":
		cmdErr = cmdContacts(ctx, e)
	case "settings":
		cmdErr = cmdSettings(ctx, e)
	case "send":
		cmdErr = cmdSend(ctx, e, args[1:])
	case "read":
		cmdErr = cmdRead(ctx, e, args[1:])
	case "add-friend":
		cmdErr = cmdAddFriend(ctx, e, args[1:])
	case "delete-friend":
		cmdErr = cmdDeleteFriend(ctx, e, args[1:])
	case "set":
		cmdErr = cmdSet(ctx, e, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
	e.ctl.Wait()
	if cmdErr != nil {
		fail(cmdErr)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: wtoxctl [--session <name>] [--json] [--qr] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  init <server_url> [user] [pass]   Write the session config")
	fmt.Fprintln(os.Stderr, "  profile                           Show the profile")
	fmt.Fprintln(os.Stderr, "  contacts                          List contacts")
	fmt.Fprintln(os.Stderr, "  settings                          Show settings")
	fmt.Fprintln(os.Stderr, "  send <number> <text>              Send a message")
	fmt.Fprintln(os.Stderr, "  read <number>                     Send a read receipt")
	fmt.Fprintln(os.Stderr, "  add-friend <tox_id> <message>     Send a friend request")
	fmt.Fprintln(os.Stderr, "  delete-friend <number>            Remove a contact")
	fmt.Fprintln(os.Stderr, "  set <field> <value>               field: username, status, status-message,")
	fmt.Fprintln(os.Stderr, "                                    notifications, away, auth-user, auth-pass")
	fmt.Fprintln(os.Stderr, "  watch                             Print push events until interrupted")
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %s\n", api.ErrorMessage(err))
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
