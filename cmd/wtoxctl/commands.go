package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/wtox/internal/bus"
	"github.com/matheus3301/wtox/internal/channel"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/control"
	"github.com/matheus3301/wtox/internal/dispatch"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/matheus3301/wtox/internal/session"
	"github.com/matheus3301/wtox/internal/status"
	"github.com/matheus3301/wtox/internal/store"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

func cmdInit(sessionName string, args []string) {
	if len(args) < 1 {
		fail(errors.New("usage: wtoxctl init <server_url> [user] [pass]"))
	}
	cfg, err := session.LoadConfig(sessionName)
	if err != nil {
		fail(err)
	}
	cfg.ServerURL = args[0]
	if len(args) > 1 {
		cfg.Username = args[1]
	}
	if len(args) > 2 {
		cfg.Password = args[2]
	}
	if err := session.ValidateConfig(cfg); err != nil {
		fail(err)
	}
	path := session.ConfigPath(sessionName)
	if err := config.Save(path, cfg); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", path)
}

func cmdProfile(ctx context.Context, e *env) error {
	if err := e.ctl.FetchProfile(ctx); err != nil {
		return err
	}
	p, _ := e.store.Profile()
	if e.json {
		outputJSON(p)
		return nil
	}
	fmt.Printf("Name:    %s\n", p.Username)
	fmt.Printf("Status:  %s\n", p.Status.Label())
	fmt.Printf("Message: %s\n", p.StatusMsg)
	fmt.Printf("Tox ID:  %s\n", p.ToxID)
	if e.qr && p.ToxID != "" {
		q, err := qrcode.New(p.ToxID, qrcode.Medium)
		if err != nil {
			return fmt.Errorf("render qr: %w", err)
		}
		fmt.Println()
		fmt.Print(q.ToSmallString(false))
	}
	return nil
}

func cmdContacts(ctx context.Context, e *env) error {
	if err := e.ctl.FetchContacts(ctx); err != nil {
		return err
	}
	contacts := e.store.Contacts()
	if e.json {
		outputJSON(contacts)
		return nil
	}
	if len(contacts) == 0 {
		fmt.Println("No contacts.")
		return nil
	}
	for _, c := range contacts {
		online := "offline"
		if c.Online {
			online = c.Status.Label()
		}
		unread := ""
		if n := c.Unread(); n > 0 {
			unread = fmt.Sprintf(" [%d unread]", n)
		}
		fmt.Printf("%4d  %-24s %-8s %s%s\n", c.Number, c.DisplayName(), online, c.StatusMsg, unread)
	}
	return nil
}

func cmdSettings(ctx context.Context, e *env) error {
	if err := e.ctl.FetchSettings(ctx); err != nil {
		return err
	}
	s := e.store.Settings()
	if e.json {
		outputJSON(s)
		return nil
	}
	fmt.Printf("Auth user:          %s\n", s.String(model.SettingAuthUser))
	fmt.Printf("Notifications:      %v\n", s.Bool(model.SettingNotificationsEnabled))
	fmt.Printf("Away on disconnect: %v\n", s.Bool(model.SettingAwayOnDisconnect))
	return nil
}

func parseNumber(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid contact number %q", s)
	}
	return uint32(n), nil
}

func cmdSend(ctx context.Context, e *env, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: wtoxctl send <number> <text>")
	}
	number, err := parseNumber(args[0])
	if err != nil {
		return err
	}
	if err := e.ctl.FetchContacts(ctx); err != nil {
		return err
	}
	return e.ctl.SendMessage(ctx, number, strings.Join(args[1:], " "))
}

func cmdRead(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: wtoxctl read <number>")
	}
	number, err := parseNumber(args[0])
	if err != nil {
		return err
	}
	if err := e.ctl.FetchContacts(ctx); err != nil {
		return err
	}
	return e.ctl.SendMessageRead(ctx, number)
}

func cmdAddFriend(ctx context.Context, e *env, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: wtoxctl add-friend <tox_id> <message>")
	}
	res := e.ctl.SendFriendRequest(ctx, model.FriendRequest{
		FriendID: args[0],
		Message:  strings.Join(args[1:], " "),
	})
	return report(e, res, "Friend request sent.")
}

func cmdDeleteFriend(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: wtoxctl delete-friend <number>")
	}
	number, err := parseNumber(args[0])
	if err != nil {
		return err
	}
	return report(e, e.ctl.DeleteFriend(ctx, number), "Contact removed.")
}

func cmdSet(ctx context.Context, e *env, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: wtoxctl set <field> <value>")
	}
	value := strings.Join(args[1:], " ")
	var res control.Result
	switch args[0] {
	case "username":
		res = e.ctl.SetUsername(ctx, value)
	case "status-message":
		res = e.ctl.SetStatusMessage(ctx, value)
	case "status":
		st, ok := model.ParseUserStatus(value)
		if !ok {
			return fmt.Errorf("invalid status %q: use online, away or busy", value)
		}
		res = e.ctl.SetStatus(ctx, st)
	case "notifications", "away":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid flag %q: use true or false", value)
		}
		if args[0] == "away" {
			res = e.ctl.SetAwayOnDisconnect(ctx, on)
		} else {
			res = e.ctl.SetNotificationsEnabled(ctx, on)
		}
	case "auth-user":
		res = e.ctl.SetAuthUser(ctx, value)
		if res.OK() {
			e.cfg.Username = value
			res.Err = config.Save(session.ConfigPath(e.session), e.cfg)
		}
	case "auth-pass":
		res = e.ctl.SetAuthPass(ctx, value)
		if res.OK() {
			e.cfg.Password = value
			res.Err = config.Save(session.ConfigPath(e.session), e.cfg)
		}
	default:
		return fmt.Errorf("unknown field %q", args[0])
	}
	return report(e, res, "Updated.")
}

func report(e *env, res control.Result, okText string) error {
	if e.json {
		out := map[string]any{"resource": res.Resource, "ok": res.OK()}
		if res.Err != nil {
			out["error"] = res.Err.Error()
		}
		outputJSON(out)
		return res.Err
	}
	if res.OK() {
		fmt.Println(okText)
	}
	return res.Err
}

// printer wraps every handler installed on a Registrar so the raw event is
// printed before it is applied.
type printer struct {
	next channel.Registrar
	json bool
}

func (p printer) RegisterHandler(eventType string, h channel.Handler) {
	p.next.RegisterHandler(eventType, func(ctx context.Context, evt channel.Event) {
		if p.json {
			fmt.Println(string(evt.Data))
		} else {
			fmt.Printf("%s  %-24s %s\n", time.Now().Format(time.TimeOnly), evt.Type, evt.Data)
		}
		h(ctx, evt)
	})
}

func cmdWatch(ctx context.Context, e *env) error {
	b := bus.New()
	st := store.New(b)
	notes := notify.New(b, e.logger)
	ctl := control.New(e.client, st, notes, e.logger)
	ch := channel.New(e.client, channel.Options{
		Delay:  e.cfg.ReconnectDelay.Duration,
		Bus:    b,
		Logger: e.logger,
	})
	disp := dispatch.New(st, ctl, notes, e.logger)
	disp.Register(printer{next: ch, json: e.json})

	if !e.json {
		states, unsub := b.Subscribe(bus.ChannelStatusChanged, 16)
		defer unsub()
		go func() {
			for evt := range states {
				if sc, ok := evt.Payload.(status.StatusChange); ok {
					fmt.Printf("%s  push channel %s\n", time.Now().Format(time.TimeOnly), sc.To.Label())
				}
			}
		}()
	}

	err := ch.Run(ctx,
		func() {
			if err := ctl.SyncAll(ctx); err != nil {
				e.logger.Warn("sync incomplete", zap.Error(err))
			}
		},
		nil,
	)
	disp.Wait()
	ctl.Wait()
	return err
}
