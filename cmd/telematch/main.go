package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telematch/internal/config"
	"github.com/smallbiznis/telematch/internal/logger"
	"github.com/smallbiznis/telematch/internal/navigation"
	"github.com/smallbiznis/telematch/internal/notification"
	"github.com/smallbiznis/telematch/internal/notification/bootstrap"
	notificationdomain "github.com/smallbiznis/telematch/internal/notification/domain"
	"github.com/smallbiznis/telematch/internal/notification/local"
	"github.com/smallbiznis/telematch/internal/observability"
	"github.com/smallbiznis/telematch/internal/session"
	"github.com/smallbiznis/telematch/internal/signup"
	"github.com/smallbiznis/telematch/internal/signup/controller"
	signupdomain "github.com/smallbiznis/telematch/internal/signup/domain"
	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const usage = `usage: telematch <command> [flags]

commands:
  signup         submit the registration form once
  notifications  set up push notifications and print events
  whoami         print the stored session
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "signup":
		err = runSignup(os.Args[2:])
	case "notifications":
		err = runNotifications(os.Args[2:])
	case "whoami":
		err = runWhoami(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(fs *pflag.FlagSet, opts ...fx.Option) *fx.App {
	base := []fx.Option{
		config.Module(fs),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
	}
	return fx.New(append(base, opts...)...)
}

func runSignup(args []string) error {
	fs := pflag.NewFlagSet("signup", pflag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (at least 6 characters)")
	terms := fs.Bool("accept-terms", false, "accept the terms and conditions")
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		form   *controller.Controller
		router *navigation.Router
	)
	app := newApp(fs,
		session.Module,
		navigation.Module,
		signup.Module,
		fx.Populate(&form, &router),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop(ctx)

	form.SetName(*name)
	form.SetEmail(*email)
	form.SetPassword(*password)
	form.SetTerms(*terms)

	outcome := form.Submit(ctx)
	snap := form.Snapshot()

	switch outcome {
	case controller.OutcomeSuccess:
		fmt.Fprintf(os.Stdout, "signed up, navigated to %s\n", router.Current())
		return nil
	case controller.OutcomeNoIdentifier:
		fmt.Fprintln(os.Stdout, "registration accepted without a user id; nothing stored")
		return nil
	default:
		printErrors(snap.Errors)
		return fmt.Errorf("signup %s", outcome)
	}
}

func printErrors(errs signupdomain.ErrorSet) {
	for _, field := range errs.Keys() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", field, errs[field])
	}
}

func runNotifications(args []string) error {
	fs := pflag.NewFlagSet("notifications", pflag.ExitOnError)
	runFor := fs.Duration("for", 0, "stop after this long (0 waits for an interrupt)")
	simulate := fs.Bool("simulate", false, "inject a sample notification on the local platform")
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		boot     *bootstrap.Bootstrapper
		platform notificationdomain.Platform
	)
	app := newApp(fs,
		notification.Module,
		fx.Populate(&boot, &platform),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop(context.Background())

	handle, err := boot.Start(ctx)
	if err != nil {
		return err
	}
	defer handle.Close()

	if *simulate {
		lp, ok := platform.(*local.Platform)
		if !ok {
			return fmt.Errorf("--simulate needs the local notification platform")
		}
		<-handle.Registered()
		simulateDelivery(lp)
	}

	if *runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *runFor)
		defer cancel()
	}
	<-ctx.Done()
	return nil
}

func simulateDelivery(p *local.Platform) {
	n := notificationdomain.Notification{
		ID:    "sample-1",
		Title: "New match",
		Body:  "Someone wants to play",
	}
	p.Deliver(notificationdomain.Event{Kind: notificationdomain.EventNotificationReceived, Notification: &n})
	p.Deliver(notificationdomain.Event{
		Kind:   notificationdomain.EventActionPerformed,
		Action: &notificationdomain.ActionPerformed{ActionID: "tap", Notification: n},
	})
}

func runWhoami(args []string) error {
	fs := pflag.NewFlagSet("whoami", pflag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var store session.Store
	app := newApp(fs,
		session.Module,
		fx.Populate(&store),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop(ctx)

	for _, key := range []string{signupdomain.SessionKeyUserID, signupdomain.SessionKeyUserName} {
		value, ok, err := store.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			value = "(not set)"
		}
		fmt.Fprintf(os.Stdout, "%s: %s\n", key, value)
	}
	return nil
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
