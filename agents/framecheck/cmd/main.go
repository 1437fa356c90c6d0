package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"framecheck/agents/framecheck"
	"framecheck/agents/framecheck/server"
	"framecheck/shared/email"
	"framecheck/shared/monitoring"
	"framecheck/shared/scheduler"

	"github.com/urfave/cli/v3"
)

type appAction func(ctx context.Context, a *app, cmd *cli.Command) error

// withApp builds the app for one command and tears it down afterwards.
func withApp(fn appAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, cmd)
	}
}

func dispatch(ctx context.Context, a *app, c framecheck.Command) (*framecheck.View, error) {
	v, err := a.popup.Dispatch(ctx, c)
	if err != nil {
		return nil, err
	}
	if v.Alert != "" {
		return v, errors.New(v.Alert)
	}
	return v, nil
}

// printResult writes the result area to stdout and turns a failed action into an error.
func printResult(cmd *cli.Command, v *framecheck.View) error {
	out, err := render(v.ResultHTML, cmd.String("output"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, out)
	return v.Err
}

func keySet(ctx context.Context, a *app, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: framecheck key set KEY")
	}
	v, err := dispatch(ctx, a, framecheck.Command{Action: framecheck.ActionSaveKey, Key: cmd.Args().First()})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Saved API key %s\n", v.MaskedKey)
	return nil
}

func keyShow(ctx context.Context, a *app, cmd *cli.Command) error {
	v, err := dispatch(ctx, a, framecheck.Command{Action: framecheck.ActionInit})
	if err != nil {
		return err
	}
	if !v.HasKey {
		fmt.Fprintln(cmd.Root().Writer, "No API key saved.")
		return nil
	}
	fmt.Fprintln(cmd.Root().Writer, v.MaskedKey)
	return nil
}

func keyEdit(ctx context.Context, a *app, cmd *cli.Command) error {
	v, err := dispatch(ctx, a, framecheck.Command{Action: framecheck.ActionEditKey})
	if err != nil {
		return err
	}
	if v.EditValue == "" {
		return framecheck.ErrMissingCredential
	}
	fmt.Fprintln(cmd.Root().Writer, v.EditValue)
	return nil
}

func keyDelete(ctx context.Context, a *app, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("refusing to delete the API key without --yes")
	}
	if _, err := dispatch(ctx, a, framecheck.Command{Action: framecheck.ActionDeleteKey, Confirm: true}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, "API key deleted.")
	return nil
}

func analyze(ctx context.Context, a *app, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: framecheck analyze [--mode MODE] [--lang LANGUAGE] URL")
	}
	v, err := dispatch(ctx, a, framecheck.Command{
		Action:   framecheck.ActionAnalyze,
		URL:      cmd.Args().First(),
		Mode:     cmd.String("mode"),
		Language: cmd.String("lang"),
	})
	if err != nil {
		return err
	}
	return printResult(cmd, v)
}

func ask(ctx context.Context, a *app, cmd *cli.Command) error {
	if cmd.NArg() < 2 {
		return fmt.Errorf("usage: framecheck ask [--lang LANGUAGE] URL QUESTION...")
	}
	v, err := dispatch(ctx, a, framecheck.Command{
		Action:   framecheck.ActionAsk,
		URL:      cmd.Args().First(),
		Question: strings.Join(cmd.Args().Tail(), " "),
		Language: cmd.String("lang"),
	})
	if err != nil {
		return err
	}
	return printResult(cmd, v)
}

func historyList(ctx context.Context, a *app, cmd *cli.Command) error {
	v, err := dispatch(ctx, a, framecheck.Command{Action: framecheck.ActionInit})
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	if !v.SaveHistory {
		fmt.Fprintln(w, "History saving is disabled (framecheck history enable).")
	}
	if len(v.History) == 0 {
		fmt.Fprintln(w, "No saved history")
		return nil
	}
	for _, item := range v.History {
		fmt.Fprintf(w, "%s  %-13s  %s", item.ID, item.Label, item.Title)
		if item.Question != "" {
			fmt.Fprintf(w, "  %s", item.Question)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func historyShow(ctx context.Context, a *app, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: framecheck history show ID")
	}
	if _, err := framecheck.NewHistory(a.store).Get(cmd.Args().First()); err != nil {
		return err
	}
	v, err := dispatch(ctx, a, framecheck.Command{Action: framecheck.ActionReplay, ID: cmd.Args().First()})
	if err != nil {
		return err
	}
	return printResult(cmd, v)
}

func historyClear(ctx context.Context, a *app, cmd *cli.Command) error {
	if _, err := dispatch(ctx, a, framecheck.Command{Action: framecheck.ActionClearHistory}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, "History cleared.")
	return nil
}

func historySetter(enabled bool) appAction {
	return func(ctx context.Context, a *app, cmd *cli.Command) error {
		if _, err := dispatch(ctx, a, framecheck.Command{Action: framecheck.ActionToggleHistory, Enabled: enabled}); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(cmd.Root().Writer, "History saving %s.\n", state)
		return nil
	}
}

func serve(ctx context.Context, a *app, cmd *cli.Command) error {
	srv := server.New(a.config.HTTP.Address(), a.popup, monitoring.NewMonitor())
	srv.AllowOrigins(a.config.HTTP.AllowedOrigins...)
	return srv.ListenAndServe(ctx)
}

func watch(ctx context.Context, a *app, cmd *cli.Command) error {
	var notifier framecheck.Notifier
	if a.config.Email.Enabled() {
		notifier = email.NewSender(&a.config.Email)
		log.Printf("Watch digests will be sent to %s", a.config.Email.ToEmail)
	}

	agent := framecheck.NewWatchAgent(&a.config.Watch, a.popup, notifier)
	s := scheduler.New(a.config, agent)

	if cmd.Bool("once") {
		fmt.Fprintln(cmd.Root().Writer, "Running once...")
		if err := agent.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize agent: %w", err)
		}
		return s.RunOnce(ctx)
	}

	fmt.Fprintln(cmd.Root().Writer, "Starting scheduler...")
	if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler failed: %w", err)
	}
	return nil
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Result format: text, html or markdown",
		Value:   outputText,
	}
}

func langFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "lang",
		Aliases: []string{"l"},
		Usage:   `Response language, or "auto" to match the video`,
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "framecheck",
		Usage: "Analyze YouTube videos with Gemini",
		Commands: []*cli.Command{
			{
				Name:  "key",
				Usage: "Manage the Gemini API key",
				Commands: []*cli.Command{
					{Name: "set", Usage: "Save an API key", ArgsUsage: "KEY", Action: withApp(keySet)},
					{Name: "show", Usage: "Show the masked API key", Action: withApp(keyShow)},
					{Name: "edit", Usage: "Print the saved API key", Action: withApp(keyEdit)},
					{
						Name:   "delete",
						Usage:  "Delete the saved API key",
						Flags:  []cli.Flag{&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm deletion"}},
						Action: withApp(keyDelete),
					},
				},
			},
			{
				Name:      "analyze",
				Usage:     "Analyze a video",
				ArgsUsage: "URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "verify, summary or deep",
						Value:   "deep",
					},
					langFlag(),
					outputFlag(),
				},
				Action: withApp(analyze),
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about a video",
				ArgsUsage: "URL QUESTION...",
				Flags:     []cli.Flag{langFlag(), outputFlag()},
				Action:    withApp(ask),
			},
			{
				Name:  "history",
				Usage: "Show and manage saved results",
				Commands: []*cli.Command{
					{Name: "list", Usage: "List saved results", Action: withApp(historyList)},
					{Name: "show", Usage: "Show a saved result", ArgsUsage: "ID", Flags: []cli.Flag{outputFlag()}, Action: withApp(historyShow)},
					{Name: "clear", Usage: "Delete all saved results", Action: withApp(historyClear)},
					{Name: "enable", Usage: "Save new results", Action: withApp(historySetter(true))},
					{Name: "disable", Usage: "Stop saving new results", Action: withApp(historySetter(false))},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the popup over HTTP",
				Action: withApp(serve),
			},
			{
				Name:   "watch",
				Usage:  "Re-analyze the configured videos on a schedule",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "once", Usage: "Run a single pass and exit"}},
				Action: withApp(watch),
			},
		},
	}
}

func main() {
	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
