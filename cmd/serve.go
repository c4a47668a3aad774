package cmd

import (
	"context"
	"fmt"

	"github.com/SprintFox/Kitsunet-Share/core"
	"github.com/SprintFox/Kitsunet-Share/styles"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "announce presence and receive file batches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "directory received files are saved to",
				Value:   defaultDownloadDir(),
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "override the announced username for this run",
			},
			&cli.StringFlag{
				Name:    "broadcast",
				Aliases: []string{"b"},
				Usage:   "announce to a single broadcast address instead of every interface",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "receive without announcing presence",
			},
			&cli.IntFlag{
				Name:  "max-conns",
				Usage: "simultaneous inbound connections, 0 for unlimited",
				Value: core.DefaultMaxConns,
			},
			&cli.BoolFlag{
				Name:    "reveal",
				Aliases: []string{"r"},
				Usage:   "open the file manager on every received file",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "log file path",
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.String("log"))

	settings := loadSettings(log)
	if name := cmd.String("name"); name != "" {
		settings.Username = name
	}
	if baddr := cmd.String("broadcast"); baddr != "" {
		settings.BroadcastAddress = baddr
	}
	if cmd.Bool("quiet") {
		settings.BroadcastingEnabled = false
	}

	dir := cmd.String("dir")

	notifier := newServeNotifier(log)
	node := core.NewNode(settings, dir, notifier, log)
	node.Server.MaxConns = int(cmd.Int("max-conns"))
	notifier.reject = node.RejectOffer

	if cmd.Bool("reveal") {
		notifier.onSaved = func(path string) {
			if err := revealInFolder(path); err != nil {
				log.WithStr("path", path).WithStr("error", err.Error()).Warn("failed to open file manager")
			}
		}
	}

	fmt.Println(styles.TITLE.Render("kitsunet"), styles.INFO.Render(fmt.Sprintf("serving as %s", settings.Username)))
	fmt.Println(styles.INFO.Render(fmt.Sprintf("received files go to %s", dir)))
	if !settings.BroadcastingEnabled {
		fmt.Println(styles.WARN.Render("quiet mode: peers will not see this machine"))
	}

	errch := make(chan error, 1)
	go func() {
		errch <- node.Run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errch:
			return err
		case offer := <-notifier.offers:
			promptOffer(node, offer)
		}
	}
}

// promptOffer asks the human about one pending batch and routes the
// answer back to the parked connection.
func promptOffer(node *core.Node, offer core.BatchOffer) {
	fmt.Println(styles.TITLE.Render(fmt.Sprintf("incoming files from %s", offer.From)))
	for _, file := range offer.Files {
		fmt.Println(styles.INFO.Render(fmt.Sprintf("  %s (%s)", file.Name, humanize.Bytes(file.Size))))
	}

	accept := false
	prompt := huh.NewConfirm().
		Title(fmt.Sprintf("accept %d file(s), %s total?", len(offer.Files), humanize.Bytes(offer.TotalSize))).
		Affirmative("Accept").
		Negative("Reject").
		Value(&accept)

	if err := prompt.Run(); err != nil {
		node.RejectOffer(offer.ID)
		return
	}

	if accept {
		node.AcceptOffer(offer.ID)
		return
	}

	node.RejectOffer(offer.ID)
	fmt.Println(styles.WARN.Render(fmt.Sprintf("rejected batch from %s", offer.From)))
}
