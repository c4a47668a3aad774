package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SprintFox/Kitsunet-Share/core"
	"github.com/SprintFox/Kitsunet-Share/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "send files to a peer",
		ArgsUsage: "[files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "to",
				Aliases: []string{"t"},
				Usage:   "recipient address; discovered peers are offered when omitted",
			},
			&cli.IntFlag{
				Name:    "wait",
				Aliases: []string{"w"},
				Usage:   "seconds to listen for peers when no recipient is given",
				Value:   3,
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "log file path",
			},
		},
		Action: sendAction,
	}
}

func sendAction(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.String("log"))

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		var err error
		paths, err = selectFiles(".")
		if err != nil {
			return err
		}
	}

	batch, err := core.ResolveFiles(paths)
	if err != nil {
		return err
	}

	recipient := cmd.String("to")
	if recipient == "" {
		wait := time.Duration(cmd.Int("wait")) * time.Second

		peers, err := discoverPeers(ctx, log, wait)
		if err != nil {
			return err
		}
		if len(peers) == 0 {
			return errors.New("no peers found on the network")
		}

		recipient, err = selectPeer(peers)
		if err != nil {
			return err
		}
	}

	fmt.Println(styles.INFO.Render(fmt.Sprintf("offering %d file(s), %s total, to %s",
		len(batch), humanize.Bytes(batch.TotalSize()), recipient)))

	notifier := newSendNotifier(paths, batch)
	sender := core.NewSender(notifier, log)

	done := make(chan error, 1)
	go func() {
		done <- sender.Send(ctx, recipient, paths)
	}()

	// The spinner covers the human on the other side making up their
	// mind; once bytes start moving the bars take over the terminal.
	accepted := false
	var sendErr error

	spinErr := spinner.New().Title("waiting for the recipient to accept...").ActionWithErr(
		func(context.Context) error {
			select {
			case sendErr = <-done:
				return sendErr
			case <-notifier.started:
				accepted = true
				return nil
			}
		},
	).Run()

	if accepted {
		sendErr = <-done
	} else if spinErr != nil && sendErr == nil {
		sendErr = spinErr
	}

	if sendErr != nil {
		notifier.Abort()

		if errors.Is(sendErr, core.ErrOfferRejected) {
			fmt.Println(styles.ERROR.Render(fmt.Sprintf("%s rejected the batch", recipient)))
		}
		return sendErr
	}

	notifier.Wait()

	fmt.Println(styles.SUCCESS.Render(fmt.Sprintf("sent %d file(s) to %s", len(batch), recipient)))
	return nil
}

// selectFiles offers the plain files of dir in a multi-select prompt.
func selectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var options []huh.Option[string]
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		label := fmt.Sprintf("%s (%s)", entry.Name(), humanize.Bytes(uint64(info.Size())))
		options = append(options, huh.NewOption(label, filepath.Join(dir, entry.Name())))
	}

	if len(options) == 0 {
		return nil, fmt.Errorf("no files found in %s", dir)
	}

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("select files to send").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		return nil, errors.New("no files selected")
	}

	return selected, nil
}
