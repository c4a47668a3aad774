package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SprintFox/Kitsunet-Share/core"
	"github.com/SprintFox/Kitsunet-Share/logger"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// discoverPeers listens for presence announcements for the given
// window and returns whoever showed up. It never announces itself.
func discoverPeers(ctx context.Context, log logger.Logger, wait time.Duration) ([]core.Peer, error) {
	registry := core.NewRegistry(core.Settings{})
	discovery := core.NewDiscovery(registry, core.NopNotifier{}, log)

	discoverCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	errch := make(chan error, 1)
	go func() {
		errch <- discovery.Run(discoverCtx)
	}()

	err := spinner.New().Title("listening for peers...").ActionWithErr(
		func(context.Context) error {
			err := <-errch
			if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	).Run()
	if err != nil {
		return nil, err
	}

	return registry.ListPeers(), nil
}

func selectPeer(peers []core.Peer) (string, error) {
	options := make([]huh.Option[string], 0, len(peers))
	for _, p := range peers {
		label := fmt.Sprintf("%s (%s)", p.Username, p.Address)
		options = append(options, huh.NewOption(label, p.Address))
	}

	var recipient string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("send to").
				Options(options...).
				Value(&recipient),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}

	return recipient, nil
}
