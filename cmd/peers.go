package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SprintFox/Kitsunet-Share/styles"
	"github.com/urfave/cli/v3"
)

func peersCommand() *cli.Command {
	return &cli.Command{
		Name:    "peers",
		Aliases: []string{"ls"},
		Usage:   "list peers announcing on the network",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "wait",
				Aliases: []string{"w"},
				Usage:   "seconds to listen for announcements",
				Value:   3,
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "log file path",
			},
		},
		Action: peersAction,
	}
}

func peersAction(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.String("log"))

	wait := time.Duration(cmd.Int("wait")) * time.Second

	peers, err := discoverPeers(ctx, log, wait)
	if err != nil {
		return err
	}

	if len(peers) == 0 {
		fmt.Println(styles.INFO.Render("no peers found"))
		return nil
	}

	fmt.Println(styles.TITLE.Render(fmt.Sprintf("%-24s %s", "USERNAME", "ADDRESS")))
	fmt.Println(strings.Repeat("-", 45))
	for _, p := range peers {
		fmt.Printf("%-24s %s\n", p.Username, p.Address)
	}

	return nil
}
