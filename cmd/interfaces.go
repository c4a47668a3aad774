package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/SprintFox/Kitsunet-Share/core"
	"github.com/SprintFox/Kitsunet-Share/styles"
	"github.com/urfave/cli/v3"
)

func interfacesCommand() *cli.Command {
	return &cli.Command{
		Name:    "interfaces",
		Aliases: []string{"if"},
		Usage:   "list network interfaces usable as broadcast targets",
		Action:  interfacesAction,
	}
}

func interfacesAction(ctx context.Context, cmd *cli.Command) error {
	if ip, err := core.OutboundIP(); err == nil {
		fmt.Println(styles.INFO.Render(fmt.Sprintf("own address: %s", ip)))
	}

	fmt.Println(styles.TITLE.Render(fmt.Sprintf("%-16s %-16s %s", "NAME", "IP", "BROADCAST")))
	fmt.Println(strings.Repeat("-", 50))
	for _, info := range core.Interfaces() {
		fmt.Printf("%-16s %-16s %s\n", info.Name, info.IP, info.Broadcast)
	}

	return nil
}
