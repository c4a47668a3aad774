package cmd

import (
	"context"
	"fmt"

	"github.com/SprintFox/Kitsunet-Share/config"
	"github.com/SprintFox/Kitsunet-Share/styles"
	"github.com/urfave/cli/v3"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "show or change persisted settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "set the announced username",
			},
			&cli.StringFlag{
				Name:    "broadcast",
				Aliases: []string{"b"},
				Usage:   "set the broadcast address, 255.255.255.255 for every interface",
			},
			&cli.BoolFlag{
				Name:  "announce",
				Usage: "enable or disable presence announcements",
			},
		},
		Action: configAction,
	}
}

func configAction(ctx context.Context, cmd *cli.Command) error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}

	settings, err := config.Load(path)
	if err != nil {
		return err
	}

	changed := false
	if name := cmd.String("name"); name != "" {
		settings.Username = name
		changed = true
	}
	if baddr := cmd.String("broadcast"); baddr != "" {
		settings.BroadcastAddress = baddr
		changed = true
	}
	if cmd.IsSet("announce") {
		settings.BroadcastingEnabled = cmd.Bool("announce")
		changed = true
	}

	if changed {
		if err := config.Save(path, settings); err != nil {
			return err
		}
		fmt.Println(styles.SUCCESS.Render("settings saved"))
	}

	fmt.Println(styles.INFO.Render("config file:"), path)
	fmt.Println(styles.INFO.Render("username:"), settings.Username)
	fmt.Println(styles.INFO.Render("broadcast address:"), settings.BroadcastAddress)
	fmt.Println(styles.INFO.Render("announcing:"), settings.BroadcastingEnabled)

	return nil
}
