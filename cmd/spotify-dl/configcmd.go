package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
)

func configAction(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("save") {
		path := settingsPath(c)
		if err := settings.Save(path); err != nil {
			return cli.Exit(fmt.Sprintf("save settings: %v", err), 1)
		}
		fmt.Fprintf(c.App.Writer, "Settings saved to %s\n", path)
		return nil
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
