package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v2"

	"github.com/handiism/spotify-dl/internal/config"
)

func notEmpty(s string) error {
	if s == "" {
		return errors.New("required")
	}
	return nil
}

func loginAction(c *cli.Context) error {
	path := config.CredentialsPath()
	creds, err := config.LoadCredentials(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("load credentials: %v", err), 1)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spotify client ID").
				Value(&creds.ClientID).
				Validate(notEmpty),
			huh.NewInput().
				Title("Spotify client secret").
				EchoMode(huh.EchoModePassword).
				Value(&creds.ClientSecret).
				Validate(notEmpty),
			huh.NewInput().
				Title("Playback gateway token").
				Description("Leave empty if the gateway needs no token.").
				EchoMode(huh.EchoModePassword).
				Value(&creds.GatewayToken),
		),
	)
	if err := form.Run(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := creds.Save(path); err != nil {
		return cli.Exit(fmt.Sprintf("save credentials: %v", err), 1)
	}
	fmt.Fprintf(c.App.Writer, "Credentials saved to %s\n", path)
	return nil
}
