package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"iof-app/internal/appconfig"
	"iof-app/internal/buildinfo"
	"iof-app/internal/commands"
)

func registerConfig(reg *commands.Registry) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	path := fs.String("path", appconfig.DefaultPath, "Where to write the default config.")
	force := fs.Bool("force", false, "Overwrite an existing file.")

	reg.Register("config", "write the default config file", fs, func([]string) error {
		if _, err := os.Stat(*path); err == nil && !*force {
			return fmt.Errorf("%s already exists (use -force)", *path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := appconfig.Save(*path, appconfig.Default()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Println("wrote", *path)
		return nil
	})
}

func registerVersion(reg *commands.Registry) {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	reg.Register("version", "print the build version", fs, func([]string) error {
		fmt.Println("iofapp", buildinfo.Short())
		return nil
	})
}
