package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// mustGetConfigHomeDir returns the full path to the directory that stores all config files.
// Uses global variable.
func mustGetConfigHomeDir() string {
	if ctHomeDir == "" {
		if d := os.Getenv(HomeDirEnvVar); d != "" { // if the user has chosen a directory...
			ctHomeDir = d
			return ctHomeDir
		}
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		ctHomeDir = path.Join(home, MainDir)
	}
	return ctHomeDir
}

// makeDir wll make the given directory if it does not already exist.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) { // if it doesn't exist...
		if err = os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "error creating directory %v", dir)
		}
	} else if err != nil {
		return err
	}
	return nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
