package infra

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
)

// GetWorkDir expands dotPath, appends path and makes sure the directory
// exists.
func GetWorkDir(dotPath string, path ...string) (string, error) {
	parts := append([]string{dotPath}, path...)
	workDir, err := homedir.Expand(filepath.Join(parts...))
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(workDir, os.ModePerm); err != nil {
		return "", err
	}
	log.Trace(workDir)
	return workDir, nil
}
