package providers

import (
	"citystate/internal/structures"
	"errors"
	"fmt"
	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	sections := []struct {
		name  string
		value any
	}{
		{"webServer", &cv.conf.WebServer},
		{"storage", &cv.conf.Storage},
		{"logger", &cv.conf.Logger},
		{"analytics", &cv.conf.Analytics},
	}

	for _, s := range sections {
		v := validate.Struct(s.value)
		if !v.Validate() {
			return fmt.Errorf("invalid %s config: %w", s.name, v.Errors)
		}
	}

	switch cv.conf.Storage.Backend {
	case "file":
		if cv.conf.Storage.FilePath == "" {
			return errors.New("invalid storage config: filePath is required for the file backend")
		}
	case "sqlite":
		if cv.conf.Storage.SqlitePath == "" {
			return errors.New("invalid storage config: sqlitePath is required for the sqlite backend")
		}
	}
	return nil
}
