package env

import (
	"github.com/thatsimonsguy/airzone-cloud/internal/config"
	"github.com/thatsimonsguy/airzone-cloud/internal/state"
)

var (
	Cfg     *config.Config
	Catalog *state.Catalog
)
