package pkg

import (
	"github.com/rs/zerolog"

	"pqkernel/pkg/io"
)

func printDataErrors(logger zerolog.Logger, errors []io.DataError) {
	for _, err := range errors {
		logger.Warn().Msgf("Error parsing data in %s at line %d: %s", err.File, err.Line, err.Error)
	}
}
