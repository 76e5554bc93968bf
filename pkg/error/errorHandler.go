package error

import (
	"movie_browser/configs"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

func SaveError(message string, err error) {
	if configs.GetConfigs().PrintErrors {
		log.Error().Err(err).Msg(message)
	}

	if err == nil {
		sentry.CaptureMessage(message)
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra("message", message)
		sentry.CaptureException(err)
	})
}
