package handler

import (
	"errors"

	"quiz-shell/internal/domain"

	"go.uber.org/zap"
)

const (
	validationHeader  = "El quiz es erróneo:"
	unexpectedMessage = "Se ha producido un error inesperado."
)

// renderError writes err to the channel as error lines. It only returns an
// error when the channel itself failed.
func renderError(ch domain.Channel, err error, log *zap.Logger) error {
	// Handle validation errors
	var validationErrs domain.ValidationErrors
	if errors.As(err, &validationErrs) {
		log.Warn("Validation errors occurred", zap.Int("error_count", len(validationErrs)))

		if err := emitError(ch, validationHeader); err != nil {
			return err
		}
		for _, fe := range validationErrs {
			if err := emitError(ch, fe.Message); err != nil {
				return err
			}
		}
		return nil
	}

	// Handle domain errors
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.CodeTransportClosed:
			return err
		case domain.CodeInternal:
			log.Error("Internal error occurred",
				zap.String("message", domainErr.Message),
				zap.Error(domainErr.Err),
			)
		default:
			log.Info("Domain error occurred",
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
			)
		}
		return emitError(ch, domainErr.Error())
	}

	// Handle unknown errors
	log.Error("Unknown error occurred", zap.Error(err))
	return emitError(ch, unexpectedMessage)
}

func emitError(ch domain.Channel, message string) error {
	return ch.EmitLine("Error: "+message, domain.ColorRed)
}
