package apperror

import "errors"

var (
	ErrInvalidCell         = errors.New("invalid cell index")
	ErrUnknownMode         = errors.New("unknown match mode")
	ErrUnknownLanguage     = errors.New("unknown language")
	ErrMissingTranslation  = errors.New("missing translation")
	ErrUnknownAction       = errors.New("unknown action")
	ErrEmptySessionID      = errors.New("session id is empty")
	ErrTranslationsMissing = errors.New("translations are not loaded")
)
