package document

import "errors"

// Sentinel errors for the document workflow. Handlers map these onto HTTP
// status codes with errors.Is; they are never wrapped away.
var (
	ErrValidation         = errors.New("invalid document input")
	ErrNotFound           = errors.New("document not found")
	ErrNotAuthorized      = errors.New("identity is not an allowed signer")
	ErrNotOwner           = errors.New("caller is not the document owner")
	ErrDuplicateMember    = errors.New("identity is already an allowed signer")
	ErrDuplicateSignature = errors.New("identity has already signed")
	ErrUpload             = errors.New("content upload failed")
	ErrSubmission         = errors.New("ledger submission failed")
)
