package snippet

import (
	"errors"
	"fmt"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

var (
	// ErrMissingSnippet reports a reference whose path or URL could not be resolved.
	ErrMissingSnippet = errors.New("snippet could not be found")
	// ErrMissingSection reports a named section absent from the referenced content.
	ErrMissingSection = errors.New("snippet section could not be located")
	// ErrMissingCompiledSection is the compiled-source variant of ErrMissingSection:
	// neither the generated output nor its source defines the section.
	ErrMissingCompiledSection = fmt.Errorf("%w in compiled output or its source", ErrMissingSection)
	// ErrSizeExceeded reports a remote payload at or over the configured limit.
	ErrSizeExceeded = errors.New("remote snippet exceeds maximum size")
	// ErrMissingContentLength reports a remote response without a Content-Length header.
	ErrMissingContentLength = errors.New("remote snippet response is missing content-length")
)

func missingSnippet(ref string) error {
	return ferrors.WrapError(ErrMissingSnippet, ferrors.CategorySnippet, "snippet not found").
		WithContext("snippet", ref).
		Build()
}

func missingSection(name string) error {
	return ferrors.WrapError(ErrMissingSection, ferrors.CategorySection, "snippet section not found").
		WithContext("section", name).
		Build()
}

func missingCompiledSection(name, source string) error {
	return ferrors.WrapError(ErrMissingCompiledSection, ferrors.CategorySection,
		"snippet section not found; sections inside compiled code blocks are dropped by the compiler, wrap the block in a section instead").
		WithContext("section", name).
		WithContext("source", source).
		Build()
}
