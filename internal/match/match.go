// Package match implements the two candidate strategies. Both report per-field
// match evidence so that scoring does not depend on which strategy ran.
//
// Plain terms may match the title, url, tag and folder fields; "#" terms only
// match tags and "~" terms only match folder names. Each (field, term) pair
// yields at most one FieldMatch, carrying the strongest kind found.
package match

import (
	"fmt"

	"github.com/gcbaptista/go-browser-search/config"
	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/model"
	"github.com/gcbaptista/go-browser-search/services"
)

// New creates the strategy selected by search.approach. The precise strategy
// indexes entities up front.
func New(opts config.Options, entities []model.SearchableEntity) (services.Matcher, error) {
	switch opts.Search.Approach {
	case config.ApproachFuzzy:
		return NewFuzzyMatcher(opts.Search.Fuzzyness), nil
	case config.ApproachPrecise:
		matcher, err := NewPreciseMatcher(entities, opts.Score.MinSearchTermMatchRatio)
		if err != nil {
			return nil, fmt.Errorf("failed to create precise matcher: %w", err)
		}
		return matcher, nil
	default:
		return nil, internalErrors.NewConfigError("search.approach", fmt.Sprintf("unknown approach '%s'", opts.Search.Approach))
	}
}
