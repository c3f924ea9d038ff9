package matcher

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Kind names one of the CRM entity collections.
type Kind string

const (
	KindClient   Kind = "client"
	KindInvestor Kind = "investor"
	KindPartner  Kind = "partner"
)

// Priority is the tie-break order applied when one email exists in several collections.
var Priority = []Kind{KindClient, KindInvestor, KindPartner}

// Match identifies the CRM entity a transcript is associated with.
type Match struct {
	Type Kind   `json:"type"`
	ID   string `json:"id"`
}

// Lookup performs an exact email lookup in a single entity collection.
type Lookup interface {
	FindEntityByEmail(ctx context.Context, kind Kind, email string) (id string, found bool, err error)
}

type Matcher struct {
	lookup Lookup
}

func New(lookup Lookup) *Matcher {
	return &Matcher{lookup: lookup}
}

// Match resolves an email to at most one entity. All collections are queried
// concurrently; clients win over investors, investors over partners.
func (m *Matcher) Match(ctx context.Context, email string) (Match, bool, error) {
	if email == "" {
		return Match{}, false, nil
	}

	ids := make([]string, len(Priority))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Priority {
		g.Go(func() error {
			id, found, err := m.lookup.FindEntityByEmail(gctx, kind, email)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", kind, err)
			}
			if found {
				ids[i] = id
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Match{}, false, err
	}

	for i, kind := range Priority {
		if ids[i] != "" {
			return Match{Type: kind, ID: ids[i]}, true, nil
		}
	}
	return Match{}, false, nil
}

// Resolve returns the match for the first email, in the given order, that
// belongs to any entity, together with that email.
func (m *Matcher) Resolve(ctx context.Context, emails []string) (Match, string, bool, error) {
	for _, email := range emails {
		match, ok, err := m.Match(ctx, email)
		if err != nil {
			return Match{}, "", false, fmt.Errorf("match %s: %w", email, err)
		}
		if ok {
			return match, email, true, nil
		}
	}
	return Match{}, "", false, nil
}
