package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cf-bulk-manager/internal/domain"
)

// fakeRulesetRepo keeps one ruleset per zone in memory
type fakeRulesetRepo struct {
	rulesets map[string]*domain.Ruleset
	findErr  error
	writeErr error
	creates  int
	replaces int
}

func newFakeRulesetRepo() *fakeRulesetRepo {
	return &fakeRulesetRepo{rulesets: make(map[string]*domain.Ruleset)}
}

func (f *fakeRulesetRepo) FindRedirectRuleset(_ context.Context, zoneID string) (*domain.Ruleset, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	rs, ok := f.rulesets[zoneID]
	if !ok {
		return nil, domain.ErrRulesetNotFound
	}
	// the listing endpoint omits rules
	return &domain.Ruleset{ID: rs.ID, Name: rs.Name, Phase: rs.Phase}, nil
}

func (f *fakeRulesetRepo) GetRuleset(_ context.Context, zoneID, rulesetID string) (*domain.Ruleset, error) {
	rs, ok := f.rulesets[zoneID]
	if !ok || rs.ID != rulesetID {
		return nil, domain.ErrRulesetNotFound
	}
	return rs, nil
}

func (f *fakeRulesetRepo) CreateRedirectRuleset(_ context.Context, zoneID string) (*domain.Ruleset, error) {
	f.creates++
	rs := &domain.Ruleset{ID: "rs-" + zoneID, Phase: domain.RedirectPhase}
	f.rulesets[zoneID] = rs
	return rs, nil
}

func (f *fakeRulesetRepo) ReplaceRules(_ context.Context, zoneID, rulesetID string, rules []domain.RedirectRule) (*domain.Ruleset, error) {
	f.replaces++
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	rs, ok := f.rulesets[zoneID]
	if !ok || rs.ID != rulesetID {
		return nil, domain.ErrRulesetNotFound
	}
	rs.Rules = rules
	return rs, nil
}

func TestAppendRuleCreatesRulesetWhenAbsent(t *testing.T) {
	repo := newFakeRulesetRepo()
	u := NewRedirectUsecase(repo, testLogger())

	rs, err := u.AppendRule(context.Background(), "z1", domain.RedirectTemplate{
		SourcePattern: "example.com/old",
		TargetURL:     "https://example.com/new",
		StatusCode:    301,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.creates)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, "https://example.com/new", rs.Rules[0].TargetValue)
	assert.Contains(t, rs.Rules[0].Expression, `http.request.full_uri eq "example.com/old"`)
	assert.Contains(t, rs.Rules[0].Expression, `http.host eq "example.com/old"`)
}

func TestAppendRulePreservesExistingRules(t *testing.T) {
	repo := newFakeRulesetRepo()
	u := NewRedirectUsecase(repo, testLogger())

	_, err := u.AppendRule(context.Background(), "z1", domain.RedirectTemplate{
		SourcePattern: "example.com/first", TargetURL: "https://a/", StatusCode: 301,
	})
	require.NoError(t, err)

	rs, err := u.AppendRule(context.Background(), "z1", domain.RedirectTemplate{
		SourcePattern: "example.com/second", TargetURL: "https://b/", StatusCode: 302,
	})
	require.NoError(t, err)

	// ruleset reused, new rule appended last
	assert.Equal(t, 1, repo.creates)
	require.Len(t, rs.Rules, 2)
	assert.Equal(t, "https://a/", rs.Rules[0].TargetValue)
	assert.Equal(t, "https://b/", rs.Rules[1].TargetValue)
	assert.Equal(t, uint16(302), rs.Rules[1].StatusCode)
}

func TestAppendRuleRejectsEmptySource(t *testing.T) {
	u := NewRedirectUsecase(newFakeRulesetRepo(), testLogger())

	_, err := u.AppendRule(context.Background(), "z1", domain.RedirectTemplate{TargetURL: "https://a/"})
	assert.ErrorIs(t, err, domain.ErrEmptyTemplate)
}

func TestAppendRulePropagatesLookupFailure(t *testing.T) {
	repo := newFakeRulesetRepo()
	repo.findErr = errors.New("upstream 500")
	u := NewRedirectUsecase(repo, testLogger())

	_, err := u.AppendRule(context.Background(), "z1", domain.RedirectTemplate{
		SourcePattern: "example.com/x", TargetURL: "https://a/",
	})
	require.Error(t, err)
	assert.Equal(t, 0, repo.creates)
	assert.Equal(t, 0, repo.replaces)
}
