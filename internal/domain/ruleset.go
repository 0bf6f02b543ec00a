package domain

// RedirectPhase is the ruleset phase holding dynamic redirect rules
const RedirectPhase = "http_request_dynamic_redirect"

// RedirectRule mirrors one rule of the dynamic-redirect ruleset. Earlier
// rules take precedence at the provider, so new rules are always appended.
type RedirectRule struct {
	ID                  string `json:"id,omitempty"`
	Expression          string `json:"expression"`
	Description         string `json:"description,omitempty"`
	StatusCode          uint16 `json:"status_code"`
	TargetValue         string `json:"target_value,omitempty"`
	TargetExpression    string `json:"target_expression,omitempty"`
	PreserveQueryString bool   `json:"preserve_query_string"`
}

// Ruleset mirrors the provider-side ruleset holding redirect rules. The
// value is a transient read snapshot, not an owned copy: the provider's
// ruleset can change underneath it between a read and a write.
type Ruleset struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Phase string         `json:"phase"`
	Rules []RedirectRule `json:"rules"`
}

// NewRedirectRule builds the rule appended for a rendered redirect
// template: it matches the source pattern as either the full request URI or
// the bare host, and preserves the query string on forward.
func NewRedirectRule(t RedirectTemplate) RedirectRule {
	return RedirectRule{
		Expression:          `(http.request.full_uri eq "` + t.SourcePattern + `") or (http.host eq "` + t.SourcePattern + `")`,
		Description:         "Redirect from " + t.SourcePattern,
		StatusCode:          uint16(t.StatusCode),
		TargetValue:         t.TargetURL,
		PreserveQueryString: true,
	}
}
