package sonar

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// maxPageSize is the server's hard cap on ps.
const maxPageSize = 500

// IssueQuery narrows an issues/search call. Zero values mean "no filter".
type IssueQuery struct {
	Project    string
	Branch     string
	Severities []string
	Types      []string
	Statuses   []string
	Page       int
	PageSize   int
	Facets     []string
}

func (q IssueQuery) values() url.Values {
	v := url.Values{}
	v.Set("componentKeys", q.Project)
	if q.Branch != "" {
		v.Set("branch", q.Branch)
	}
	if len(q.Severities) > 0 {
		v.Set("severities", strings.Join(q.Severities, ","))
	}
	if len(q.Types) > 0 {
		v.Set("types", strings.Join(q.Types, ","))
	}
	if len(q.Statuses) > 0 {
		v.Set("statuses", strings.Join(q.Statuses, ","))
	}
	if len(q.Facets) > 0 {
		v.Set("facets", strings.Join(q.Facets, ","))
	}
	if q.Page > 0 {
		v.Set("p", strconv.Itoa(q.Page))
	}
	ps := q.PageSize
	if ps <= 0 {
		ps = 100
	}
	if ps > maxPageSize {
		ps = maxPageSize
	}
	v.Set("ps", strconv.Itoa(ps))
	return v
}

// SearchIssues fetches one page of issues for a project.
func (c *Client) SearchIssues(ctx context.Context, q IssueQuery) (*IssueSearchResult, error) {
	body, err := c.get(ctx, "/api/issues/search", q.values())
	if err != nil {
		return nil, err
	}
	var res IssueSearchResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode issues/search")
	}
	return &res, nil
}

// IssueFacets fetches aggregate counts without issue bodies (ps=1 keeps
// the payload to the facet envelope).
func (c *Client) IssueFacets(ctx context.Context, project string, facets []string) ([]Facet, error) {
	q := IssueQuery{Project: project, PageSize: 1, Facets: facets}
	res, err := c.SearchIssues(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Facets, nil
}

// Issue fetches a single issue by key.
func (c *Client) Issue(ctx context.Context, key string) (*Issue, error) {
	v := url.Values{}
	v.Set("key", key)
	body, err := c.get(ctx, "/api/issues/show", v)
	if err != nil {
		var ae *APIError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return nil, &NotFoundError{Kind: "issue", Key: key}
		}
		return nil, err
	}
	var res struct {
		Issue Issue `json:"issue"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode issues/show")
	}
	if res.Issue.Key == "" {
		return nil, &NotFoundError{Kind: "issue", Key: key}
	}
	return &res.Issue, nil
}

// Hotspots fetches the hotspot list for a project.
func (c *Client) Hotspots(ctx context.Context, project string) (*HotspotSearchResult, error) {
	v := url.Values{}
	v.Set("projectKey", project)
	body, err := c.get(ctx, "/api/hotspots/search", v)
	if err != nil {
		return nil, err
	}
	var res HotspotSearchResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode hotspots/search")
	}
	return &res, nil
}

// Hotspot fetches a single hotspot by key.
func (c *Client) Hotspot(ctx context.Context, key string) (*Hotspot, error) {
	v := url.Values{}
	v.Set("hotspot", key)
	body, err := c.get(ctx, "/api/hotspots/show", v)
	if err != nil {
		var ae *APIError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return nil, &NotFoundError{Kind: "hotspot", Key: key}
		}
		return nil, err
	}
	var h Hotspot
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, errors.Wrap(err, "decode hotspots/show")
	}
	return &h, nil
}

// SearchRules queries rules/search with an optional free-text query and
// language filter.
func (c *Client) SearchRules(ctx context.Context, query, language string, page, pageSize int) (*RuleSearchResult, error) {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if language != "" {
		v.Set("languages", language)
	}
	if page > 0 {
		v.Set("p", strconv.Itoa(page))
	}
	if pageSize > 0 {
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		v.Set("ps", strconv.Itoa(pageSize))
	}
	body, err := c.get(ctx, "/api/rules/search", v)
	if err != nil {
		return nil, err
	}
	var res RuleSearchResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode rules/search")
	}
	return &res, nil
}

// Rule fetches a single rule by key.
func (c *Client) Rule(ctx context.Context, key string) (*Rule, error) {
	v := url.Values{}
	v.Set("key", key)
	body, err := c.get(ctx, "/api/rules/show", v)
	if err != nil {
		var ae *APIError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return nil, &NotFoundError{Kind: "rule", Key: key}
		}
		return nil, err
	}
	var res struct {
		Rule Rule `json:"rule"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode rules/show")
	}
	return &res.Rule, nil
}

// QualityGate fetches the project's quality-gate verdict.
func (c *Client) QualityGate(ctx context.Context, project string) (*QualityGate, error) {
	v := url.Values{}
	v.Set("projectKey", project)
	body, err := c.get(ctx, "/api/qualitygates/project_status", v)
	if err != nil {
		return nil, err
	}
	var res QualityGate
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode qualitygates/project_status")
	}
	return &res, nil
}

// Measures fetches current metric values for a component.
func (c *Client) Measures(ctx context.Context, component string, metricKeys []string) (*ComponentMeasures, error) {
	v := url.Values{}
	v.Set("component", component)
	v.Set("metricKeys", strings.Join(metricKeys, ","))
	body, err := c.get(ctx, "/api/measures/component", v)
	if err != nil {
		return nil, err
	}
	var res ComponentMeasures
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode measures/component")
	}
	return &res, nil
}

// MeasuresHistory fetches metric time series for a component. from is an
// optional ISO date lower bound.
func (c *Client) MeasuresHistory(ctx context.Context, component string, metrics []string, from string) (*HistoryResult, error) {
	v := url.Values{}
	v.Set("component", component)
	v.Set("metrics", strings.Join(metrics, ","))
	if from != "" {
		v.Set("from", from)
	}
	body, err := c.get(ctx, "/api/measures/search_history", v)
	if err != nil {
		return nil, err
	}
	var res HistoryResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode measures/search_history")
	}
	return &res, nil
}

// ComponentTree fetches one page of the component subtree below component.
func (c *Client) ComponentTree(ctx context.Context, component string, qualifiers []string, page, pageSize int) (*ComponentTreeResult, error) {
	v := url.Values{}
	v.Set("component", component)
	if len(qualifiers) > 0 {
		v.Set("qualifiers", strings.Join(qualifiers, ","))
	}
	if page > 0 {
		v.Set("p", strconv.Itoa(page))
	}
	if pageSize > 0 {
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		v.Set("ps", strconv.Itoa(pageSize))
	}
	body, err := c.get(ctx, "/api/components/tree", v)
	if err != nil {
		return nil, err
	}
	var res ComponentTreeResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode components/tree")
	}
	return &res, nil
}

// Duplications fetches duplication groups for a file.
func (c *Client) Duplications(ctx context.Context, fileKey string) (*DuplicationsResult, error) {
	v := url.Values{}
	v.Set("key", fileKey)
	body, err := c.get(ctx, "/api/duplications/show", v)
	if err != nil {
		return nil, err
	}
	var res DuplicationsResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode duplications/show")
	}
	return &res, nil
}

// QualityProfiles fetches the profiles attached to a project.
func (c *Client) QualityProfiles(ctx context.Context, project string) ([]QualityProfile, error) {
	v := url.Values{}
	v.Set("project", project)
	body, err := c.get(ctx, "/api/qualityprofiles/search", v)
	if err != nil {
		return nil, err
	}
	var res struct {
		Profiles []QualityProfile `json:"profiles"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode qualityprofiles/search")
	}
	return res.Profiles, nil
}

// Branches fetches the project's branch list.
func (c *Client) Branches(ctx context.Context, project string) ([]Branch, error) {
	v := url.Values{}
	v.Set("project", project)
	body, err := c.get(ctx, "/api/project_branches/list", v)
	if err != nil {
		return nil, err
	}
	var res struct {
		Branches []Branch `json:"branches"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode project_branches/list")
	}
	return res.Branches, nil
}

// RawSource fetches a file's full text via sources/raw. The body is the
// file content itself, not JSON.
func (c *Client) RawSource(ctx context.Context, fileKey, branch string) (string, error) {
	v := url.Values{}
	v.Set("key", fileKey)
	if branch != "" {
		v.Set("branch", branch)
	}
	body, err := c.get(ctx, "/api/sources/raw", v)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// SourceLines fetches a file's content via sources/show, the structured
// fallback used when sources/raw fails.
func (c *Client) SourceLines(ctx context.Context, fileKey, branch string) ([]SourceLine, error) {
	v := url.Values{}
	v.Set("key", fileKey)
	if branch != "" {
		v.Set("branch", branch)
	}
	body, err := c.get(ctx, "/api/sources/show", v)
	if err != nil {
		return nil, err
	}
	var res struct {
		Sources []SourceLine `json:"sources"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.Wrap(err, "decode sources/show")
	}
	return res.Sources, nil
}
