package guard

import "strings"

// Paths with fixed meaning to the guard.
const (
	PathLogin   = "/login"
	PathSignup  = "/signup"
	PathLanding = "/"
)

type RouteName string

const (
	RouteLogin          RouteName = "login"
	RouteSignup         RouteName = "signup"
	RouteHome           RouteName = "home"
	RouteLeads          RouteName = "leads"
	RouteUpload         RouteName = "upload"
	RouteCustomInsight  RouteName = "custom-insight"
	RouteRiskAssessment RouteName = "risk-assessment"
	RouteDocument       RouteName = "document"
	RouteAudio          RouteName = "audio"
)

// Route is a matched view with its path parameters.
type Route struct {
	Name   RouteName
	Path   string
	Params map[string]string
	Public bool
}

// Param returns a path parameter or "".
func (r Route) Param(name string) string {
	return r.Params[name]
}

// LeadID is the lead a route is scoped to, if any.
func (r Route) LeadID() string {
	return r.Params["leadId"]
}

type routePattern struct {
	name     RouteName
	segments []string
	public   bool
}

var routeTable = []routePattern{
	{name: RouteLogin, segments: split(PathLogin), public: true},
	{name: RouteSignup, segments: split(PathSignup), public: true},
	{name: RouteHome, segments: split(PathLanding)},
	{name: RouteLeads, segments: split("/leads")},
	{name: RouteUpload, segments: split("/upload")},
	{name: RouteCustomInsight, segments: split("/custom-insight")},
	{name: RouteRiskAssessment, segments: split("/risk-assessment/{leadId}")},
	{name: RouteDocument, segments: split("/documents/{leadId}/{documentType}")},
	{name: RouteAudio, segments: split("/audio/{id}")},
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Normalize strips the query string, fragment and trailing slashes. A path
// that is nothing but slashes is the landing page.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return PathLanding
	}
	return path
}

// Match finds the view registered for path.
func Match(path string) (Route, bool) {
	path = Normalize(path)
	segments := split(path)

	for _, pattern := range routeTable {
		if len(pattern.segments) != len(segments) {
			continue
		}
		params := map[string]string{}
		matched := true
		for i, seg := range pattern.segments {
			if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
				if segments[i] == "" {
					matched = false
					break
				}
				params[seg[1:len(seg)-1]] = segments[i]
				continue
			}
			if seg != segments[i] {
				matched = false
				break
			}
		}
		if matched {
			return Route{Name: pattern.name, Path: path, Params: params, Public: pattern.public}, true
		}
	}
	return Route{}, false
}
