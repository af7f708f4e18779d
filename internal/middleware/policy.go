package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medisync-api/internal/models"
)

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

type requirementKind int

const (
	public requirementKind = iota
	authenticated
	anyRole
)

// Requirement is what a request must satisfy to reach a route.
type Requirement struct {
	kind  requirementKind
	roles []models.Role
}

func Public() Requirement { return Requirement{kind: public} }

func Authenticated() Requirement { return Requirement{kind: authenticated} }

func Role(r models.Role) Requirement { return AnyRole(r) }

func AnyRole(roles ...models.Role) Requirement {
	return Requirement{kind: anyRole, roles: roles}
}

func (r Requirement) check(p *models.Principal) Decision {
	switch r.kind {
	case public:
		return Allow
	case authenticated:
		if p == nil {
			return Unauthenticated
		}
		return Allow
	default:
		if p == nil {
			return Unauthenticated
		}
		if !p.HasRole(r.roles...) {
			return Forbidden
		}
		return Allow
	}
}

// Rule binds a method and path pattern to a requirement. An empty Method
// matches every method. Pattern segments are literals, "*" for exactly one
// segment, or a trailing "**" for any remainder including none.
type Rule struct {
	Method      string
	Pattern     string
	Requirement Requirement

	segments []string
}

func (r *Rule) matches(method string, path []string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	for i, seg := range r.segments {
		if seg == "**" {
			return true
		}
		if i >= len(path) {
			return false
		}
		if seg != "*" && seg != path[i] {
			return false
		}
	}
	return len(path) == len(r.segments)
}

// Policy is an ordered rule list; the first matching rule decides. Requests
// no rule matches fall back to Default.
type Policy struct {
	rules   []Rule
	Default Requirement
}

func NewPolicy(def Requirement, rules ...Rule) *Policy {
	p := &Policy{Default: def, rules: make([]Rule, len(rules))}
	for i, r := range rules {
		r.segments = splitPath(r.Pattern)
		p.rules[i] = r
	}
	return p
}

func (p *Policy) Evaluate(method, path string, principal *models.Principal) Decision {
	segs := splitPath(path)
	for i := range p.rules {
		if p.rules[i].matches(method, segs) {
			return p.rules[i].Requirement.check(principal)
		}
	}
	return p.Default.check(principal)
}

// Enforce rejects requests the policy does not allow with 401 or 403.
func Enforce(p *Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := CurrentPrincipal(c)
		switch p.Evaluate(c.Request.Method, c.Request.URL.Path, principal) {
		case Unauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			return
		case Forbidden:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to access this resource",
				"code":  "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}

// DefaultPolicy is the clinic's route table.
func DefaultPolicy() *Policy {
	admin, doctor, patient := models.RoleAdmin, models.RoleDoctor, models.RolePatient
	return NewPolicy(Authenticated(),
		Rule{Method: http.MethodOptions, Pattern: "/**", Requirement: Public()},
		Rule{Method: http.MethodGet, Pattern: "/health", Requirement: Public()},
		Rule{Method: http.MethodGet, Pattern: "/metrics", Requirement: Public()},
		Rule{Method: http.MethodPost, Pattern: "/auth/**", Requirement: Public()},
		Rule{Method: http.MethodPost, Pattern: "/user", Requirement: Public()},
		Rule{Method: http.MethodGet, Pattern: "/user/all", Requirement: Role(admin)},
		Rule{Method: http.MethodGet, Pattern: "/user/doctors", Requirement: Public()},
		Rule{Method: http.MethodGet, Pattern: "/user/**", Requirement: Authenticated()},
		Rule{Method: http.MethodGet, Pattern: "/appointment/all", Requirement: Public()},
		Rule{Method: http.MethodGet, Pattern: "/appointment/doctor", Requirement: Role(doctor)},
		Rule{Method: http.MethodGet, Pattern: "/appointment/patient", Requirement: Role(patient)},
		Rule{Method: http.MethodPost, Pattern: "/appointment", Requirement: AnyRole(doctor, patient)},
		Rule{Method: http.MethodPut, Pattern: "/appointment/**", Requirement: AnyRole(admin, doctor, patient)},
		Rule{Method: http.MethodDelete, Pattern: "/appointment/**", Requirement: AnyRole(admin, doctor, patient)},
		Rule{Method: http.MethodDelete, Pattern: "/user/**", Requirement: Authenticated()},
		Rule{Method: http.MethodPut, Pattern: "/user/**", Requirement: Authenticated()},
		Rule{Method: http.MethodPost, Pattern: "/notification/send", Requirement: AnyRole(admin, doctor)},
		Rule{Method: http.MethodGet, Pattern: "/notification/my", Requirement: Authenticated()},
	)
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
