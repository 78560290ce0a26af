package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/minetrack/apiserver/internal/auth"
	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/services"
	"github.com/minetrack/apiserver/types"
)

// Access rules. Each operation names every role it admits.
var (
	equipmentReaders = auth.AllowList{types.RoleUser, types.RoleAdmin, types.RoleSuperadmin}
	equipmentWriters = auth.AllowList{types.RoleUser, types.RoleSuperadmin}
	financeReaders   = auth.AllowList{types.RoleAdmin, types.RoleSuperadmin}
	financeWriters   = auth.AllowList{types.RoleSuperadmin}
	logReaders       = auth.AllowList{types.RoleAdmin, types.RoleSuperadmin}
	logPurgers       = auth.AllowList{types.RoleSuperadmin}
	userManagers     = services.RoleManagers
)

// route describes one endpoint. Routes that are not public require a valid
// token; a nil roles list then admits any authenticated user.
type route struct {
	method  string
	pattern string
	summary string
	public  bool
	roles   auth.AllowList
	status  int
	handler http.HandlerFunc
}

type routeGroup struct {
	prefix string
	tag    string
	routes []route
}

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Users     *services.UserService
	Equipment *services.EquipmentService
	Finance   *services.FinanceService
	DataLogs  *services.DataLogService
	Tokens    *auth.TokenIssuer
	// Avatars serves uploaded avatars under /static. Nil disables the route.
	Avatars ObjectReader
	Log     logging.Logger
}

// Register mounts every API route on r.
func Register(r chi.Router, deps Deps) {
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	authn := NewAuthenticator(deps.Tokens, deps.Users, deps.Log)

	groups := []routeGroup{
		NewUserHandler(deps.Users, deps.Log).routes(),
		NewEquipmentHandler(deps.Equipment, deps.Log).routes(),
		NewFinanceHandler(deps.Finance, deps.Log).routes(),
		NewDataLogHandler(deps.DataLogs, deps.Log).routes(),
	}

	r.Get("/healthz", Healthz)
	r.Get("/openapi.json", openAPIHandler(groups))
	if deps.Avatars != nil {
		r.Get("/static/*", StaticHandler(deps.Avatars, deps.Log))
	}
	mount(r, authn, groups)
}

func mount(r chi.Router, authn *Authenticator, groups []routeGroup) {
	for _, group := range groups {
		r.Route(group.prefix, func(r chi.Router) {
			for _, rt := range group.routes {
				var h http.Handler = rt.handler
				if !rt.public {
					if rt.roles != nil {
						h = RequireRoles(rt.roles)(h)
					}
					h = authn.RequireAuth(h)
				}
				r.Method(rt.method, rt.pattern, h)
			}
		})
	}
}
