package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/AaronLay10/AdventEngine/internal/config"
)

// Role represents an authorization role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

const (
	EnvAdminUser    = "ADVENT_ADMIN_USER"
	EnvAdminPass    = "ADVENT_ADMIN_PASS"
	EnvOperatorUser = "ADVENT_OPERATOR_USER"
	EnvOperatorPass = "ADVENT_OPERATOR_PASS"
)

// Auth holds basic-auth credentials. A nil Auth, or one without admin
// credentials, grants admin to every request.
type Auth struct {
	adminUser    string
	adminPass    string
	operatorUser string
	operatorPass string
}

// NewAuth builds an Auth from explicit credentials.
func NewAuth(adminUser, adminPass, operatorUser, operatorPass string) *Auth {
	return &Auth{
		adminUser:    adminUser,
		adminPass:    adminPass,
		operatorUser: operatorUser,
		operatorPass: operatorPass,
	}
}

// AuthFromEnv loads credentials from the environment, honouring the
// *_FILE convention.
func AuthFromEnv() (*Auth, error) {
	var vals [4]string
	for i, name := range []string{EnvAdminUser, EnvAdminPass, EnvOperatorUser, EnvOperatorPass} {
		v, err := config.ResolveSecret(name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		vals[i] = v
	}
	return NewAuth(vals[0], vals[1], vals[2], vals[3]), nil
}

// Enabled reports whether requests must authenticate.
func (a *Auth) Enabled() bool {
	return a != nil && a.adminUser != "" && a.adminPass != ""
}

// authenticate returns the caller's role, or "" for bad credentials.
func (a *Auth) authenticate(r *http.Request) Role {
	if !a.Enabled() {
		return RoleAdmin
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return ""
	}

	if secureCompare(user, a.adminUser) && secureCompare(pass, a.adminPass) {
		return RoleAdmin
	}
	if a.operatorUser != "" && a.operatorPass != "" {
		if secureCompare(user, a.operatorUser) && secureCompare(pass, a.operatorPass) {
			return RoleOperator
		}
	}
	return ""
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Advent Engine"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// RequireRole wraps a handler and requires one of the specified roles.
func (a *Auth) RequireRole(handler http.HandlerFunc, allowedRoles ...Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := a.authenticate(r)
		if role == "" {
			requireAuth(w)
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				handler(w, r)
				return
			}
		}

		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// RequireAnyRole wraps a handler requiring admin OR operator role.
func (a *Auth) RequireAnyRole(handler http.HandlerFunc) http.HandlerFunc {
	return a.RequireRole(handler, RoleAdmin, RoleOperator)
}

// RequireAdmin wraps a handler requiring admin role only.
func (a *Auth) RequireAdmin(handler http.HandlerFunc) http.HandlerFunc {
	return a.RequireRole(handler, RoleAdmin)
}
