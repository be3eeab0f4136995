package server

import (
	"context"
	"net/http"

	"tailscale.com/client/tailscale/apitype"

	"github.com/claude/fitlg/internal/mcp"
)

// WhoIsClient identifies tailnet peers. tsnet's local client satisfies it.
type WhoIsClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// UserInfo is the caller of a request.
type UserInfo struct {
	ID          int    `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

type userInfoKeyType struct{}

var userInfoKey = userInfoKeyType{}

// identity resolves the caller, from the tailnet when Tailscale is enabled
// and as the configured dev user otherwise, and stores it in the context.
// The user id is also exposed to MCP tool handlers.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, display := s.auth.DevUser, "Local Dev User"
		if s.tailscale != nil {
			who, err := s.tailscale.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || who == nil || who.UserProfile == nil {
				s.log.Warn("tailscale whois failed", "remote", r.RemoteAddr, "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet peer"})
				return
			}
			login, display = who.UserProfile.LoginName, who.UserProfile.DisplayName
		}

		info := UserInfo{Login: login, DisplayName: display, IsAdmin: s.auth.IsAdmin(login)}
		id, err := s.users.GetOrCreateUser(r.Context(), info.Login, info.DisplayName, info.IsAdmin)
		if err != nil {
			s.log.Error("resolving user", "login", login, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "user lookup failed"})
			return
		}
		info.ID = id

		ctx := context.WithValue(r.Context(), userInfoKey, info)
		ctx = mcp.WithUser(ctx, id, info.IsAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userInfoFromContext returns the caller stored by the identity middleware.
func userInfoFromContext(r *http.Request) (UserInfo, bool) {
	info, ok := r.Context().Value(userInfoKey).(UserInfo)
	return info, ok
}

// mustUser returns the caller or answers 401.
func mustUser(w http.ResponseWriter, r *http.Request) (UserInfo, bool) {
	info, ok := userInfoFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no user identity"})
		return UserInfo{}, false
	}
	return info, true
}
