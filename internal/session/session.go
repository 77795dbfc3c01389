// Package session carries the caller's identity, role and locale through a
// request. Values travel explicitly in context.Context; nothing is global.
package session

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// Role is the kind of portal user making a request.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleAdvocate  Role = "advocate"
	RoleLawFirm   Role = "law-firm"
	RoleNGO       Role = "ngo"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a header value onto a Role; unknown values are citizens.
func ParseRole(s string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdvocate, RoleLawFirm, RoleNGO, RoleVolunteer, RoleAdmin:
		return r
	}
	return RoleCitizen
}

// DefaultUserID identifies anonymous callers, matching the demo fallback used
// by the handlers.
const DefaultUserID = "demo-user"

// Supported lists the reply languages offered by the portal; the first entry
// is the fallback.
var Supported = []language.Tag{language.English, language.Hindi, language.Marathi}

var matcher = language.NewMatcher(Supported)

// MatchLocale picks the best supported language for an Accept-Language value.
func MatchLocale(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

// Context is the per-request session.
type Context struct {
	UserID string
	Role   Role
	Locale language.Tag
}

// Lang returns the base language code (en, hi, mr).
func (s Context) Lang() string {
	b, _ := s.Locale.Base()
	return b.String()
}

// IsAdmin reports whether the caller may perform administrative actions.
func (s Context) IsAdmin() bool { return s.Role == RoleAdmin }

type ctxKey struct{}

// With returns a copy of ctx carrying s.
func With(ctx context.Context, s Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Lookup returns the session stored in ctx, if any.
func Lookup(ctx context.Context) (Context, bool) {
	s, ok := ctx.Value(ctxKey{}).(Context)
	return s, ok
}

// From returns the session stored in ctx, or an anonymous English citizen.
func From(ctx context.Context) Context {
	if s, ok := Lookup(ctx); ok {
		return s
	}
	return Context{UserID: DefaultUserID, Role: RoleCitizen, Locale: language.English}
}
