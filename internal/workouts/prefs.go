package workouts

import (
	"net/http"
	"time"
)

// DefaultUnit is used whenever no valid preference is stored.
const DefaultUnit = UnitPounds

const (
	unitCookieName   = "weight_unit"
	unitCookieMaxAge = int(365 * 24 * time.Hour / time.Second)
)

// UnitFromRequest returns the requester's preferred weight unit. Missing or
// unrecognized cookie values fall back to pounds; it never fails.
func UnitFromRequest(r *http.Request) Unit {
	cookie, err := r.Cookie(unitCookieName)
	if err != nil {
		return DefaultUnit
	}
	unit, ok := ParseUnit(cookie.Value)
	if !ok {
		return DefaultUnit
	}
	return unit
}

// SetUnitCookie persists the weight unit preference for a year. The secure
// flag is set only in production-like deployments (no TLS on localhost).
func SetUnitCookie(w http.ResponseWriter, unit Unit, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     unitCookieName,
		Value:    string(unit),
		Path:     "/",
		MaxAge:   unitCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}
