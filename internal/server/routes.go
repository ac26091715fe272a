package server

import (
	"github.com/gin-gonic/gin"

	"github.com/elskow/medtrack/internal/api"
	"github.com/elskow/medtrack/internal/permission"
	"github.com/elskow/medtrack/internal/ratelimit"
)

// chain orders a route's handlers: rate limit, session, CSRF, then rest.
// A nil limit skips throttling.
func chain(r Routes, limit gin.HandlerFunc, rest ...gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(rest)+3)
	if limit != nil {
		handlers = append(handlers, limit)
	}
	handlers = append(handlers, r.Sessions.Authenticate(), r.Sessions.CSRF())
	return append(handlers, rest...)
}

func registerRoutes(engine *gin.Engine, r Routes) {
	authGroup := engine.Group(api.AuthGroup)
	authGroup.POST(api.AuthLogin, chain(r, r.RateLimits.Limit(ratelimit.Login()), r.Auth.Login)...)
	authGroup.POST(api.AuthLogout, chain(r, nil, r.Sessions.RequireSession(), r.Auth.Logout)...)
	authGroup.POST(api.AuthRegister, chain(r, nil,
		r.Permissions.RequireAction(permission.ResourceUser, permission.ActionAdd),
		r.Auth.Register)...)
	authGroup.GET(api.AuthUserInfo, chain(r, nil, r.Sessions.RequireSession(), r.Auth.UserInfo)...)
	authGroup.GET(api.AuthCSRF, chain(r, nil, r.Auth.CSRFToken)...)

	meds := engine.Group(api.MedicationGroup)

	medLimit := r.RateLimits.ByMethod(
		ratelimit.Read(api.RateGroupMedication),
		ratelimit.Write(api.RateGroupMedication))
	medGuard := r.Permissions.Require(permission.ResourceMedication)
	meds.GET(api.MedicationCollection, chain(r, medLimit, medGuard, r.Medications.List)...)
	meds.POST(api.MedicationCollection, chain(r, medLimit, medGuard, r.Medications.Create)...)
	meds.GET(api.MedicationItem, chain(r, medLimit, medGuard, r.Medications.Get)...)
	meds.PUT(api.MedicationItem, chain(r, medLimit, medGuard, r.Medications.Update)...)
	meds.DELETE(api.MedicationItem, chain(r, medLimit, medGuard, r.Medications.Delete)...)

	refillLimit := r.RateLimits.ByMethod(
		ratelimit.Read(api.RateGroupRefill),
		ratelimit.Write(api.RateGroupRefill))
	refillGuard := r.Permissions.Require(permission.ResourceRefillRequest)
	meds.GET(api.RefillCollection, chain(r, refillLimit, refillGuard, r.Refills.List)...)
	meds.POST(api.RefillCollection, chain(r, refillLimit, refillGuard, r.Refills.Create)...)
	meds.PUT(api.RefillItem, chain(r, refillLimit, refillGuard, r.Refills.Update)...)
	meds.GET(api.RefillAggregate, chain(r, refillLimit,
		r.Permissions.RequireAction(permission.ResourceRefillRequest, permission.ActionView),
		r.Refills.Aggregate)...)
}
