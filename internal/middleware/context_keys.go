package middleware

import (
	"net/http"
	"strings"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// actorKey is the key used to store the validated caller context in the Gin
// context.
const actorKey = contextKey("actor")

// Header names filled in by the upstream gateway after authentication.
const (
	HeaderHospitalID  = "X-Hospital-ID"
	HeaderBranchID    = "X-Branch-ID"
	HeaderUserID      = "X-User-ID"
	HeaderPermissions = "X-User-Permissions"
)

// Permission grant names accepted in the X-User-Permissions header.
const (
	PermissionPostDocuments    = "post_documents"
	PermissionReplanPlans      = "replan_plans"
	PermissionDiscontinuePlans = "discontinue_plans"
)

// ActorMiddleware extracts the caller context from the gateway headers and
// stores it in the Gin context. Requests without a hospital and user id are
// rejected; capabilities come exclusively from the permissions header, never
// from recognizing specific user ids.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		hospitalID := strings.TrimSpace(c.GetHeader(HeaderHospitalID))
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if hospitalID == "" || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing caller identification headers"})
			return
		}

		actor := dto.Actor{
			HospitalID:  hospitalID,
			BranchID:    strings.TrimSpace(c.GetHeader(HeaderBranchID)),
			UserID:      userID,
			Permissions: parsePermissions(c.GetHeader(HeaderPermissions)),
		}

		c.Set(string(actorKey), actor)
		c.Next()
	}
}

func parsePermissions(header string) domain.Permissions {
	var p domain.Permissions
	for _, grant := range strings.Split(header, ",") {
		switch strings.TrimSpace(grant) {
		case PermissionPostDocuments:
			p.CanPostDocuments = true
		case PermissionReplanPlans:
			p.CanReplanPlans = true
		case PermissionDiscontinuePlans:
			p.CanDiscontinuePlans = true
		}
	}
	return p
}

// GetActorFromContext retrieves the caller context from the Gin context.
// It returns the actor and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (dto.Actor, bool) {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		return dto.Actor{}, false
	}

	actor, ok := actorVal.(dto.Actor)
	if !ok {
		// This should not happen if ActorMiddleware sets it correctly.
		return dto.Actor{}, false
	}

	return actor, true
}
