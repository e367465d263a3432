package infra

import "github.com/casbin/casbin/v2"

// NewEnforcer loads the static role policy. Roles and grants are fixed
// files in this service; user-to-role assignment comes from the token.
func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcer(modelPath, policyPath)
}
